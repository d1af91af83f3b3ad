package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"peoplework/internal/domain"
	"peoplework/internal/repository"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSellerNotFound      = errors.New("seller not found")
	ErrInvalidAppointment  = errors.New("invalid appointment data")
	ErrInvalidStatus       = errors.New("invalid appointment status")
)

// AppointmentService gestiona citas entre clientes y vendedores.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
}

func NewAppointmentService(appointments repository.AppointmentRepository, users repository.UserRepository) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		users:        users,
	}
}

type CreateAppointmentInput struct {
	CustomerID      string
	SellerID        string
	ServiceType     string
	AppointmentDate time.Time
	Notes           string
}

// Create registra una cita en estado pending. El vendedor debe existir y
// tener rol seller.
func (s *AppointmentService) Create(ctx context.Context, input CreateAppointmentInput) (domain.Appointment, error) {
	if strings.TrimSpace(input.ServiceType) == "" || input.AppointmentDate.IsZero() {
		return domain.Appointment{}, ErrInvalidAppointment
	}

	seller, err := s.users.GetByID(ctx, input.SellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Appointment{}, ErrSellerNotFound
		}
		return domain.Appointment{}, err
	}
	if seller.Role != domain.RoleSeller {
		return domain.Appointment{}, ErrSellerNotFound
	}

	now := time.Now().UTC()
	appt := domain.Appointment{
		ID:              uuid.NewString(),
		CustomerID:      input.CustomerID,
		SellerID:        input.SellerID,
		ServiceType:     strings.TrimSpace(input.ServiceType),
		AppointmentDate: input.AppointmentDate,
		Status:          domain.AppointmentPending,
		Notes:           strings.TrimSpace(input.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return domain.Appointment{}, err
	}
	return s.appointments.GetByID(ctx, appt.ID)
}

func (s *AppointmentService) List(ctx context.Context) ([]domain.Appointment, error) {
	return s.appointments.List(ctx)
}

func (s *AppointmentService) GetByID(ctx context.Context, id string) (domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Appointment{}, ErrAppointmentNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

// Update permite cambiar únicamente estado y notas.
func (s *AppointmentService) Update(ctx context.Context, id string, status *domain.AppointmentStatus, notes *string) (domain.Appointment, error) {
	if status != nil && !status.IsValid() {
		return domain.Appointment{}, ErrInvalidStatus
	}

	appt, err := s.appointments.Update(ctx, id, repository.AppointmentUpdate{
		Status: status,
		Notes:  notes,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Appointment{}, ErrAppointmentNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.appointments.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return err
	}
	return nil
}
