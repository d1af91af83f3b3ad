package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peoplework/internal/domain"
)

// AppointmentUpdate restringe los campos modificables de una cita.
type AppointmentUpdate struct {
	Status *domain.AppointmentStatus
	Notes  *string
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) error
	GetByID(ctx context.Context, id string) (domain.Appointment, error)
	GetForReview(ctx context.Context, id, customerID, sellerID string) (domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)
	Update(ctx context.Context, id string, update AppointmentUpdate) (domain.Appointment, error)
	SoftDelete(ctx context.Context, id string) error
}

const appointmentSelect = `
	SELECT a.id, a.customer_id, a.seller_id, a.service_type, a.appointment_date,
		a.status, a.notes, a.created_at, a.updated_at,
		c.name, c.email, c.phone,
		s.name, s.email, s.phone, s.speciality
	FROM appointments a
	JOIN users c ON c.id = a.customer_id
	JOIN users s ON s.id = a.seller_id
`

// PgAppointmentRepository implementa AppointmentRepository usando pgxpool.
type PgAppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAppointmentRepository(pool *pgxpool.Pool) *PgAppointmentRepository {
	return &PgAppointmentRepository{pool: pool}
}

func (r *PgAppointmentRepository) Create(ctx context.Context, appt domain.Appointment) error {
	const query = `
		INSERT INTO appointments (id, customer_id, seller_id, service_type,
			appointment_date, status, notes, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.CustomerID,
		appt.SellerID,
		appt.ServiceType,
		appt.AppointmentDate,
		appt.Status,
		appt.Notes,
		appt.IsDeleted,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	return err
}

func (r *PgAppointmentRepository) GetByID(ctx context.Context, id string) (domain.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1 AND NOT a.is_deleted`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetForReview busca la cita que habilita una reseña: debe pertenecer al
// cliente y al vendedor indicados, estar completada y no borrada.
func (r *PgAppointmentRepository) GetForReview(ctx context.Context, id, customerID, sellerID string) (domain.Appointment, error) {
	query := appointmentSelect + `
		WHERE a.id = $1 AND a.customer_id = $2 AND a.seller_id = $3
			AND a.status = 'completed' AND NOT a.is_deleted`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, customerID, sellerID))
}

func (r *PgAppointmentRepository) List(ctx context.Context) ([]domain.Appointment, error) {
	query := appointmentSelect + ` WHERE NOT a.is_deleted ORDER BY a.appointment_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		appt, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *PgAppointmentRepository) Update(ctx context.Context, id string, update AppointmentUpdate) (domain.Appointment, error) {
	const query = `
		UPDATE appointments
		SET status = COALESCE($2, status), notes = COALESCE($3, notes), updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, id, update.Status, update.Notes)
	if err != nil {
		return domain.Appointment{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Appointment{}, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *PgAppointmentRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE appointments SET is_deleted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAppointmentRepository) scanOne(row pgx.Row) (domain.Appointment, error) {
	var (
		a        domain.Appointment
		customer domain.PartySummary
		seller   domain.PartySummary
	)
	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.SellerID,
		&a.ServiceType,
		&a.AppointmentDate,
		&a.Status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&seller.Name,
		&seller.Email,
		&seller.Phone,
		&seller.Speciality,
	)
	if err != nil {
		return domain.Appointment{}, err
	}
	customer.ID = a.CustomerID
	seller.ID = a.SellerID
	a.Customer = &customer
	a.Seller = &seller
	return a, nil
}
