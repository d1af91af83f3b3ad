package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"peoplework/internal/domain"
	"peoplework/internal/repository"
)

// UserService coordina reglas de negocio para perfiles y administración de
// usuarios. El rol solo cambia a través de AdminUpdate.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

// ProfileUpdate lleva los campos que el propio usuario puede modificar.
// Rol, estado y flag de verificación quedan fuera a propósito.
type ProfileUpdate struct {
	Name       *string
	Phone      *string
	Address    *string
	Speciality *string
	Keywords   *string
}

// AdminUpdate extiende ProfileUpdate con los campos reservados al admin.
type AdminUpdate struct {
	ProfileUpdate
	Role       *domain.Role
	Status     *domain.UserStatus
	IsVerified *bool
}

// ListResult agrupa una página de usuarios con su metadata de paginación.
type ListResult struct {
	Users       []domain.User `json:"users"`
	TotalUsers  int           `json:"totalUsers"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (domain.User, error) {
	user, err := s.users.Update(ctx, userID, repository.UserUpdate{
		Name:       update.Name,
		Phone:      update.Phone,
		Address:    update.Address,
		Speciality: update.Speciality,
		Keywords:   update.Keywords,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List devuelve usuarios no borrados con filtros y paginación. Los
// administradores se excluyen siempre de los listados.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) (ListResult, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return ListResult{}, ErrInvalidRole
	}
	if filter.Role == domain.RoleAdmin {
		return ListResult{}, ErrInvalidRole
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	totalPages := total / filter.Limit
	if total%filter.Limit != 0 {
		totalPages++
	}
	return ListResult{
		Users:       users,
		TotalUsers:  total,
		TotalPages:  totalPages,
		CurrentPage: filter.Page,
	}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.GetProfile(ctx, id)
}

// Update aplica cambios administrativos, incluido el rol.
func (s *UserService) Update(ctx context.Context, id string, update AdminUpdate) (domain.User, error) {
	if update.Role != nil && !update.Role.IsValid() {
		return domain.User{}, ErrInvalidRole
	}
	if update.Status != nil && !update.Status.IsValid() {
		return domain.User{}, errors.New("invalid status")
	}

	user, err := s.users.Update(ctx, id, repository.UserUpdate{
		Name:       update.Name,
		Phone:      update.Phone,
		Address:    update.Address,
		Speciality: update.Speciality,
		Keywords:   update.Keywords,
		Role:       update.Role,
		Status:     update.Status,
		IsVerified: update.IsVerified,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Delete marca la cuenta como borrada sin eliminar el registro.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if s.logger != nil {
		s.logger.Info("user soft-deleted", zap.String("user_id", id))
	}
	return nil
}
