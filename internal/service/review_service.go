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
	ErrReviewNotFound         = errors.New("review not found or unauthorized")
	ErrAppointmentNotEligible = errors.New("invalid appointment or appointment not completed")
	ErrDuplicateReview        = errors.New("appointment already reviewed")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
)

// ReviewService gestiona reseñas de clientes sobre vendedores. Solo citas
// completadas del propio cliente son reseñables, una vez cada una.
type ReviewService struct {
	reviews      repository.ReviewRepository
	appointments repository.AppointmentRepository
}

func NewReviewService(reviews repository.ReviewRepository, appointments repository.AppointmentRepository) *ReviewService {
	return &ReviewService{
		reviews:      reviews,
		appointments: appointments,
	}
}

type CreateReviewInput struct {
	CustomerID    string
	SellerID      string
	AppointmentID string
	Rating        int
	Comment       string
}

func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}

	_, err := s.appointments.GetForReview(ctx, input.AppointmentID, input.CustomerID, input.SellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrAppointmentNotEligible
		}
		return domain.Review{}, err
	}

	exists, err := s.reviews.ExistsForAppointment(ctx, input.AppointmentID, input.CustomerID)
	if err != nil {
		return domain.Review{}, err
	}
	if exists {
		return domain.Review{}, ErrDuplicateReview
	}

	now := time.Now().UTC()
	review := domain.Review{
		ID:            uuid.NewString(),
		CustomerID:    input.CustomerID,
		SellerID:      input.SellerID,
		AppointmentID: input.AppointmentID,
		Rating:        input.Rating,
		Comment:       strings.TrimSpace(input.Comment),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if isUniqueViolation(err) {
			return domain.Review{}, ErrDuplicateReview
		}
		return domain.Review{}, err
	}
	return s.reviews.GetByID(ctx, review.ID)
}

func (s *ReviewService) List(ctx context.Context, page, limit int) ([]domain.Review, int, error) {
	return s.reviews.List(ctx, page, limit)
}

func (s *ReviewService) GetByID(ctx context.Context, id string) (domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrReviewNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Update solo admite rating y comentario, y exige ser el autor.
func (s *ReviewService) Update(ctx context.Context, id, customerID string, rating *int, comment *string) (domain.Review, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return domain.Review{}, ErrInvalidRating
	}

	review, err := s.reviews.Update(ctx, id, customerID, repository.ReviewUpdate{
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrReviewNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id, customerID string) error {
	if err := s.reviews.SoftDelete(ctx, id, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}
