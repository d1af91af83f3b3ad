package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"peoplework/internal/domain"
	"peoplework/internal/repository"
)

type mockReviewRepo struct {
	reviews   map[string]domain.Review
	createErr error
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]domain.Review)}
}

// Create replica el índice único parcial (appointment_id, customer_id)
// WHERE NOT is_deleted de la migración.
func (m *mockReviewRepo) Create(_ context.Context, review domain.Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.reviews {
		if existing.IsDeleted {
			continue
		}
		if existing.AppointmentID == review.AppointmentID && existing.CustomerID == review.CustomerID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "reviews_appointment_customer_idx"}
		}
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id string) (domain.Review, error) {
	review, ok := m.reviews[id]
	if !ok || review.IsDeleted {
		return domain.Review{}, pgx.ErrNoRows
	}
	return review, nil
}

func (m *mockReviewRepo) ExistsForAppointment(_ context.Context, appointmentID, customerID string) (bool, error) {
	for _, review := range m.reviews {
		if review.IsDeleted {
			continue
		}
		if review.AppointmentID == appointmentID && review.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReviewRepo) List(_ context.Context, _, _ int) ([]domain.Review, int, error) {
	var out []domain.Review
	for _, review := range m.reviews {
		if !review.IsDeleted {
			out = append(out, review)
		}
	}
	return out, len(out), nil
}

func (m *mockReviewRepo) Update(_ context.Context, id, customerID string, update repository.ReviewUpdate) (domain.Review, error) {
	review, ok := m.reviews[id]
	if !ok || review.IsDeleted || review.CustomerID != customerID {
		return domain.Review{}, pgx.ErrNoRows
	}
	if update.Rating != nil {
		review.Rating = *update.Rating
	}
	if update.Comment != nil {
		review.Comment = *update.Comment
	}
	m.reviews[id] = review
	return review, nil
}

func (m *mockReviewRepo) SoftDelete(_ context.Context, id, customerID string) error {
	review, ok := m.reviews[id]
	if !ok || review.IsDeleted || review.CustomerID != customerID {
		return pgx.ErrNoRows
	}
	review.IsDeleted = true
	m.reviews[id] = review
	return nil
}

func seedCompletedAppointment(appts *mockApptRepo, id, customerID, sellerID string) {
	now := time.Now().UTC()
	appts.appts[id] = domain.Appointment{
		ID:              id,
		CustomerID:      customerID,
		SellerID:        sellerID,
		ServiceType:     "plumbing",
		AppointmentDate: now.Add(-24 * time.Hour),
		Status:          domain.AppointmentCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func reviewInput(customerID, sellerID, appointmentID string) CreateReviewInput {
	return CreateReviewInput{
		CustomerID:    customerID,
		SellerID:      sellerID,
		AppointmentID: appointmentID,
		Rating:        5,
		Comment:       "great work",
	}
}

func TestReviewCreate_Success(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	svc := NewReviewService(newMockReviewRepo(), appts)

	review, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if review.Rating != 5 || review.AppointmentID != "ap1" {
		t.Fatalf("unexpected review: %+v", review)
	}
}

func TestReviewCreate_RatingBounds(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	svc := NewReviewService(newMockReviewRepo(), appts)

	for _, rating := range []int{0, -1, 6} {
		input := reviewInput("c1", "s1", "ap1")
		input.Rating = rating
		if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("expected ErrInvalidRating for %d, got %v", rating, err)
		}
	}
}

func TestReviewCreate_RequiresCompletedAppointment(t *testing.T) {
	appts := newMockApptRepo()
	now := time.Now().UTC()
	appts.appts["ap1"] = domain.Appointment{
		ID:         "ap1",
		CustomerID: "c1",
		SellerID:   "s1",
		Status:     domain.AppointmentPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	svc := NewReviewService(newMockReviewRepo(), appts)

	_, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if !errors.Is(err, ErrAppointmentNotEligible) {
		t.Fatalf("expected ErrAppointmentNotEligible for pending appointment, got %v", err)
	}
}

func TestReviewCreate_RequiresOwnAppointment(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	svc := NewReviewService(newMockReviewRepo(), appts)

	_, err := svc.Create(context.Background(), reviewInput("c2", "s1", "ap1"))
	if !errors.Is(err, ErrAppointmentNotEligible) {
		t.Fatalf("expected ErrAppointmentNotEligible for foreign appointment, got %v", err)
	}
}

func TestReviewCreate_OncePerAppointment(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	svc := NewReviewService(newMockReviewRepo(), appts)

	if _, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1")); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	_, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
}

func TestReviewCreate_AgainAfterSoftDelete(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	reviews := newMockReviewRepo()
	svc := NewReviewService(reviews, appts)

	review, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if err := svc.Delete(context.Background(), review.ID, "c1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// La reseña borrada libera el par (cita, cliente) para una nueva reseña.
	again, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if err != nil {
		t.Fatalf("re-review after delete failed: %v", err)
	}
	if again.ID == review.ID {
		t.Fatalf("expected a fresh review, got the deleted one back")
	}
}

func TestReviewCreate_UniqueViolationMapsToDuplicate(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	reviews := newMockReviewRepo()
	// Simula la carrera chequeo-inserción: el índice único salta aunque el
	// chequeo previo no viera duplicados.
	reviews.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "reviews_appointment_customer_idx"}
	svc := NewReviewService(reviews, appts)

	_, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
}

func TestReviewUpdate_OnlyAuthor(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	svc := NewReviewService(newMockReviewRepo(), appts)

	review, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rating := 3
	if _, err := svc.Update(context.Background(), review.ID, "intruder", &rating, nil); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound for non-author, got %v", err)
	}

	updated, err := svc.Update(context.Background(), review.ID, "c1", &rating, nil)
	if err != nil {
		t.Fatalf("author update failed: %v", err)
	}
	if updated.Rating != 3 {
		t.Fatalf("expected rating 3, got %d", updated.Rating)
	}
}

func TestReviewDelete_OnlyAuthorSoftDeletes(t *testing.T) {
	appts := newMockApptRepo()
	seedCompletedAppointment(appts, "ap1", "c1", "s1")
	reviews := newMockReviewRepo()
	svc := NewReviewService(reviews, appts)

	review, err := svc.Create(context.Background(), reviewInput("c1", "s1", "ap1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), review.ID, "intruder"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound for non-author, got %v", err)
	}
	if err := svc.Delete(context.Background(), review.ID, "c1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !reviews.reviews[review.ID].IsDeleted {
		t.Fatalf("expected soft delete flag set")
	}
	if _, err := svc.GetByID(context.Background(), review.ID); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected deleted review hidden, got %v", err)
	}
}
