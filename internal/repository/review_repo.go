package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peoplework/internal/domain"
)

type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	GetByID(ctx context.Context, id string) (domain.Review, error)
	ExistsForAppointment(ctx context.Context, appointmentID, customerID string) (bool, error)
	List(ctx context.Context, page, limit int) ([]domain.Review, int, error)
	Update(ctx context.Context, id, customerID string, update ReviewUpdate) (domain.Review, error)
	SoftDelete(ctx context.Context, id, customerID string) error
}

const reviewSelect = `
	SELECT r.id, r.customer_id, r.seller_id, r.appointment_id, r.rating, r.comment,
		r.created_at, r.updated_at,
		c.name, c.email, c.phone,
		s.name, s.email, s.phone, s.speciality
	FROM reviews r
	JOIN users c ON c.id = r.customer_id
	JOIN users s ON s.id = r.seller_id
`

// PgReviewRepository implementa ReviewRepository usando pgxpool.
type PgReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPgReviewRepository(pool *pgxpool.Pool) *PgReviewRepository {
	return &PgReviewRepository{pool: pool}
}

func (r *PgReviewRepository) Create(ctx context.Context, review domain.Review) error {
	const query = `
		INSERT INTO reviews (id, customer_id, seller_id, appointment_id, rating,
			comment, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.CustomerID,
		review.SellerID,
		review.AppointmentID,
		review.Rating,
		review.Comment,
		review.IsDeleted,
		review.CreatedAt,
		review.UpdatedAt,
	)
	return err
}

func (r *PgReviewRepository) GetByID(ctx context.Context, id string) (domain.Review, error) {
	query := reviewSelect + ` WHERE r.id = $1 AND NOT r.is_deleted`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgReviewRepository) ExistsForAppointment(ctx context.Context, appointmentID, customerID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE appointment_id = $1 AND customer_id = $2 AND NOT is_deleted
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, appointmentID, customerID).Scan(&exists)
	return exists, err
}

func (r *PgReviewRepository) List(ctx context.Context, page, limit int) ([]domain.Review, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reviews WHERE NOT is_deleted`).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	query := reviewSelect + ` WHERE NOT r.is_deleted ORDER BY r.created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Update solo toca rating/comment y exige que la reseña pertenezca al cliente.
func (r *PgReviewRepository) Update(ctx context.Context, id, customerID string, update ReviewUpdate) (domain.Review, error) {
	const query = `
		UPDATE reviews
		SET rating = COALESCE($3, rating), comment = COALESCE($4, comment), updated_at = now()
		WHERE id = $1 AND customer_id = $2 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, id, customerID, update.Rating, update.Comment)
	if err != nil {
		return domain.Review{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Review{}, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *PgReviewRepository) SoftDelete(ctx context.Context, id, customerID string) error {
	const query = `
		UPDATE reviews SET is_deleted = TRUE, updated_at = now()
		WHERE id = $1 AND customer_id = $2 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, id, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgReviewRepository) scanOne(row pgx.Row) (domain.Review, error) {
	var (
		rv       domain.Review
		customer domain.PartySummary
		seller   domain.PartySummary
	)
	err := row.Scan(
		&rv.ID,
		&rv.CustomerID,
		&rv.SellerID,
		&rv.AppointmentID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&seller.Name,
		&seller.Email,
		&seller.Phone,
		&seller.Speciality,
	)
	if err != nil {
		return domain.Review{}, err
	}
	customer.ID = rv.CustomerID
	seller.ID = rv.SellerID
	rv.Customer = &customer
	rv.Seller = &seller
	return rv, nil
}
