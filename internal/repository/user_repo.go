package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peoplework/internal/domain"
)

// UserFilter restringe listados de usuarios. Keyword busca en nombre,
// email y dirección (case-insensitive).
type UserFilter struct {
	Role       domain.Role
	Speciality string
	Keyword    string
	Page       int
	Limit      int
}

// UserUpdate lleva los campos modificables de un usuario; los punteros nil
// se dejan sin tocar.
type UserUpdate struct {
	Name       *string
	Phone      *string
	Address    *string
	Speciality *string
	Keywords   *string
	Role       *domain.Role
	Status     *domain.UserStatus
	IsVerified *bool
}

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	Update(ctx context.Context, id string, update UserUpdate) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	MarkVerified(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
}

const userColumns = `id, name, phone, email, address, password_hash, role, status,
	speciality, keywords, is_verified, is_deleted, created_at, updated_at`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, name, phone, email, address, password_hash, role, status,
			speciality, keywords, is_verified, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Email,
		user.Address,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.Speciality,
		user.Keywords,
		user.IsVerified,
		user.IsDeleted,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND NOT is_deleted`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 AND NOT is_deleted`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	conditions := []string{"NOT is_deleted"}
	args := []any{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	} else {
		// Los administradores nunca aparecen en listados públicos.
		conditions = append(conditions, "role <> 'admin'")
	}
	if filter.Speciality != "" {
		args = append(args, filter.Speciality)
		conditions = append(conditions, fmt.Sprintf("speciality = $%d", len(args)))
	}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR address ILIKE $%d)", n, n, n))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM users WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *PgUserRepository) Update(ctx context.Context, id string, update UserUpdate) (domain.User, error) {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", strings.ToUpper(strings.TrimSpace(*update.Name)))
	}
	if update.Phone != nil {
		add("phone", strings.TrimSpace(*update.Phone))
	}
	if update.Address != nil {
		add("address", strings.TrimSpace(*update.Address))
	}
	if update.Speciality != nil {
		add("speciality", strings.TrimSpace(*update.Speciality))
	}
	if update.Keywords != nil {
		add("keywords", strings.TrimSpace(*update.Keywords))
	}
	if update.Role != nil {
		add("role", *update.Role)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.IsVerified != nil {
		add("is_verified", *update.IsVerified)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	add("updated_at", time.Now().UTC())
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d AND NOT is_deleted RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	return r.scanOne(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgUserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET is_verified = TRUE, updated_at = now()
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

func (r *PgUserRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
		UPDATE users SET is_deleted = TRUE, updated_at = now()
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

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Phone,
		&u.Email,
		&u.Address,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.Speciality,
		&u.Keywords,
		&u.IsVerified,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
