package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a single user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, name, role, department, group_id, is_active, created_at, updated_at FROM users WHERE id = $1`, id)
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department, &user.GroupID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Credentials returns the id and password hash of an active account, for the
// login flow.
func (r *Repository) Credentials(ctx context.Context, email string) (int64, string, error) {
	var (
		id   int64
		hash string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1 AND is_active`, email).
		Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", shared.ErrNotFound
	}
	return id, hash, err
}

// ListActive returns all active users ordered by name, for assignment and
// share pickers.
func (r *Repository) ListActive(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, role, department, group_id, is_active, created_at, updated_at FROM users WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department, &user.GroupID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
