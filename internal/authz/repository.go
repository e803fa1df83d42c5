package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Repository provides PostgreSQL backed identity and permission reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Principal returns the role, department and group of a user.
func (r *Repository) Principal(ctx context.Context, id int64) (Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, role, department, group_id FROM users WHERE id = $1`, id)
	var p Principal
	if err := row.Scan(&p.ID, &p.Role, &p.Department, &p.GroupID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Principal{}, shared.ErrNotFound
		}
		return Principal{}, err
	}
	return p, nil
}

// GroupPermission looks up a configured group grant.
func (r *Repository) GroupPermission(ctx context.Context, groupID int64, permission string) (bool, bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT permission_value FROM group_permissions WHERE group_id = $1 AND permission_name = $2`,
		groupID, permission)
	var value bool
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, nil
		}
		return false, false, err
	}
	return value, true, nil
}
