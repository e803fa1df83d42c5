package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/platform/db"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence for groups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every group ordered by name.
func (r *Repository) List(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Get loads one group.
func (r *Repository) Get(ctx context.Context, id int64) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, fmt.Errorf("group %d: %w", id, shared.ErrNotFound)
	}
	return g, err
}

// Grants returns the explicit permission rows of a group.
func (r *Repository) Grants(ctx context.Context, groupID int64) ([]Grant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, permission_name, permission_value
		 FROM group_permissions WHERE group_id = $1 ORDER BY permission_name`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.GroupID, &g.Permission, &g.Value); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpsertGrant writes one explicit permission row.
func (r *Repository) UpsertGrant(ctx context.Context, grant Grant) error {
	return db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO group_permissions (group_id, permission_name, permission_value)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (group_id, permission_name)
			 DO UPDATE SET permission_value = EXCLUDED.permission_value`,
			grant.GroupID, grant.Permission, grant.Value)
		return err
	})
}

// DeleteGrant removes an explicit row, restoring the department default.
func (r *Repository) DeleteGrant(ctx context.Context, groupID int64, permission string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM group_permissions WHERE group_id = $1 AND permission_name = $2`,
		groupID, permission)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
