package fieldlocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/platform/db"
)

// Lock is one configured row for a group.
type Lock struct {
	GroupID    int64
	FieldName  string
	IsLocked   bool
	IsRequired bool
}

// Repository provides PostgreSQL backed persistence for field locks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LockedFields returns the names of fields explicitly locked for a group.
func (r *Repository) LockedFields(ctx context.Context, groupID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT field_name FROM field_locks WHERE group_id = $1 AND is_locked`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListLocks returns every configured row for a group, for the admin screen.
func (r *Repository) ListLocks(ctx context.Context, groupID int64) ([]Lock, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, field_name, is_locked, is_required FROM field_locks WHERE group_id = $1 ORDER BY field_name`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []Lock
	for rows.Next() {
		var l Lock
		if err := rows.Scan(&l.GroupID, &l.FieldName, &l.IsLocked, &l.IsRequired); err != nil {
			return nil, err
		}
		locks = append(locks, l)
	}
	return locks, rows.Err()
}

// UpsertLocks writes per-field rows, last writer wins. The whole batch runs
// in one transaction and retries on contention.
func (r *Repository) UpsertLocks(ctx context.Context, groupID int64, locks map[string]bool) error {
	return db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		for field, locked := range locks {
			if _, err := tx.Exec(ctx,
				`INSERT INTO field_locks (group_id, field_name, is_locked, updated_at)
				 VALUES ($1, $2, $3, NOW())
				 ON CONFLICT (group_id, field_name)
				 DO UPDATE SET is_locked = EXCLUDED.is_locked, updated_at = NOW()`,
				groupID, field, locked); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteLocks removes every lock row for a group.
func (r *Repository) DeleteLocks(ctx context.Context, groupID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM field_locks WHERE group_id = $1`, groupID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
