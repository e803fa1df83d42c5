package shares

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/platform/db"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence for shares.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert inserts or replaces the share for (record, grantee). The write runs
// in its own transaction and retries transient lock conflicts before
// surfacing contention.
func (r *Repository) Upsert(ctx context.Context, share Share) error {
	return db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO rnc_shares (rnc_id, granted_by, grantee_id, permission_level, created_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT (rnc_id, grantee_id)
			 DO UPDATE SET granted_by = EXCLUDED.granted_by, permission_level = EXCLUDED.permission_level`,
			share.RecordID, share.GrantedBy, share.GranteeID, share.Level)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "fk_rnc_shares_grantee" {
				return fmt.Errorf("%w: grantee %d", shared.ErrNotFound, share.GranteeID)
			}
			return err
		}
		return nil
	})
}

// Delete removes a share, reporting whether one existed.
func (r *Repository) Delete(ctx context.Context, recordID, granteeID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM rnc_shares WHERE rnc_id = $1 AND grantee_id = $2`, recordID, granteeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns up to limit+1 share entries for a record, newest grants
// first, anchored by id below the cursor.
func (r *Repository) List(ctx context.Context, recordID int64, cursor *int64, limit int) ([]ShareEntry, error) {
	query := `SELECT rs.id, rs.grantee_id, rs.permission_level, u.name, u.email, rs.created_at
	            FROM rnc_shares rs
	            JOIN users u ON u.id = rs.grantee_id
	           WHERE rs.rnc_id = $1`
	args := []any{recordID}
	if cursor != nil {
		query += ` AND rs.id < $2`
		args = append(args, *cursor)
	}
	query += fmt.Sprintf(` ORDER BY rs.id DESC LIMIT %d`, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ShareEntry
	for rows.Next() {
		var e ShareEntry
		if err := rows.Scan(&e.ID, &e.GranteeID, &e.Level, &e.Name, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Exists reports whether an active share grants the record to the principal.
func (r *Repository) Exists(ctx context.Context, recordID, granteeID int64) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx,
		`SELECT 1 FROM rnc_shares WHERE rnc_id = $1 AND grantee_id = $2`, recordID, granteeID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordIDsForGrantee returns every record id shared with the principal.
// Used by the visibility query builder's OR-predicate.
func (r *Repository) RecordIDsForGrantee(ctx context.Context, granteeID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rnc_id FROM rnc_shares WHERE grantee_id = $1`, granteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Ownership returns the owner and assignee of a record.
func (r *Repository) Ownership(ctx context.Context, recordID int64) (Ownership, error) {
	var o Ownership
	err := r.pool.QueryRow(ctx,
		`SELECT owner_id, assigned_user_id FROM rncs WHERE id = $1`, recordID).Scan(&o.OwnerID, &o.AssignedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ownership{}, shared.ErrNotFound
	}
	if err != nil {
		return Ownership{}, err
	}
	return o, nil
}
