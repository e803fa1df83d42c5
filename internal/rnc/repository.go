package rnc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrtrack/ncrtrack/internal/platform/db"
	"github.com/ncrtrack/ncrtrack/internal/shared"
)

// Repository provides PostgreSQL backed persistence for records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, rnc_number, title, status, priority, department,
	equipment, client, description, owner_id, assigned_user_id, details,
	is_deleted, deleted_at, finalized_at, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec     Record
		details []byte
	)
	err := row.Scan(&rec.ID, &rec.RNCNumber, &rec.Title, &rec.Status, &rec.Priority,
		&rec.Department, &rec.Equipment, &rec.Client, &rec.Description,
		&rec.OwnerID, &rec.AssignedUserID, &details,
		&rec.IsDeleted, &rec.DeletedAt, &rec.FinalizedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Details); err != nil {
			return Record{}, fmt.Errorf("decode details for record %d: %w", rec.ID, err)
		}
	}
	return rec, nil
}

// Get loads one record regardless of tab.
func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM rncs WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("record %d: %w", id, shared.ErrNotFound)
	}
	return rec, err
}

// NextSequence reserves the next report number.
func (r *Repository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('rnc_number_seq')`).Scan(&seq)
	return seq, err
}

// Insert persists a new record and returns it with generated columns filled.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return Record{}, err
	}
	err = db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO rncs
			   (rnc_number, title, status, priority, department, equipment,
			    client, description, owner_id, assigned_user_id, details)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING id, created_at, updated_at`,
			rec.RNCNumber, rec.Title, rec.Status, rec.Priority, rec.Department,
			rec.Equipment, rec.Client, rec.Description, rec.OwnerID,
			rec.AssignedUserID, details,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update rewrites the mutable columns of a record.
func (r *Repository) Update(ctx context.Context, rec Record) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return err
	}
	return db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE rncs SET
			   title = $2, status = $3, priority = $4, department = $5,
			   equipment = $6, client = $7, description = $8,
			   assigned_user_id = $9, details = $10, updated_at = NOW()
			 WHERE id = $1 AND NOT is_deleted`,
			rec.ID, rec.Title, rec.Status, rec.Priority, rec.Department,
			rec.Equipment, rec.Client, rec.Description, rec.AssignedUserID, details)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("record %d: %w", rec.ID, shared.ErrNotFound)
		}
		return nil
	})
}

// SetDeleted moves a record in or out of the deleted tab.
func (r *Repository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	return db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			tag pgconn.CommandTag
			err error
		)
		if deleted {
			tag, err = tx.Exec(ctx,
				`UPDATE rncs SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
				 WHERE id = $1 AND NOT is_deleted`, id)
		} else {
			tag, err = tx.Exec(ctx,
				`UPDATE rncs SET is_deleted = FALSE, deleted_at = NULL, updated_at = NOW()
				 WHERE id = $1 AND is_deleted`, id)
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("record %d: %w", id, shared.ErrNotFound)
		}
		return nil
	})
}

// Finalize stamps the record and moves it to the finalized tab.
func (r *Repository) Finalize(ctx context.Context, id int64) error {
	return db.RetryTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE rncs SET finalized_at = NOW(), status = $2, updated_at = NOW()
			 WHERE id = $1 AND NOT is_deleted AND finalized_at IS NULL`, id, StatusResolved)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("record %d: %w", id, shared.ErrNotFound)
		}
		return nil
	})
}

// ListVisible runs a query produced by BuildVisibilityQuery.
func (r *Repository) ListVisible(ctx context.Context, query string, args []any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(&rec.ID, &rec.RNCNumber, &rec.Title, &rec.Status,
			&rec.Priority, &rec.Department, &rec.OwnerID, &rec.AssignedUserID,
			&rec.IsDeleted, &rec.DeletedAt, &rec.FinalizedAt,
			&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PurgeDeletedBefore permanently removes records whose retention window
// expired before cutoff. Shares and audit rows cascade in the schema.
func (r *Repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM rncs WHERE is_deleted AND deleted_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
