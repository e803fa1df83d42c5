package analytics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository computes aggregates in SQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summary builds the full dashboard payload. Counts follow the tab
// partition: a deleted record is only counted as deleted.
func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	s := Summary{
		ByStatus:     map[string]int64{},
		ByDepartment: map[string]int64{},
	}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE NOT is_deleted AND finalized_at IS NULL),
		       COUNT(*) FILTER (WHERE NOT is_deleted AND finalized_at IS NOT NULL),
		       COUNT(*) FILTER (WHERE is_deleted)
		FROM rncs`).Scan(&s.Total, &s.Active, &s.Finalized, &s.Deleted)
	if err != nil {
		return Summary{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM rncs
		WHERE NOT is_deleted AND finalized_at IS NULL
		GROUP BY status`)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return Summary{}, err
		}
		s.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	deptRows, err := r.pool.Query(ctx, `
		SELECT COALESCE(NULLIF(department, ''), 'unspecified'), COUNT(*)
		FROM rncs WHERE NOT is_deleted
		GROUP BY 1`)
	if err != nil {
		return Summary{}, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var (
			dept string
			n    int64
		)
		if err := deptRows.Scan(&dept, &n); err != nil {
			return Summary{}, err
		}
		s.ByDepartment[dept] = n
	}
	if err := deptRows.Err(); err != nil {
		return Summary{}, err
	}

	trendRows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM'),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE finalized_at IS NOT NULL)
		FROM rncs
		WHERE created_at >= date_trunc('month', NOW()) - INTERVAL '11 months'
		GROUP BY 1 ORDER BY 1`)
	if err != nil {
		return Summary{}, err
	}
	defer trendRows.Close()
	for trendRows.Next() {
		var m MonthlyCount
		if err := trendRows.Scan(&m.Month, &m.Opened, &m.Finalized); err != nil {
			return Summary{}, err
		}
		s.Monthly = append(s.Monthly, m)
	}
	return s, trendRows.Err()
}
