package fiscalyears

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// Repository persists fiscal years.
type Repository interface {
	List(ctx context.Context, orgID int64) ([]FiscalYear, error)
	Get(ctx context.Context, orgID, id int64) (FiscalYear, error)
	FindByDate(ctx context.Context, orgID int64, date time.Time) (FiscalYear, error)
	Insert(ctx context.Context, fy FiscalYear) (FiscalYear, error)
	SetClosed(ctx context.Context, orgID, id int64, closed bool, at time.Time) error
}

const fiscalYearColumns = `id, org_id, label, start_date, end_date, is_closed, closed_at, created_at, updated_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL-backed fiscal year repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) List(ctx context.Context, orgID int64) ([]FiscalYear, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE org_id = $1 ORDER BY start_date`, orgID)
	if err != nil {
		return nil, fmt.Errorf("fiscalyears: list: %w", err)
	}
	defer rows.Close()

	var out []FiscalYear
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	return out, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, orgID, id int64) (FiscalYear, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE org_id = $1 AND id = $2`, orgID, id)
	fy, err := scanFiscalYear(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FiscalYear{}, acctshared.ErrFiscalYearNotFound
	}
	return fy, err
}

func (r *pgRepository) FindByDate(ctx context.Context, orgID int64, date time.Time) (FiscalYear, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE org_id = $1 AND start_date <= $2 AND end_date >= $2`, orgID, date)
	fy, err := scanFiscalYear(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FiscalYear{}, acctshared.ErrFiscalYearNotFound
	}
	return fy, err
}

func (r *pgRepository) Insert(ctx context.Context, fy FiscalYear) (FiscalYear, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO fiscal_years (org_id, label, start_date, end_date, is_closed)
VALUES ($1, $2, $3, $4, FALSE)
RETURNING `+fiscalYearColumns,
		fy.OrgID, fy.Label, fy.StartDate, fy.EndDate)
	return scanFiscalYear(row)
}

func (r *pgRepository) SetClosed(ctx context.Context, orgID, id int64, closed bool, at time.Time) error {
	var closedAt any
	if closed {
		closedAt = at
	}
	tag, err := r.pool.Exec(ctx, `UPDATE fiscal_years SET is_closed = $3, closed_at = $4, updated_at = NOW() WHERE org_id = $1 AND id = $2`,
		orgID, id, closed, closedAt)
	if err != nil {
		return fmt.Errorf("fiscalyears: set closed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return acctshared.ErrFiscalYearNotFound
	}
	return nil
}

// FindByDateForUpdate locks the covering fiscal year row inside tx so a close
// running concurrently cannot slip between the check and the posting insert.
func FindByDateForUpdate(ctx context.Context, tx pgx.Tx, orgID int64, date time.Time) (FiscalYear, error) {
	row := tx.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE org_id = $1 AND start_date <= $2 AND end_date >= $2 FOR UPDATE`, orgID, date)
	fy, err := scanFiscalYear(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FiscalYear{}, acctshared.ErrFiscalYearNotFound
	}
	return fy, err
}

func scanFiscalYear(row pgx.Row) (FiscalYear, error) {
	var fy FiscalYear
	err := row.Scan(&fy.ID, &fy.OrgID, &fy.Label, &fy.StartDate, &fy.EndDate, &fy.IsClosed, &fy.ClosedAt, &fy.CreatedAt, &fy.UpdatedAt)
	return fy, err
}
