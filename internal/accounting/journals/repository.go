package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fiscalyears"
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/sequences"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/platform/db"
)

// Repository persists journal entries. Posting and cancellation run inside a
// single transaction so the entry number, the fiscal year guard, and the
// header+lines write commit or roll back together.
type Repository interface {
	Get(ctx context.Context, orgID, id int64) (Entry, error)
	List(ctx context.Context, orgID int64, filter ListFilter) ([]Entry, int, error)
	InsertDraft(ctx context.Context, entry Entry) (Entry, error)
	UpdateDraft(ctx context.Context, entry Entry) (Entry, error)
	DeleteDraft(ctx context.Context, orgID, id int64) error
	PostEntry(ctx context.Context, entry Entry, at time.Time) (Entry, error)
	PostDraft(ctx context.Context, orgID, id int64, at time.Time) (Entry, error)
	CancelEntry(ctx context.Context, orgID, id int64, at time.Time) (Entry, error)
}

const entryColumns = `id, org_id, number, entry_date, journal, description, reference_type, reference_id, status, fiscal_year_id, created_by, posted_at, cancelled_at, created_at, updated_at`

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL-backed journal repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Get(ctx context.Context, orgID, id int64) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id = $1 AND id = $2`, orgID, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, acctshared.ErrJournalNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *pgRepository) List(ctx context.Context, orgID int64, filter ListFilter) ([]Entry, int, error) {
	where := `WHERE org_id = $1`
	args := []any{orgID}
	if filter.Journal != "" {
		args = append(args, filter.Journal)
		where += fmt.Sprintf(" AND journal = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("journals: count: %w", err)
	}

	perPage := filter.PerPage
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT `+entryColumns+` FROM journal_entries %s ORDER BY entry_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("journals: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, entry)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) InsertDraft(ctx context.Context, entry Entry) (Entry, error) {
	var saved Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		saved, err = insertHeader(ctx, tx, entry, StatusDraft, nil, nil)
		if err != nil {
			return err
		}
		saved.Lines, err = insertLines(ctx, tx, saved.ID, entry.Lines)
		return err
	})
	return saved, err
}

func (r *pgRepository) UpdateDraft(ctx context.Context, entry Entry) (Entry, error) {
	var saved Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockEntry(ctx, tx, entry.OrgID, entry.ID)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return acctshared.ErrInvalidStatus
		}
		row := tx.QueryRow(ctx, `UPDATE journal_entries
SET entry_date = $3, journal = $4, description = $5, reference_type = $6, reference_id = $7, fiscal_year_id = $8, updated_at = NOW()
WHERE org_id = $1 AND id = $2
RETURNING `+entryColumns,
			entry.OrgID, entry.ID, entry.EntryDate, entry.Journal, entry.Description, entry.ReferenceType, entry.ReferenceID, entry.FiscalYearID)
		saved, err = scanEntry(row)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1`, entry.ID); err != nil {
			return fmt.Errorf("journals: replace lines: %w", err)
		}
		saved.Lines, err = insertLines(ctx, tx, entry.ID, entry.Lines)
		return err
	})
	return saved, err
}

func (r *pgRepository) DeleteDraft(ctx context.Context, orgID, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockEntry(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return acctshared.ErrInvalidStatus
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM journal_entries WHERE org_id = $1 AND id = $2`, orgID, id)
		return err
	})
}

func (r *pgRepository) PostEntry(ctx context.Context, entry Entry, at time.Time) (Entry, error) {
	var saved Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		fy, err := fiscalyears.FindByDateForUpdate(ctx, tx, entry.OrgID, entry.EntryDate)
		if err != nil {
			return err
		}
		if fy.IsClosed {
			return acctshared.ErrFiscalYearClosed
		}
		number, err := sequences.NextInTx(ctx, tx, entry.OrgID, sequences.DocTypeJournalEntry)
		if err != nil {
			return err
		}
		entry.FiscalYearID = &fy.ID
		saved, err = insertHeader(ctx, tx, entry, StatusPosted, &number, &at)
		if err != nil {
			return err
		}
		saved.Lines, err = insertLines(ctx, tx, saved.ID, entry.Lines)
		return err
	})
	return saved, err
}

func (r *pgRepository) PostDraft(ctx context.Context, orgID, id int64, at time.Time) (Entry, error) {
	var saved Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockEntry(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return acctshared.ErrInvalidStatus
		}
		fy, err := fiscalyears.FindByDateForUpdate(ctx, tx, orgID, current.EntryDate)
		if err != nil {
			return err
		}
		if fy.IsClosed {
			return acctshared.ErrFiscalYearClosed
		}
		number, err := sequences.NextInTx(ctx, tx, orgID, sequences.DocTypeJournalEntry)
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `UPDATE journal_entries
SET status = $3, number = $4, fiscal_year_id = $5, posted_at = $6, updated_at = NOW()
WHERE org_id = $1 AND id = $2
RETURNING `+entryColumns,
			orgID, id, StatusPosted, number, fy.ID, at)
		saved, err = scanEntry(row)
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	saved.Lines = lines
	return saved, nil
}

func (r *pgRepository) CancelEntry(ctx context.Context, orgID, id int64, at time.Time) (Entry, error) {
	var saved Entry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockEntry(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if current.Status != StatusPosted {
			return acctshared.ErrInvalidStatus
		}
		fy, err := fiscalyears.FindByDateForUpdate(ctx, tx, orgID, current.EntryDate)
		if err != nil {
			return err
		}
		if fy.IsClosed {
			return acctshared.ErrFiscalYearClosed
		}
		row := tx.QueryRow(ctx, `UPDATE journal_entries
SET status = $3, cancelled_at = $4, updated_at = NOW()
WHERE org_id = $1 AND id = $2
RETURNING `+entryColumns,
			orgID, id, StatusCancelled, at)
		saved, err = scanEntry(row)
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	saved.Lines = lines
	return saved, nil
}

func (r *pgRepository) loadLines(ctx context.Context, entryID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, entry_id, account_number, label, debit, credit, position
FROM journal_entry_lines WHERE entry_id = $1 ORDER BY position`, entryID)
	if err != nil {
		return nil, fmt.Errorf("journals: load lines: %w", err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountNumber, &l.Label, &l.Debit, &l.Credit, &l.Position); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func lockEntry(ctx context.Context, tx pgx.Tx, orgID, id int64) (Entry, error) {
	row := tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE org_id = $1 AND id = $2 FOR UPDATE`, orgID, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, acctshared.ErrJournalNotFound
	}
	return entry, err
}

func insertHeader(ctx context.Context, tx pgx.Tx, entry Entry, status EntryStatus, number *int64, postedAt *time.Time) (Entry, error) {
	row := tx.QueryRow(ctx, `INSERT INTO journal_entries
(org_id, number, entry_date, journal, description, reference_type, reference_id, status, fiscal_year_id, created_by, posted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+entryColumns,
		entry.OrgID, number, entry.EntryDate, entry.Journal, entry.Description,
		entry.ReferenceType, entry.ReferenceID, status, entry.FiscalYearID, entry.CreatedBy, postedAt)
	return scanEntry(row)
}

func insertLines(ctx context.Context, tx pgx.Tx, entryID int64, lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		row := tx.QueryRow(ctx, `INSERT INTO journal_entry_lines (entry_id, account_number, label, debit, credit, position)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, entry_id, account_number, label, debit, credit, position`,
			entryID, l.AccountNumber, l.Label, l.Debit, l.Credit, l.Position)
		var saved Line
		if err := row.Scan(&saved.ID, &saved.EntryID, &saved.AccountNumber, &saved.Label, &saved.Debit, &saved.Credit, &saved.Position); err != nil {
			return nil, fmt.Errorf("journals: insert line %d: %w", l.Position, err)
		}
		out = append(out, saved)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.OrgID, &e.Number, &e.EntryDate, &e.Journal, &e.Description,
		&e.ReferenceType, &e.ReferenceID, &e.Status, &e.FiscalYearID, &e.CreatedBy,
		&e.PostedAt, &e.CancelledAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
