package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, orgID int64) ([]Account, error)
	Get(ctx context.Context, orgID, id int64) (Account, error)
	GetByNumber(ctx context.Context, orgID int64, number string) (Account, error)
	Insert(ctx context.Context, in CreateAccountInput, class int) (Account, error)
	SetActive(ctx context.Context, orgID, id int64, active bool) error
	Delete(ctx context.Context, orgID, id int64) error
	HasJournalLines(ctx context.Context, orgID int64, number string) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, org_id, number, name, class, type, parent_number, is_system, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.OrgID, &a.Number, &a.Name, &a.Class, &a.Type, &a.ParentNumber, &a.IsSystem, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, orgID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE org_id=$1 ORDER BY number`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE org_id=$1 AND id=$2`, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) GetByNumber(ctx context.Context, orgID int64, number string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM chart_of_accounts WHERE org_id=$1 AND number=$2`, orgID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, in CreateAccountInput, class int) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `INSERT INTO chart_of_accounts (org_id, number, name, class, type, parent_number, is_system, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE) RETURNING `+accountColumns,
		in.OrgID, in.Number, in.Name, class, in.Type, in.ParentNumber, in.IsSystem))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateAccountNumber
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) SetActive(ctx context.Context, orgID, id int64, active bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE chart_of_accounts SET is_active=$3, updated_at=NOW() WHERE org_id=$1 AND id=$2`, orgID, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM chart_of_accounts WHERE org_id=$1 AND id=$2`, orgID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

// HasJournalLines reports whether any journal line references the account.
// Lines carry the account number, not the chart row id.
func (r *repository) HasJournalLines(ctx context.Context, orgID int64, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.org_id=$1 AND l.account_number=$2)`, orgID, number).Scan(&exists)
	return exists, err
}
