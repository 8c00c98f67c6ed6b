package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads posted movements for ledger aggregation.
type Repository interface {
	Movements(ctx context.Context, orgID int64, from, to *time.Time) ([]Movement, error)
	PriorBalances(ctx context.Context, orgID int64, before time.Time) (map[string]Balance, error)
	EntryImbalances(ctx context.Context, orgID int64, tolerance float64) ([]Imbalance, error)
}

// Imbalance reports a posted entry whose lines do not sum to zero. A healthy
// ledger never produces one; the integrity scan looks for them anyway.
type Imbalance struct {
	EntryID     int64
	EntryNumber int64
	TotalDebit  float64
	TotalCredit float64
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL-backed ledger repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// Cancelled and draft entries never reach the ledger: every aggregation
// query below restricts to posted entries.
const movementsSQL = `SELECT e.id, e.number, e.entry_date, e.journal, l.account_number, COALESCE(a.name, ''), l.label, l.debit, l.credit
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
LEFT JOIN chart_of_accounts a ON a.org_id = e.org_id AND a.number = l.account_number
WHERE e.org_id = $1 AND e.status = 'posted'`

const priorBalancesSQL = `SELECT l.account_number, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.org_id = $1 AND e.status = 'posted' AND e.entry_date < $2
GROUP BY l.account_number`

const imbalancesSQL = `SELECT e.id, e.number, COALESCE(SUM(l.debit), 0) AS d, COALESCE(SUM(l.credit), 0) AS c
FROM journal_entries e
JOIN journal_entry_lines l ON l.entry_id = e.id
WHERE e.org_id = $1 AND e.status = 'posted'
GROUP BY e.id, e.number
HAVING ABS(COALESCE(SUM(l.debit), 0) - COALESCE(SUM(l.credit), 0)) > $2
ORDER BY e.number`

func movementsQuery(orgID int64, from, to *time.Time) (string, []any) {
	var sb strings.Builder
	sb.WriteString(movementsSQL)
	args := []any{orgID}
	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&sb, " AND e.entry_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&sb, " AND e.entry_date <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY l.account_number, e.entry_date, e.number, l.position")
	return sb.String(), args
}

func (r *pgRepository) Movements(ctx context.Context, orgID int64, from, to *time.Time) ([]Movement, error) {
	query, args := movementsQuery(orgID, from, to)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.EntryID, &m.EntryNumber, &m.EntryDate, &m.Journal, &m.AccountNumber, &m.AccountName, &m.Label, &m.Debit, &m.Credit); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepository) PriorBalances(ctx context.Context, orgID int64, before time.Time) (map[string]Balance, error) {
	rows, err := r.pool.Query(ctx, priorBalancesSQL, orgID, before)
	if err != nil {
		return nil, fmt.Errorf("ledger: prior balances: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Balance)
	for rows.Next() {
		var number string
		var b Balance
		if err := rows.Scan(&number, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out[number] = b
	}
	return out, rows.Err()
}

func (r *pgRepository) EntryImbalances(ctx context.Context, orgID int64, tolerance float64) ([]Imbalance, error) {
	rows, err := r.pool.Query(ctx, imbalancesSQL, orgID, tolerance)
	if err != nil {
		return nil, fmt.Errorf("ledger: imbalance scan: %w", err)
	}
	defer rows.Close()

	var out []Imbalance
	for rows.Next() {
		var im Imbalance
		if err := rows.Scan(&im.EntryID, &im.EntryNumber, &im.TotalDebit, &im.TotalCredit); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}
