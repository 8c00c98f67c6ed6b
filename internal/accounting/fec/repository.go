package fec

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads posted lines for the export.
type Repository interface {
	Rows(ctx context.Context, orgID int64, from, to time.Time) ([]Row, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL-backed FEC repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// Rows returns one export row per posted line in the window, ordered by
// entry number then line position, the validation order the administration
// expects.
func (r *pgRepository) Rows(ctx context.Context, orgID int64, from, to time.Time) ([]Row, error) {
	rows, err := r.pool.Query(ctx, `SELECT e.journal, e.number, e.entry_date, e.description, e.reference_type, e.reference_id::text, e.posted_at,
	l.account_number, COALESCE(a.name, ''), l.label, l.debit, l.credit
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.entry_id
LEFT JOIN chart_of_accounts a ON a.org_id = e.org_id AND a.number = l.account_number
WHERE e.org_id = $1 AND e.status = 'posted' AND e.entry_date >= $2 AND e.entry_date <= $3
ORDER BY e.number, l.position`, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fec: rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			journal     string
			number      int64
			entryDate   time.Time
			description string
			refType     string
			refID       *string
			postedAt    *time.Time
			row         Row
		)
		if err := rows.Scan(&journal, &number, &entryDate, &description, &refType, &refID, &postedAt,
			&row.CompteNum, &row.CompteLib, &row.EcritureLib, &row.Debit, &row.Credit); err != nil {
			return nil, err
		}
		jt := journalType(journal)
		row.JournalCode = jt.code
		row.JournalLib = jt.label
		row.EcritureNum = strconv.FormatInt(number, 10)
		row.EcritureDate = entryDate
		row.PieceRef = pieceRef(refType, refID, number)
		row.PieceDate = entryDate
		if row.EcritureLib == "" {
			row.EcritureLib = description
		}
		if postedAt != nil {
			row.ValidDate = *postedAt
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type journalMeta struct {
	code  string
	label string
}

func journalType(journal string) journalMeta {
	switch journal {
	case "sales":
		return journalMeta{"VE", "Journal des ventes"}
	case "purchases":
		return journalMeta{"AC", "Journal des achats"}
	case "bank":
		return journalMeta{"BQ", "Journal de banque"}
	default:
		return journalMeta{"OD", "Opérations diverses"}
	}
}

// pieceRef points at the source document when one exists, otherwise at the
// entry itself.
func pieceRef(refType string, refID *string, number int64) string {
	if refID != nil && *refID != "" && refType != "" && refType != "manual" {
		return refType + ":" + *refID
	}
	return strconv.FormatInt(number, 10)
}
