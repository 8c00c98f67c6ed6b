// Package sequences allocates gap-free sequential document numbers per
// organization. Allocation rides on the caller's transaction: the upsert
// locks the counter row, serializing concurrent submissions, and the number
// commits or rolls back atomically with the document that consumed it.
package sequences

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocType enumerates numbered document kinds.
type DocType string

const (
	DocTypeJournalEntry DocType = "journal_entry"
	DocTypeInvoice      DocType = "invoice"
	DocTypeQuote        DocType = "quote"
)

// Valid reports whether the document type is known.
func (d DocType) Valid() bool {
	switch d {
	case DocTypeJournalEntry, DocTypeInvoice, DocTypeQuote:
		return true
	}
	return false
}

const nextSQL = `INSERT INTO document_sequences (org_id, doc_type, last_value)
VALUES ($1, $2, 1)
ON CONFLICT (org_id, doc_type)
DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = NOW()
RETURNING last_value`

// NextInTx allocates the next number inside an existing transaction.
func NextInTx(ctx context.Context, tx pgx.Tx, orgID int64, doc DocType) (int64, error) {
	if !doc.Valid() {
		return 0, fmt.Errorf("sequences: unknown document type %q", doc)
	}
	var number int64
	if err := tx.QueryRow(ctx, nextSQL, orgID, doc).Scan(&number); err != nil {
		return 0, fmt.Errorf("sequences: allocate %s: %w", doc, err)
	}
	return number, nil
}

// Service exposes standalone allocation for documents that are not created
// inside an accounting transaction (invoices, quotes).
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs the allocator service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Next allocates the next number in its own transaction.
func (s *Service) Next(ctx context.Context, orgID int64, doc DocType) (int64, error) {
	if !doc.Valid() {
		return 0, fmt.Errorf("sequences: unknown document type %q", doc)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	number, err := NextInTx(ctx, tx, orgID, doc)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return number, nil
}
