package journals

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// LineInput is one movement of a submitted entry. Exactly one of debit or
// credit must be strictly positive.
type LineInput struct {
	AccountNumber string  `json:"account_number" validate:"required,max=20"`
	Label         string  `json:"label" validate:"max=200"`
	Debit         float64 `json:"debit" validate:"gte=0"`
	Credit        float64 `json:"credit" validate:"gte=0"`
}

// EntryInput is a submitted journal entry.
type EntryInput struct {
	OrgID         int64       `json:"-"`
	EntryDate     string      `json:"entry_date" validate:"required"`
	Journal       string      `json:"journal" validate:"required"`
	Description   string      `json:"description" validate:"max=500"`
	ReferenceType string      `json:"reference_type"`
	ReferenceID   string      `json:"reference_id"`
	Lines         []LineInput `json:"lines" validate:"required,min=2,dive"`
}

// Validate checks structural and double-entry invariants and converts the
// input into a domain Entry. The returned entry has no status or number yet.
func (in EntryInput) Validate() (Entry, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.EntryDate))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: entry_date must be YYYY-MM-DD", acctshared.ErrInvalidInput)
	}

	journal := JournalType(strings.TrimSpace(in.Journal))
	if !journal.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown journal %q", acctshared.ErrInvalidInput, in.Journal)
	}

	refType := RefManual
	if in.ReferenceType != "" {
		refType = ReferenceType(in.ReferenceType)
		if !refType.Valid() {
			return Entry{}, fmt.Errorf("%w: unknown reference_type %q", acctshared.ErrInvalidInput, in.ReferenceType)
		}
	}
	var refID *uuid.UUID
	if in.ReferenceID != "" {
		parsed, err := uuid.Parse(in.ReferenceID)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: reference_id must be a UUID", acctshared.ErrInvalidInput)
		}
		refID = &parsed
	}

	if len(in.Lines) < 2 {
		return Entry{}, acctshared.ErrTooFewLines
	}

	lines := make([]Line, 0, len(in.Lines))
	var totalDebit, totalCredit float64
	for i, l := range in.Lines {
		account := strings.TrimSpace(l.AccountNumber)
		if account == "" {
			return Entry{}, fmt.Errorf("%w: line %d missing account number", acctshared.ErrInvalidInput, i+1)
		}
		if l.Debit < 0 || l.Credit < 0 {
			return Entry{}, fmt.Errorf("%w: line %d has a negative amount", acctshared.ErrInvalidInput, i+1)
		}
		if (l.Debit > 0) == (l.Credit > 0) {
			return Entry{}, fmt.Errorf("%w: line %d must carry exactly one of debit or credit", acctshared.ErrInvalidInput, i+1)
		}
		totalDebit += l.Debit
		totalCredit += l.Credit
		lines = append(lines, Line{
			AccountNumber: account,
			Label:         strings.TrimSpace(l.Label),
			Debit:         l.Debit,
			Credit:        l.Credit,
			Position:      i + 1,
		})
	}

	if math.Abs(totalDebit-totalCredit) > acctshared.BalanceTolerance {
		return Entry{}, &acctshared.UnbalancedEntryError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}

	return Entry{
		OrgID:         in.OrgID,
		EntryDate:     date,
		Journal:       journal,
		Description:   strings.TrimSpace(in.Description),
		ReferenceType: refType,
		ReferenceID:   refID,
		Lines:         lines,
	}, nil
}

// ListFilter narrows entry listings.
type ListFilter struct {
	Journal  JournalType
	Status   EntryStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}
