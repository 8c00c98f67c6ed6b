package journals

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus is the journal entry lifecycle state.
type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusPosted    EntryStatus = "posted"
	StatusCancelled EntryStatus = "cancelled"
)

// JournalType identifies the journal book an entry belongs to.
type JournalType string

const (
	JournalSales     JournalType = "sales"
	JournalPurchases JournalType = "purchases"
	JournalBank      JournalType = "bank"
	JournalGeneral   JournalType = "general"
)

// Valid reports whether the journal type is known.
func (j JournalType) Valid() bool {
	switch j {
	case JournalSales, JournalPurchases, JournalBank, JournalGeneral:
		return true
	}
	return false
}

// Code returns the short journal code used in exports.
func (j JournalType) Code() string {
	switch j {
	case JournalSales:
		return "VE"
	case JournalPurchases:
		return "AC"
	case JournalBank:
		return "BQ"
	default:
		return "OD"
	}
}

// Label returns the French journal book name.
func (j JournalType) Label() string {
	switch j {
	case JournalSales:
		return "Journal des ventes"
	case JournalPurchases:
		return "Journal des achats"
	case JournalBank:
		return "Journal de banque"
	default:
		return "Opérations diverses"
	}
}

// ReferenceType links an entry back to its source document.
type ReferenceType string

const (
	RefInvoice ReferenceType = "invoice"
	RefBill    ReferenceType = "bill"
	RefPayment ReferenceType = "payment"
	RefManual  ReferenceType = "manual"
)

// Valid reports whether the reference type is known.
func (r ReferenceType) Valid() bool {
	switch r {
	case RefInvoice, RefBill, RefPayment, RefManual:
		return true
	}
	return false
}

// Entry is a journal entry header. Number is nil while the entry is a draft
// and allocated atomically at posting time.
type Entry struct {
	ID            int64
	OrgID         int64
	Number        *int64
	EntryDate     time.Time
	Journal       JournalType
	Description   string
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	Status        EntryStatus
	FiscalYearID  *int64
	CreatedBy     int64
	PostedAt      *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []Line
}

// Line is a single debit or credit movement.
type Line struct {
	ID            int64
	EntryID       int64
	AccountNumber string
	Label         string
	Debit         float64
	Credit        float64
	Position      int
}

// TotalDebit sums the debit side of the entry.
func (e Entry) TotalDebit() float64 {
	var sum float64
	for _, l := range e.Lines {
		sum += l.Debit
	}
	return sum
}

// TotalCredit sums the credit side of the entry.
func (e Entry) TotalCredit() float64 {
	var sum float64
	for _, l := range e.Lines {
		sum += l.Credit
	}
	return sum
}
