package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnbalanced indicates debit != credit beyond the rounding tolerance.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrAccountNotFound indicates a missing chart-of-accounts entry.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrJournalNotFound indicates a missing journal entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrFiscalYearNotFound indicates no fiscal year covers the entry date.
	ErrFiscalYearNotFound = errors.New("accounting: no fiscal year covers date")
	// ErrFiscalYearClosed indicates the entry date falls inside a closed year.
	ErrFiscalYearClosed = errors.New("accounting: fiscal year is closed")
	// ErrProtectedAccount indicates a system account cannot be deleted.
	ErrProtectedAccount = errors.New("accounting: system account is protected")
	// ErrDuplicateAccountNumber indicates the account number already exists.
	ErrDuplicateAccountNumber = errors.New("accounting: account number already exists")
	// ErrInvalidStatus indicates the lifecycle transition is not allowed.
	ErrInvalidStatus = errors.New("accounting: invalid status transition")
	// ErrInvalidInput indicates malformed input.
	ErrInvalidInput = errors.New("accounting: invalid input")
)

// BalanceTolerance absorbs floating-point rounding when comparing entry
// totals. It is not a policy for allowing unbalanced entries.
const BalanceTolerance = 0.01

// UnbalancedEntryError reports the computed discrepancy between debit and
// credit totals. It matches ErrUnbalanced under errors.Is.
type UnbalancedEntryError struct {
	TotalDebit  float64
	TotalCredit float64
}

// Discrepancy returns the absolute difference between the totals.
func (e *UnbalancedEntryError) Discrepancy() float64 {
	d := e.TotalDebit - e.TotalCredit
	if d < 0 {
		return -d
	}
	return d
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("accounting: journal lines must balance: debit %s != credit %s (discrepancy %s)",
		decimal.NewFromFloat(e.TotalDebit).StringFixed(2),
		decimal.NewFromFloat(e.TotalCredit).StringFixed(2),
		decimal.NewFromFloat(e.Discrepancy()).StringFixed(2))
}

// Is makes errors.Is(err, ErrUnbalanced) succeed for typed instances.
func (e *UnbalancedEntryError) Is(target error) bool {
	return target == ErrUnbalanced
}
