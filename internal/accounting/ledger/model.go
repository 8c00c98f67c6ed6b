package ledger

import "time"

// Movement is one posted journal line joined with its entry header and
// account. Only posted entries ever reach this type: drafts and cancelled
// entries are filtered at the query.
type Movement struct {
	EntryID       int64
	EntryNumber   int64
	EntryDate     time.Time
	Journal       string
	AccountNumber string
	AccountName   string
	Label         string
	Debit         float64
	Credit        float64
}

// Balance is an account's accumulated debit and credit.
type Balance struct {
	Debit  float64
	Credit float64
}

// Net returns debit minus credit. Positive means a debit balance.
func (b Balance) Net() float64 {
	return b.Debit - b.Credit
}

// LedgerLine is a movement with the running balance after applying it.
type LedgerLine struct {
	Movement
	Running float64
}

// AccountLedger groups an account's movements over the requested range.
// PriorBalance carries the net balance accumulated before the range so a
// partial-year ledger still reconciles with the full ledger.
type AccountLedger struct {
	AccountNumber string
	AccountName   string
	PriorBalance  float64
	Lines         []LedgerLine
	TotalDebit    float64
	TotalCredit   float64
	EndBalance    float64
}

// GeneralLedger is the full ledger for one organization and date range.
type GeneralLedger struct {
	From     *time.Time
	To       *time.Time
	Accounts []AccountLedger
}

// TrialBalanceRow is one account's aggregate with the net split into a
// single-sided solde, the French presentation convention.
type TrialBalanceRow struct {
	AccountNumber string
	AccountName   string
	Class         int
	TotalDebit    float64
	TotalCredit   float64
	SoldeDebit    float64
	SoldeCredit   float64
}

// TrialBalance aggregates every account with activity in the range.
type TrialBalance struct {
	From             *time.Time
	To               *time.Time
	Rows             []TrialBalanceRow
	TotalDebit       float64
	TotalCredit      float64
	TotalSoldeDebit  float64
	TotalSoldeCredit float64
}
