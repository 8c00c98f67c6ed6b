package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/accounts"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// BuildGeneralLedger groups movements per account and computes running
// balances. The running balance starts from the account's prior net balance
// so the end balance of a windowed ledger matches the all-time ledger.
// Movements must already be sorted by account, date, entry number.
func BuildGeneralLedger(movements []Movement, prior map[string]Balance, from, to *time.Time) GeneralLedger {
	byAccount := make(map[string]*AccountLedger)
	var order []string

	for _, m := range movements {
		al, ok := byAccount[m.AccountNumber]
		if !ok {
			al = &AccountLedger{
				AccountNumber: m.AccountNumber,
				AccountName:   m.AccountName,
				PriorBalance:  prior[m.AccountNumber].Net(),
			}
			byAccount[m.AccountNumber] = al
			order = append(order, m.AccountNumber)
		}
		running := al.PriorBalance + al.TotalDebit - al.TotalCredit + m.Debit - m.Credit
		al.Lines = append(al.Lines, LedgerLine{Movement: m, Running: running})
		al.TotalDebit += m.Debit
		al.TotalCredit += m.Credit
	}

	// Accounts with a prior balance but no movement in the range still show
	// up, carrying the balance forward.
	for number, bal := range prior {
		if _, ok := byAccount[number]; ok {
			continue
		}
		if bal.Net() == 0 {
			continue
		}
		byAccount[number] = &AccountLedger{AccountNumber: number, PriorBalance: bal.Net()}
		order = append(order, number)
	}

	sort.Strings(order)
	out := GeneralLedger{From: from, To: to}
	for _, number := range order {
		al := byAccount[number]
		al.EndBalance = al.PriorBalance + al.TotalDebit - al.TotalCredit
		out.Accounts = append(out.Accounts, *al)
	}
	return out
}

// BuildTrialBalance aggregates movements per account. The net balance is
// split into solde débiteur or solde créditeur; accounts with no activity
// are excluded. The grand totals of both solde columns are equal for any
// set of balanced entries.
func BuildTrialBalance(movements []Movement, from, to *time.Time) TrialBalance {
	type agg struct {
		name   string
		debit  float64
		credit float64
	}
	byAccount := make(map[string]*agg)
	var order []string

	for _, m := range movements {
		a, ok := byAccount[m.AccountNumber]
		if !ok {
			a = &agg{name: m.AccountName}
			byAccount[m.AccountNumber] = a
			order = append(order, m.AccountNumber)
		}
		a.debit += m.Debit
		a.credit += m.Credit
	}

	sort.Strings(order)
	out := TrialBalance{From: from, To: to}
	for _, number := range order {
		a := byAccount[number]
		if a.debit == 0 && a.credit == 0 {
			continue
		}
		row := TrialBalanceRow{
			AccountNumber: number,
			AccountName:   a.name,
			Class:         accounts.ClassOf(number),
			TotalDebit:    a.debit,
			TotalCredit:   a.credit,
		}
		net := a.debit - a.credit
		if net > 0 {
			row.SoldeDebit = net
		} else {
			row.SoldeCredit = -net
		}
		out.Rows = append(out.Rows, row)
		out.TotalDebit += row.TotalDebit
		out.TotalCredit += row.TotalCredit
		out.TotalSoldeDebit += row.SoldeDebit
		out.TotalSoldeCredit += row.SoldeCredit
	}
	return out
}

// CheckBalanced verifies the trial balance equalities within the rounding
// tolerance: total debit equals total credit, and the solde columns match.
func CheckBalanced(tb TrialBalance) bool {
	if math.Abs(tb.TotalDebit-tb.TotalCredit) > acctshared.BalanceTolerance {
		return false
	}
	return math.Abs(tb.TotalSoldeDebit-tb.TotalSoldeCredit) <= acctshared.BalanceTolerance
}
