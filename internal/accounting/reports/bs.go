// Package reports derives financial statements from the trial balance.
// Statements read posted movements only; drafts and cancelled entries never
// reach them because the ledger layer filters on status.
package reports

import (
	"math"
	"strings"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// BalanceSheetLine is one account's contribution to a section.
type BalanceSheetLine struct {
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	Amount        float64 `json:"amount"`
}

// BalanceSheetSection groups lines under a heading.
type BalanceSheetSection struct {
	Label string             `json:"label"`
	Lines []BalanceSheetLine `json:"lines"`
	Total float64            `json:"total"`
}

// BalanceSheet is the French bilan: assets on one side, equity and debts on
// the other. NetIncome folds the period's classes 6 and 7 into equity so
// both sides agree.
type BalanceSheet struct {
	FixedAssets   BalanceSheetSection `json:"fixed_assets"`
	CurrentAssets BalanceSheetSection `json:"current_assets"`
	Cash          BalanceSheetSection `json:"cash"`
	TotalAssets   float64             `json:"total_assets"`

	Equity           BalanceSheetSection `json:"equity"`
	NetIncome        float64             `json:"net_income"`
	Debts            BalanceSheetSection `json:"debts"`
	TotalLiabilities float64             `json:"total_liabilities"`

	Balanced bool `json:"balanced"`
}

// BuildBalanceSheet splits trial balance rows into bilan sections. Class 4
// accounts land on the side of their solde: receivables on the asset side,
// payables with the debts. Class 5 credit soldes (overdrafts) move to debts.
func BuildBalanceSheet(tb ledger.TrialBalance) BalanceSheet {
	bs := BalanceSheet{
		FixedAssets:   BalanceSheetSection{Label: "Actif immobilisé"},
		CurrentAssets: BalanceSheetSection{Label: "Actif circulant"},
		Cash:          BalanceSheetSection{Label: "Trésorerie"},
		Equity:        BalanceSheetSection{Label: "Capitaux propres"},
		Debts:         BalanceSheetSection{Label: "Dettes"},
	}

	for _, row := range tb.Rows {
		switch row.Class {
		case 2:
			addLine(&bs.FixedAssets, row, row.SoldeDebit-row.SoldeCredit)
		case 3:
			addLine(&bs.CurrentAssets, row, row.SoldeDebit-row.SoldeCredit)
		case 4:
			if row.SoldeDebit > 0 {
				addLine(&bs.CurrentAssets, row, row.SoldeDebit)
			} else {
				addLine(&bs.Debts, row, row.SoldeCredit)
			}
		case 5:
			if row.SoldeDebit > 0 {
				addLine(&bs.Cash, row, row.SoldeDebit)
			} else {
				addLine(&bs.Debts, row, row.SoldeCredit)
			}
		case 1:
			addLine(&bs.Equity, row, row.SoldeCredit-row.SoldeDebit)
		case 6:
			bs.NetIncome -= row.SoldeDebit - row.SoldeCredit
		case 7:
			bs.NetIncome += row.SoldeCredit - row.SoldeDebit
		}
	}

	bs.TotalAssets = bs.FixedAssets.Total + bs.CurrentAssets.Total + bs.Cash.Total
	bs.TotalLiabilities = bs.Equity.Total + bs.NetIncome + bs.Debts.Total
	bs.Balanced = math.Abs(bs.TotalAssets-bs.TotalLiabilities) <= acctshared.BalanceTolerance
	return bs
}

func addLine(section *BalanceSheetSection, row ledger.TrialBalanceRow, amount float64) {
	if amount == 0 {
		return
	}
	section.Lines = append(section.Lines, BalanceSheetLine{
		AccountNumber: row.AccountNumber,
		AccountName:   row.AccountName,
		Amount:        amount,
	})
	section.Total += amount
}

func hasPrefix(number string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(number, p) {
			return true
		}
	}
	return false
}
