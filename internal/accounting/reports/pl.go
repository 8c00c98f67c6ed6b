package reports

import (
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
)

// IncomeLine is one account's contribution to a compte de résultat section.
type IncomeLine struct {
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	Amount        float64 `json:"amount"`
}

// IncomeSection groups expense or income accounts under a heading.
type IncomeSection struct {
	Label string       `json:"label"`
	Lines []IncomeLine `json:"lines"`
	Total float64      `json:"total"`
}

// IncomeStatement is the French compte de résultat: class 6 expenses against
// class 7 income, broken down by the usual PCG sub-groups.
type IncomeStatement struct {
	Purchases     IncomeSection `json:"purchases"`
	External      IncomeSection `json:"external"`
	Taxes         IncomeSection `json:"taxes"`
	Personnel     IncomeSection `json:"personnel"`
	OtherExpenses IncomeSection `json:"other_expenses"`
	TotalExpenses float64       `json:"total_expenses"`

	Sales       IncomeSection `json:"sales"`
	OtherIncome IncomeSection `json:"other_income"`
	TotalIncome float64       `json:"total_income"`

	NetResult float64 `json:"net_result"`
}

// BuildIncomeStatement splits class 6 and 7 trial balance rows into the
// compte de résultat. Expense amounts read from the debit solde, income from
// the credit solde, both net of the opposite side.
func BuildIncomeStatement(tb ledger.TrialBalance) IncomeStatement {
	is := IncomeStatement{
		Purchases:     IncomeSection{Label: "Achats"},
		External:      IncomeSection{Label: "Services extérieurs"},
		Taxes:         IncomeSection{Label: "Impôts et taxes"},
		Personnel:     IncomeSection{Label: "Charges de personnel"},
		OtherExpenses: IncomeSection{Label: "Autres charges"},
		Sales:         IncomeSection{Label: "Ventes et prestations"},
		OtherIncome:   IncomeSection{Label: "Autres produits"},
	}

	for _, row := range tb.Rows {
		switch row.Class {
		case 6:
			amount := row.SoldeDebit - row.SoldeCredit
			section := &is.OtherExpenses
			switch {
			case hasPrefix(row.AccountNumber, "60"):
				section = &is.Purchases
			case hasPrefix(row.AccountNumber, "61", "62"):
				section = &is.External
			case hasPrefix(row.AccountNumber, "63"):
				section = &is.Taxes
			case hasPrefix(row.AccountNumber, "64"):
				section = &is.Personnel
			}
			addIncomeLine(section, row, amount)
		case 7:
			amount := row.SoldeCredit - row.SoldeDebit
			section := &is.OtherIncome
			if hasPrefix(row.AccountNumber, "70") {
				section = &is.Sales
			}
			addIncomeLine(section, row, amount)
		}
	}

	is.TotalExpenses = is.Purchases.Total + is.External.Total + is.Taxes.Total + is.Personnel.Total + is.OtherExpenses.Total
	is.TotalIncome = is.Sales.Total + is.OtherIncome.Total
	is.NetResult = is.TotalIncome - is.TotalExpenses
	return is
}

func addIncomeLine(section *IncomeSection, row ledger.TrialBalanceRow, amount float64) {
	if amount == 0 {
		return
	}
	section.Lines = append(section.Lines, IncomeLine{
		AccountNumber: row.AccountNumber,
		AccountName:   row.AccountName,
		Amount:        amount,
	})
	section.Total += amount
}
