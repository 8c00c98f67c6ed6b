package reports

import (
	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
)

// VATSummary nets TVA collectée against TVA déductible for a declaration
// period. A positive balance is owed to the tax authority; a negative one is
// a credit to carry forward.
type VATSummary struct {
	Collected  float64 `json:"collected"`
	Deductible float64 `json:"deductible"`
	Balance    float64 `json:"balance"`
}

// BuildVATSummary reads the VAT accounts from the trial balance. Collected
// VAT (44571x) carries a credit solde, deductible VAT (44566x) a debit one;
// contra postings on the opposite side net out.
func BuildVATSummary(tb ledger.TrialBalance) VATSummary {
	var out VATSummary
	for _, row := range tb.Rows {
		switch {
		case hasPrefix(row.AccountNumber, "44571"):
			out.Collected += row.SoldeCredit - row.SoldeDebit
		case hasPrefix(row.AccountNumber, "44566"):
			out.Deductible += row.SoldeDebit - row.SoldeCredit
		}
	}
	out.Balance = out.Collected - out.Deductible
	return out
}
