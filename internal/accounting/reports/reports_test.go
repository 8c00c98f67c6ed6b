package reports

import (
	"math"
	"testing"
	"time"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

// trialBalance builds the aggregate from raw balanced movements the way the
// ledger layer would.
func trialBalance(movements []ledger.Movement) ledger.TrialBalance {
	return ledger.BuildTrialBalance(movements, nil, nil)
}

func janSale() []ledger.Movement {
	return []ledger.Movement{
		{EntryNumber: 1, EntryDate: day(10), AccountNumber: "411", AccountName: "Clients", Debit: 1200},
		{EntryNumber: 1, EntryDate: day(10), AccountNumber: "701", AccountName: "Ventes de produits finis", Credit: 1000},
		{EntryNumber: 1, EntryDate: day(10), AccountNumber: "44571", AccountName: "TVA collectée", Credit: 200},
	}
}

func janPurchase() []ledger.Movement {
	return []ledger.Movement{
		{EntryNumber: 2, EntryDate: day(15), AccountNumber: "607", AccountName: "Achats de marchandises", Debit: 400},
		{EntryNumber: 2, EntryDate: day(15), AccountNumber: "44566", AccountName: "TVA déductible", Debit: 80},
		{EntryNumber: 2, EntryDate: day(15), AccountNumber: "401", AccountName: "Fournisseurs", Credit: 480},
	}
}

func TestIncomeStatementSalesTotal(t *testing.T) {
	tb := trialBalance(janSale())
	is := BuildIncomeStatement(tb)

	if is.Sales.Total != 1000 {
		t.Fatalf("a 1000 credit on 701 must report 1000 in sales, got %v", is.Sales.Total)
	}
	if is.TotalIncome != 1000 {
		t.Fatalf("expected total income 1000, got %v", is.TotalIncome)
	}
	if is.NetResult != 1000 {
		t.Fatalf("expected net result 1000, got %v", is.NetResult)
	}
}

func TestIncomeStatementSections(t *testing.T) {
	var movements []ledger.Movement
	movements = append(movements, janSale()...)
	movements = append(movements, janPurchase()...)
	movements = append(movements,
		ledger.Movement{EntryNumber: 3, EntryDate: day(20), AccountNumber: "613", AccountName: "Locations", Debit: 800},
		ledger.Movement{EntryNumber: 3, EntryDate: day(20), AccountNumber: "641", AccountName: "Rémunérations", Debit: 2000},
		ledger.Movement{EntryNumber: 3, EntryDate: day(20), AccountNumber: "631", AccountName: "Taxe sur les salaires", Debit: 150},
		ledger.Movement{EntryNumber: 3, EntryDate: day(20), AccountNumber: "512", AccountName: "Banque", Credit: 2950},
	)

	is := BuildIncomeStatement(trialBalance(movements))
	if is.Purchases.Total != 400 {
		t.Fatalf("607 belongs to purchases, got %v", is.Purchases.Total)
	}
	if is.External.Total != 800 {
		t.Fatalf("613 belongs to external services, got %v", is.External.Total)
	}
	if is.Taxes.Total != 150 {
		t.Fatalf("631 belongs to taxes, got %v", is.Taxes.Total)
	}
	if is.Personnel.Total != 2000 {
		t.Fatalf("641 belongs to personnel, got %v", is.Personnel.Total)
	}
	wantNet := 1000.0 - (400 + 800 + 150 + 2000)
	if is.NetResult != wantNet {
		t.Fatalf("expected net result %v, got %v", wantNet, is.NetResult)
	}
}

func TestBalanceSheetSidesAgree(t *testing.T) {
	var movements []ledger.Movement
	// Opening capital.
	movements = append(movements,
		ledger.Movement{EntryNumber: 1, EntryDate: day(2), AccountNumber: "512", AccountName: "Banque", Debit: 10000},
		ledger.Movement{EntryNumber: 1, EntryDate: day(2), AccountNumber: "101", AccountName: "Capital", Credit: 10000},
	)
	// Equipment purchase.
	movements = append(movements,
		ledger.Movement{EntryNumber: 2, EntryDate: day(5), AccountNumber: "218", AccountName: "Matériel", Debit: 3000},
		ledger.Movement{EntryNumber: 2, EntryDate: day(5), AccountNumber: "512", AccountName: "Banque", Credit: 3000},
	)
	movements = append(movements, janSale()...)
	movements = append(movements, janPurchase()...)

	bs := BuildBalanceSheet(trialBalance(movements))
	if !bs.Balanced {
		t.Fatalf("balance sheet must balance: assets %v vs liabilities %v", bs.TotalAssets, bs.TotalLiabilities)
	}
	if math.Abs(bs.TotalAssets-bs.TotalLiabilities) > 0.01 {
		t.Fatalf("sides differ: %v vs %v", bs.TotalAssets, bs.TotalLiabilities)
	}
	if bs.FixedAssets.Total != 3000 {
		t.Fatalf("218 belongs to fixed assets, got %v", bs.FixedAssets.Total)
	}
	if bs.Cash.Total != 7000 {
		t.Fatalf("expected 7000 in cash, got %v", bs.Cash.Total)
	}
	if bs.Equity.Total != 10000 {
		t.Fatalf("expected equity 10000, got %v", bs.Equity.Total)
	}
}

func TestBalanceSheetSplitsClassFourBySolde(t *testing.T) {
	var movements []ledger.Movement
	movements = append(movements, janSale()...)
	movements = append(movements, janPurchase()...)

	bs := BuildBalanceSheet(trialBalance(movements))
	var receivable, payable bool
	for _, l := range bs.CurrentAssets.Lines {
		if l.AccountNumber == "411" {
			receivable = true
		}
	}
	for _, l := range bs.Debts.Lines {
		if l.AccountNumber == "401" {
			payable = true
		}
	}
	if !receivable {
		t.Fatal("411 with a debit solde belongs to current assets")
	}
	if !payable {
		t.Fatal("401 with a credit solde belongs to debts")
	}
}

func TestVATSummary(t *testing.T) {
	var movements []ledger.Movement
	movements = append(movements, janSale()...)
	movements = append(movements, janPurchase()...)

	vat := BuildVATSummary(trialBalance(movements))
	if vat.Collected != 200 {
		t.Fatalf("expected collected 200, got %v", vat.Collected)
	}
	if vat.Deductible != 80 {
		t.Fatalf("expected deductible 80, got %v", vat.Deductible)
	}
	if vat.Balance != 120 {
		t.Fatalf("expected balance 120, got %v", vat.Balance)
	}
}

func TestVATCreditCarriesNegativeBalance(t *testing.T) {
	movements := []ledger.Movement{
		{EntryNumber: 1, EntryDate: day(3), AccountNumber: "607", AccountName: "Achats", Debit: 5000},
		{EntryNumber: 1, EntryDate: day(3), AccountNumber: "44566", AccountName: "TVA déductible", Debit: 1000},
		{EntryNumber: 1, EntryDate: day(3), AccountNumber: "401", AccountName: "Fournisseurs", Credit: 6000},
	}

	vat := BuildVATSummary(trialBalance(movements))
	if vat.Balance != -1000 {
		t.Fatalf("expected VAT credit of -1000, got %v", vat.Balance)
	}
}
