package ledger

import (
	"math"
	"testing"
	"time"

	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func salesEntry(number int64, d int, amount float64) []Movement {
	vat := amount * 0.2
	return []Movement{
		{EntryNumber: number, EntryDate: day(d), Journal: "sales", AccountNumber: "411", AccountName: "Clients", Debit: amount + vat},
		{EntryNumber: number, EntryDate: day(d), Journal: "sales", AccountNumber: "701", AccountName: "Ventes", Credit: amount},
		{EntryNumber: number, EntryDate: day(d), Journal: "sales", AccountNumber: "44571", AccountName: "TVA collectée", Credit: vat},
	}
}

func TestGeneralLedgerRunningBalance(t *testing.T) {
	movements := []Movement{
		{EntryNumber: 1, EntryDate: day(5), Journal: "bank", AccountNumber: "512", AccountName: "Banque", Debit: 1000},
		{EntryNumber: 2, EntryDate: day(10), Journal: "bank", AccountNumber: "512", AccountName: "Banque", Credit: 300},
		{EntryNumber: 3, EntryDate: day(20), Journal: "bank", AccountNumber: "512", AccountName: "Banque", Debit: 50},
	}

	gl := BuildGeneralLedger(movements, nil, nil, nil)
	if len(gl.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(gl.Accounts))
	}
	bank := gl.Accounts[0]
	want := []float64{1000, 700, 750}
	for i, w := range want {
		if bank.Lines[i].Running != w {
			t.Fatalf("line %d: expected running %v, got %v", i, w, bank.Lines[i].Running)
		}
	}
	if bank.EndBalance != 750 {
		t.Fatalf("expected end balance 750, got %v", bank.EndBalance)
	}
}

func TestGeneralLedgerCarriesPriorBalance(t *testing.T) {
	from := day(10)
	movements := []Movement{
		{EntryNumber: 5, EntryDate: day(15), Journal: "bank", AccountNumber: "512", AccountName: "Banque", Debit: 200},
	}
	prior := map[string]Balance{
		"512": {Debit: 1000, Credit: 400},
		"401": {Debit: 0, Credit: 250},
	}

	gl := BuildGeneralLedger(movements, prior, &from, nil)
	if len(gl.Accounts) != 2 {
		t.Fatalf("expected 2 accounts (one carried forward), got %d", len(gl.Accounts))
	}
	// Sorted by number: 401 before 512.
	suppliers := gl.Accounts[0]
	if suppliers.AccountNumber != "401" || suppliers.PriorBalance != -250 || len(suppliers.Lines) != 0 {
		t.Fatalf("unexpected carried account: %+v", suppliers)
	}
	bank := gl.Accounts[1]
	if bank.PriorBalance != 600 {
		t.Fatalf("expected prior balance 600, got %v", bank.PriorBalance)
	}
	if bank.Lines[0].Running != 800 {
		t.Fatalf("running balance must start from prior balance, got %v", bank.Lines[0].Running)
	}
	if bank.EndBalance != 800 {
		t.Fatalf("expected end balance 800, got %v", bank.EndBalance)
	}
}

func TestTrialBalanceSoldeSplit(t *testing.T) {
	var movements []Movement
	movements = append(movements, salesEntry(1, 5, 1000)...)
	movements = append(movements, salesEntry(2, 12, 500)...)

	tb := BuildTrialBalance(movements, nil, nil)
	if len(tb.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tb.Rows))
	}

	rows := map[string]TrialBalanceRow{}
	for _, row := range tb.Rows {
		rows[row.AccountNumber] = row
	}
	clients := rows["411"]
	if clients.SoldeDebit != 1800 || clients.SoldeCredit != 0 {
		t.Fatalf("411 should carry a debit solde of 1800, got %+v", clients)
	}
	sales := rows["701"]
	if sales.SoldeCredit != 1500 || sales.SoldeDebit != 0 {
		t.Fatalf("701 should carry a credit solde of 1500, got %+v", sales)
	}
	vat := rows["44571"]
	if vat.SoldeCredit != 300 {
		t.Fatalf("44571 should carry a credit solde of 300, got %+v", vat)
	}
	if vat.Class != 4 {
		t.Fatalf("44571 belongs to class 4, got %d", vat.Class)
	}
}

func TestTrialBalanceTotalsAreEqual(t *testing.T) {
	var movements []Movement
	movements = append(movements, salesEntry(1, 3, 1234.56)...)
	movements = append(movements, salesEntry(2, 8, 99.99)...)
	movements = append(movements,
		Movement{EntryNumber: 3, EntryDate: day(14), Journal: "purchases", AccountNumber: "607", AccountName: "Achats", Debit: 450},
		Movement{EntryNumber: 3, EntryDate: day(14), Journal: "purchases", AccountNumber: "44566", AccountName: "TVA déductible", Debit: 90},
		Movement{EntryNumber: 3, EntryDate: day(14), Journal: "purchases", AccountNumber: "401", AccountName: "Fournisseurs", Credit: 540},
	)

	tb := BuildTrialBalance(movements, nil, nil)
	if math.Abs(tb.TotalDebit-tb.TotalCredit) > 0.01 {
		t.Fatalf("total debit %v != total credit %v", tb.TotalDebit, tb.TotalCredit)
	}
	if math.Abs(tb.TotalSoldeDebit-tb.TotalSoldeCredit) > 0.01 {
		t.Fatalf("solde columns differ: %v vs %v", tb.TotalSoldeDebit, tb.TotalSoldeCredit)
	}
	if !CheckBalanced(tb) {
		t.Fatal("trial balance built from balanced entries must verify")
	}
}

func TestTrialBalanceExcludesZeroActivity(t *testing.T) {
	movements := []Movement{
		{EntryNumber: 1, EntryDate: day(1), AccountNumber: "512", Debit: 100},
		{EntryNumber: 1, EntryDate: day(1), AccountNumber: "101", Credit: 100},
		{EntryNumber: 2, EntryDate: day(2), AccountNumber: "530", Debit: 0, Credit: 0},
	}

	tb := BuildTrialBalance(movements, nil, nil)
	for _, row := range tb.Rows {
		if row.AccountNumber == "530" {
			t.Fatal("zero-activity account must be excluded")
		}
	}
	if len(tb.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tb.Rows))
	}
}
