package accounts

import (
	"testing"

	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

func strPtr(s string) *string { return &s }

func TestGroupByClassOrdersAndLabels(t *testing.T) {
	accounts := []Account{
		{Number: "701", Name: "Ventes", Class: 7},
		{Number: "411", Name: "Clients", Class: 4},
		{Number: "401", Name: "Fournisseurs", Class: 4},
		{Number: "101", Name: "Capital", Class: 1},
	}

	groups := GroupByClass(accounts)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Class != 1 || groups[0].Label != "Capitaux" {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Class != 4 || groups[1].Label != "Tiers" {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
	if groups[1].Accounts[0].Number != "401" || groups[1].Accounts[1].Number != "411" {
		t.Fatalf("accounts not sorted within group: %+v", groups[1].Accounts)
	}
	if groups[2].Class != 7 || groups[2].Label != "Produits" {
		t.Fatalf("unexpected third group: %+v", groups[2])
	}
}

func TestBuildTreeLinksParents(t *testing.T) {
	accounts := []Account{
		{Number: "411", Name: "Clients"},
		{Number: "4111", Name: "Clients - ventes", ParentNumber: strPtr("411")},
		{Number: "4117", Name: "Clients - retenues", ParentNumber: strPtr("411")},
		{Number: "512", Name: "Banque"},
	}

	tree := BuildTree(accounts)
	if len(tree.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree.Roots))
	}
	if len(tree.Orphans) != 0 {
		t.Fatalf("expected no orphans, got %v", tree.Orphans)
	}
	var clients *TreeNode
	for _, root := range tree.Roots {
		if root.Account.Number == "411" {
			clients = root
		}
	}
	if clients == nil || len(clients.Children) != 2 {
		t.Fatalf("expected 411 with 2 children, got %+v", clients)
	}
}

func TestBuildTreeReportsDanglingParents(t *testing.T) {
	accounts := []Account{
		{Number: "4111", Name: "Clients - ventes", ParentNumber: strPtr("411")},
		{Number: "512", Name: "Banque"},
	}

	tree := BuildTree(accounts)
	if len(tree.Roots) != 2 {
		t.Fatalf("dangling child should still appear as root, got %d roots", len(tree.Roots))
	}
	if len(tree.Orphans) != 1 || tree.Orphans[0] != "411" {
		t.Fatalf("expected orphan [411], got %v", tree.Orphans)
	}
}

func TestClassOf(t *testing.T) {
	cases := map[string]int{
		"101":   1,
		"44571": 4,
		"512":   5,
		"601":   6,
		"701":   7,
		"890":   8,
		"901":   0,
		"":      0,
	}
	for number, want := range cases {
		if got := ClassOf(number); got != want {
			t.Fatalf("ClassOf(%q) = %d, want %d", number, got, want)
		}
	}
}
