package ledger

import (
	"strings"
	"testing"
	"time"

	_ "github.com/grandlivre-erp/grandlivre-erp/testing"
)

// The posted-only restriction in the aggregation SQL is the single point
// excluding cancelled and draft entries from ledgers, balances and the
// integrity scan.
func TestAggregationQueriesCountOnlyPostedEntries(t *testing.T) {
	queries := map[string]string{
		"movements":      movementsSQL,
		"prior balances": priorBalancesSQL,
		"imbalances":     imbalancesSQL,
	}
	for name, q := range queries {
		if !strings.Contains(q, `e.status = 'posted'`) {
			t.Fatalf("%s query must restrict to posted entries:\n%s", name, q)
		}
	}
}

func TestMovementsQueryKeepsPostedFilterWithRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	query, args := movementsQuery(7, &from, &to)
	if !strings.Contains(query, `e.status = 'posted'`) {
		t.Fatalf("range filter must not displace the posted restriction:\n%s", query)
	}
	if len(args) != 3 {
		t.Fatalf("expected org + two date args, got %v", args)
	}
	if !strings.Contains(query, "e.entry_date >= $2") || !strings.Contains(query, "e.entry_date <= $3") {
		t.Fatalf("date predicates misnumbered:\n%s", query)
	}

	query, args = movementsQuery(7, nil, nil)
	if len(args) != 1 {
		t.Fatalf("expected org arg only, got %v", args)
	}
	if !strings.Contains(query, "ORDER BY l.account_number, e.entry_date, e.number, l.position") {
		t.Fatalf("movements must stay ordered for running balances:\n%s", query)
	}
}
