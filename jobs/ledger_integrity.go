package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
)

// LedgerIntegrityChecker re-verifies the double-entry equality over posted
// entries. The posting path already enforces it, so a hit means corruption
// (manual SQL, partial restore) and is worth waking someone up for.
type LedgerIntegrityChecker struct {
	pool   *pgxpool.Pool
	ledger ledger.Repository
	logger *slog.Logger
}

// NewLedgerIntegrityChecker constructs the checker.
func NewLedgerIntegrityChecker(pool *pgxpool.Pool, repo ledger.Repository, logger *slog.Logger) *LedgerIntegrityChecker {
	return &LedgerIntegrityChecker{pool: pool, ledger: repo, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *LedgerIntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	orgIDs := []int64{payload.OrgID}
	if payload.OrgID == 0 {
		var err error
		orgIDs, err = c.allOrgIDs(ctx)
		if err != nil {
			return err
		}
	}

	for _, orgID := range orgIDs {
		imbalances, err := c.ledger.EntryImbalances(ctx, orgID, acctshared.BalanceTolerance)
		if err != nil {
			return err
		}
		if len(imbalances) == 0 {
			c.logger.Info("ledger integrity ok", slog.Int64("org_id", orgID))
			continue
		}
		for _, im := range imbalances {
			c.logger.Error("unbalanced posted entry",
				slog.Int64("org_id", orgID),
				slog.Int64("entry_id", im.EntryID),
				slog.Int64("entry_number", im.EntryNumber),
				slog.Float64("total_debit", im.TotalDebit),
				slog.Float64("total_credit", im.TotalCredit))
		}
	}
	return nil
}

func (c *LedgerIntegrityChecker) allOrgIDs(ctx context.Context) ([]int64, error) {
	rows, err := c.pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
