package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/ledger"
)

// ReportsWarmer pre-builds the current year's ledger aggregates so the first
// morning request hits a warm cache.
type ReportsWarmer struct {
	ledger *ledger.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewReportsWarmer constructs the warmer.
func NewReportsWarmer(service *ledger.Service, logger *slog.Logger) *ReportsWarmer {
	return &ReportsWarmer{ledger: service, logger: logger, now: time.Now}
}

// Handle processes TaskReportsWarmup tasks.
func (w *ReportsWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OrgID == 0 {
		return asynq.SkipRetry
	}

	now := w.now()
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)

	if _, err := w.ledger.TrialBalance(ctx, payload.OrgID, &from, &to); err != nil {
		return err
	}
	if _, err := w.ledger.GeneralLedger(ctx, payload.OrgID, &from, &to); err != nil {
		return err
	}
	w.logger.Info("report caches warmed",
		slog.Int64("org_id", payload.OrgID),
		slog.String("from", from.Format("2006-01-02")),
		slog.String("to", to.Format("2006-01-02")))
	return nil
}
