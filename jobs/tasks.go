package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity is the task type for the ledger integrity scan.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup is the task type for pre-building report caches.
	TaskReportsWarmup = "reports:warmup"
)

// LedgerIntegrityPayload scopes the scan to one organization, or to all of
// them when OrgID is zero.
type LedgerIntegrityPayload struct {
	OrgID int64 `json:"org_id"`
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// ReportsWarmupPayload scopes the warmup to one organization.
type ReportsWarmupPayload struct {
	OrgID int64 `json:"org_id"`
}

// NewReportsWarmupTask constructs an Asynq task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
