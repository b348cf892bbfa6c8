// Package jobs runs background work through Asynq: the periodic low stock
// scan and audit log retention.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan walks stock levels and reports items at or below
	// their reorder level.
	TaskLowStockScan = "stock:low_stock_scan"
	// TaskAuditPrune removes audit log entries past the retention window.
	TaskAuditPrune = "audit:prune"
	// TaskSessionCleanup removes expired session mirror rows.
	TaskSessionCleanup = "auth:session_cleanup"
)

// LowStockScanPayload carries scheduling metadata.
type LowStockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs an Asynq task for the low stock scan.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// SessionCleanupPayload carries scheduling metadata.
type SessionCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSessionCleanupTask constructs an Asynq task for session cleanup.
func NewSessionCleanupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionCleanupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionCleanup, body, asynq.Queue(QueueDefault)), nil
}

// AuditPrunePayload sets the retention window for audit logs.
type AuditPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditPruneTask constructs an Asynq task for audit log pruning.
func NewAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(AuditPrunePayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, body, asynq.Queue(QueueDefault)), nil
}
