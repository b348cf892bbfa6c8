package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditPruner deletes audit log entries older than the retention window.
type AuditPruner struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewAuditPruner constructs the pruner.
func NewAuditPruner(logger *slog.Logger, pool *pgxpool.Pool) *AuditPruner {
	return &AuditPruner{logger: logger, pool: pool}
}

// Handle processes TaskAuditPrune tasks.
func (p *AuditPruner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	retention := payload.Retention
	if retention <= 0 {
		retention = 365 * 24 * time.Hour
	}

	tag, err := p.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, time.Now().UTC().Add(-retention))
	if err != nil {
		return err
	}
	p.logger.Info("audit prune finished", slog.Int64("deleted", tag.RowsAffected()))
	return nil
}
