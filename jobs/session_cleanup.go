package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// ExpiredSessionDeleter removes session mirror rows past their expiry.
type ExpiredSessionDeleter interface {
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// SessionCleaner drops expired rows from the Postgres session mirror. Redis
// already forgets the tokens on TTL; this keeps the audit table from growing
// without bound.
type SessionCleaner struct {
	logger *slog.Logger
	repo   ExpiredSessionDeleter
}

// NewSessionCleaner constructs the cleaner.
func NewSessionCleaner(logger *slog.Logger, repo ExpiredSessionDeleter) *SessionCleaner {
	return &SessionCleaner{logger: logger, repo: repo}
}

// Handle processes TaskSessionCleanup tasks.
func (c *SessionCleaner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	deleted, err := c.repo.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	c.logger.Info("session cleanup finished", slog.Int64("deleted", deleted))
	return nil
}
