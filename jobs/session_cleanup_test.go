package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	_ "github.com/kechei-store/warehouse-api/testing"
)

type fakeSessionDeleter struct {
	calls   int
	deleted int64
	err     error
}

func (f *fakeSessionDeleter) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	f.calls++
	return f.deleted, f.err
}

func TestSessionCleanupHandle(t *testing.T) {
	deleter := &fakeSessionDeleter{deleted: 3}
	cleaner := NewSessionCleaner(slog.New(slog.NewTextHandler(io.Discard, nil)), deleter)

	task, err := NewSessionCleanupTask(time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, cleaner.Handle(context.Background(), task))
	require.Equal(t, 1, deleter.calls)
}

func TestSessionCleanupBadPayload(t *testing.T) {
	deleter := &fakeSessionDeleter{}
	cleaner := NewSessionCleaner(slog.New(slog.NewTextHandler(io.Discard, nil)), deleter)

	err := cleaner.Handle(context.Background(), asynq.NewTask(TaskSessionCleanup, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Equal(t, 0, deleter.calls)
}
