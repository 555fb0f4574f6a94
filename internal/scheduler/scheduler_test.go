package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediatelyAndOnSchedule(t *testing.T) {
	target := &countingRefresher{}
	s := New(target, "@every 1s", time.Second, quietLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return target.calls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
}

func TestSchedulerSurvivesRefreshErrors(t *testing.T) {
	target := &countingRefresher{err: errors.New("directory unavailable")}
	s := New(target, "@every 1h", time.Second, quietLogger())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return target.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := New(&countingRefresher{}, "whenever", 0, quietLogger())
	assert.Error(t, s.Start(context.Background()))
}

func TestSchedulerSkipsCancelledContext(t *testing.T) {
	target := &countingRefresher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(target, "@every 1h", time.Second, quietLogger())
	s.run(ctx)
	assert.Zero(t, target.calls.Load())
}
