package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	runs int32
	err  error
}

func (r *countingRunner) RunIncremental(ctx context.Context) (*Result, error) {
	atomic.AddInt32(&r.runs, 1)
	return &Result{Mode: ModeIncremental}, r.err
}

func TestSchedulerRunsImmediatelyThenOnInterval(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, 20*time.Millisecond, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	runs := atomic.LoadInt32(&runner.runs)
	assert.GreaterOrEqual(t, runs, int32(2))
}

func TestSchedulerSurvivesFailedRunsWithCooldown(t *testing.T) {
	runner := &countingRunner{err: errors.New("portal unreachable")}
	s := NewScheduler(runner, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	err := s.Run(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	// The failing first run triggers the cool-down, so no second run fits
	// inside the test window.
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.runs))
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := s.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.runs))
}
