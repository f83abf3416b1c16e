package async

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPoolRunsEveryJobDespiteFailures(t *testing.T) {
	ctx := context.Background()
	p := NewPool(testLogger(), WithWorkers(3), WithQueueSize(2))

	var ok atomic.Int32
	for i := 0; i < 20; i++ {
		i := i
		require.NoError(t, p.Submit(ctx, Job{Name: "row", Run: func(context.Context) error {
			switch i {
			case 3:
				return errors.New("boom")
			case 7:
				panic("bad row")
			}
			ok.Add(1)
			return nil
		}}))
	}
	require.NoError(t, p.Shutdown(ctx))
	assert.EqualValues(t, 18, ok.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	ctx := context.Background()
	p := NewPool(testLogger(), WithWorkers(2))

	var cur, peak atomic.Int32
	for i := 0; i < 8; i++ {
		require.NoError(t, p.Submit(ctx, Job{Name: "slow", Run: func(context.Context) error {
			n := cur.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			cur.Add(-1)
			return nil
		}}))
	}
	require.NoError(t, p.Shutdown(ctx))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	ctx := context.Background()
	p := NewPool(testLogger())
	require.NoError(t, p.Shutdown(ctx))
	require.NoError(t, p.Shutdown(ctx))

	err := p.Submit(ctx, Job{Name: "late", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPoolJobTimeout(t *testing.T) {
	ctx := context.Background()
	p := NewPool(testLogger(), WithWorkers(1), WithJobTimeout(10*time.Millisecond))

	var sawDeadline atomic.Bool
	require.NoError(t, p.Submit(ctx, Job{Name: "stuck", Run: func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}}))
	require.NoError(t, p.Shutdown(ctx))
	assert.True(t, sawDeadline.Load())
}
