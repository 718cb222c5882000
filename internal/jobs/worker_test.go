package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorker_EnqueueDrainsOnShutdown(t *testing.T) {
	w := NewWorker(2)

	var ran atomic.Int32
	for i := 0; i < 20; i++ {
		assert.True(t, w.Enqueue(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	w.Shutdown()

	assert.Equal(t, int32(20), ran.Load())
	stats := w.GetStats()
	assert.Equal(t, int64(20), stats.CompletedJobs)
	assert.Equal(t, int64(0), stats.FailedJobs)
	assert.Equal(t, 0, stats.ActiveJobs)
	assert.Equal(t, 0, stats.QueueLength)
}

func TestWorker_QueueFullRunsOnCaller(t *testing.T) {
	w := newWorker(1, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	assert.True(t, w.Enqueue(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	// the only processor is busy; this one takes the single queue slot
	var queued atomic.Bool
	assert.True(t, w.Enqueue(func(ctx context.Context) error {
		queued.Store(true)
		return nil
	}))
	assert.Equal(t, 1, w.GetStats().QueueLength)

	var inline bool
	assert.True(t, w.Enqueue(func(ctx context.Context) error {
		inline = true
		return nil
	}))
	assert.True(t, inline)
	assert.False(t, queued.Load())

	close(release)
	w.Shutdown()
	assert.True(t, queued.Load())
	assert.Equal(t, int64(3), w.GetStats().CompletedJobs)
}

func TestWorker_TracksFailuresAndPanics(t *testing.T) {
	w := NewWorker(1)

	w.Enqueue(func(ctx context.Context) error { return errors.New("smtp down") })
	w.Enqueue(func(ctx context.Context) error { panic("boom") })
	w.Enqueue(func(ctx context.Context) error { return nil })
	w.Shutdown()

	stats := w.GetStats()
	assert.Equal(t, int64(3), stats.CompletedJobs)
	assert.Equal(t, int64(2), stats.FailedJobs)
}

func TestWorker_RejectsAfterShutdown(t *testing.T) {
	w := NewWorker(1)
	w.Shutdown()
	w.Shutdown()

	assert.False(t, w.Enqueue(func(ctx context.Context) error { return nil }))
	assert.Error(t, w.ctx.Err())
}

func TestWorker_StatsReportPoolSize(t *testing.T) {
	w := NewWorker(8)
	defer w.Shutdown()
	assert.Equal(t, 8, w.GetStats().MaxConcurrent)

	small := NewWorker(0)
	defer small.Shutdown()
	assert.Equal(t, 1, small.GetStats().MaxConcurrent)
}
