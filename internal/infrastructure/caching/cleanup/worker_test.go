package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired() int {
	p.calls.Add(1)
	return 1
}

func (p *countingPurger) Len() int { return 0 }

func TestWorkerPurgesOnEachTick(t *testing.T) {
	purger := &countingPurger{}
	w := NewWorker(purger, &Config{CleanupInterval: 5 * time.Millisecond}, logging.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestRunOnceReturnsRemoved(t *testing.T) {
	purger := &countingPurger{}
	w := NewWorker(purger, &Config{CleanupInterval: time.Hour, VerboseReporting: true}, logging.NewDiscardLogger())
	assert.Equal(t, 1, w.RunOnce())
}
