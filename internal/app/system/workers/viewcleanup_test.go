package workers_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/hydrotrim/internal/app/system/workers"
	"go.uber.org/zap"
)

type countingEvicter struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (e *countingEvicter) EvictIdle(ttl time.Duration) int {
	e.calls.Add(1)
	e.ttl.Store(int64(ttl))
	return 1
}

func TestViewCleanup_EvictsOnEachTick(t *testing.T) {
	ev := &countingEvicter{}
	w := workers.NewViewCleanup(ev, zap.NewNop(), 10*time.Millisecond, time.Minute)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for ev.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if ev.calls.Load() < 2 {
		t.Fatalf("expected at least 2 evictions, got %d", ev.calls.Load())
	}
	if got := time.Duration(ev.ttl.Load()); got != time.Minute {
		t.Errorf("ttl: got %v, want %v", got, time.Minute)
	}
}

func TestViewCleanup_StopHaltsWork(t *testing.T) {
	ev := &countingEvicter{}
	w := workers.NewViewCleanup(ev, zap.NewNop(), 10*time.Millisecond, time.Minute)
	w.Start()
	w.Stop()
	w.Stop()

	n := ev.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if ev.calls.Load() != n {
		t.Error("evictions continued after Stop")
	}
}
