// internal/app/system/workers/viewcleanup.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Evicter drops open dashboard views idle for longer than ttl and reports
// how many were closed.
type Evicter interface {
	EvictIdle(ttl time.Duration) int
}

// ViewCleanup is a background worker that closes abandoned dashboard views.
type ViewCleanup struct {
	views    Evicter
	log      *zap.Logger
	interval time.Duration
	idleTTL  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewViewCleanup creates a new view cleanup worker.
//
// Parameters:
//   - views: the open view registry
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - idleTTL: how long a view may go untouched before it is closed (e.g., 30 minutes)
func NewViewCleanup(views Evicter, logger *zap.Logger, interval, idleTTL time.Duration) *ViewCleanup {
	return &ViewCleanup{
		views:    views,
		log:      logger,
		interval: interval,
		idleTTL:  idleTTL,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *ViewCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("view cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_ttl", w.idleTTL))
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call more than once.
func (w *ViewCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("view cleanup worker stopped")
}

func (w *ViewCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *ViewCleanup) cleanup() {
	if count := w.views.EvictIdle(w.idleTTL); count > 0 {
		w.log.Info("closed idle dashboard views", zap.Int("count", count))
	}
}
