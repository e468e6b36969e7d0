// Package timeouts provides centralized timeout values for outbound calls.
//
// Handlers and services wrap their contexts with these values so every
// call to MongoDB or the remote data service is bounded the same way.
//
//   - Ping: health checks and connectivity verification
//   - Short: single preference reads and writes
//   - Fetch: one disease record listing from the remote data service
//   - Logout: the best-effort remote logout call
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultFetch  = 10 * time.Second
	DefaultLogout = 5 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	fetch  = DefaultFetch
	logout = DefaultLogout
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single preference store operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Fetch returns the timeout for one remote record listing.
func Fetch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return fetch
}

// Logout returns the timeout for the remote logout call.
func Logout() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return logout
}

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Fetch  time.Duration
	Logout time.Duration
}

// Configure sets custom timeout values. Call during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Fetch > 0 {
		fetch = cfg.Fetch
	}
	if cfg.Logout > 0 {
		logout = cfg.Logout
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	fetch = DefaultFetch
	logout = DefaultLogout
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Fetch: fetch, Logout: logout}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Fetch(), h.Log, "fetch dengue records")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
