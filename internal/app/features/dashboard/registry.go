package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry tracks the open dashboard views by view ID.
type Registry struct {
	fetcher Fetcher
	log     *zap.Logger

	mu    sync.Mutex
	views map[string]*entry
}

type entry struct {
	c        *Controller
	lastSeen time.Time
}

// NewRegistry creates an empty registry whose views fetch through f.
func NewRegistry(f Fetcher, logger *zap.Logger) *Registry {
	return &Registry{
		fetcher: f,
		log:     logger,
		views:   make(map[string]*entry),
	}
}

// Create opens a new view under a fresh random ID.
func (r *Registry) Create() *Controller {
	id := uuid.NewString()
	c := NewController(id, r.fetcher, r.log)

	r.mu.Lock()
	r.views[id] = &entry{c: c, lastSeen: time.Now()}
	r.mu.Unlock()

	return c
}

// Get returns the view and marks it as recently used.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	e.lastSeen = time.Now()
	return e.c, nil
}

// Remove closes and forgets the view. Unknown IDs are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if ok {
		e.c.Close()
	}
}

// Len returns the number of open views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// EvictIdle closes views not used within ttl and returns how many were closed.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	return r.EvictIdleBefore(time.Now().Add(-ttl))
}

// EvictIdleBefore closes views last used before cutoff.
func (r *Registry) EvictIdleBefore(cutoff time.Time) int {
	var idle []*Controller

	r.mu.Lock()
	for id, e := range r.views {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.c)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	return len(idle)
}

// CloseAll closes every view and waits for their fetches to finish.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Controller, 0, len(r.views))
	for _, e := range r.views {
		all = append(all, e.c)
	}
	r.views = make(map[string]*entry)
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	for _, c := range all {
		c.Wait()
	}
}
