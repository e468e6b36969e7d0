package prefs

import (
	"context"
	"net/http"
	"sync"
)

// Memory is an in-process Store. It backs tests and single-user tools.
type Memory struct {
	mu   sync.RWMutex
	vals map[string]string
}

// NewMemory returns a Memory seeded with initial (which may be nil).
func NewMemory(initial map[string]string) *Memory {
	m := &Memory{vals: make(map[string]string, len(initial))}
	for k, v := range initial {
		m.vals[k] = v
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vals, key)
	return nil
}

// ForRequest makes a Memory usable as a Resolver that serves one browser.
func (m *Memory) ForRequest(http.ResponseWriter, *http.Request) Store {
	return m
}
