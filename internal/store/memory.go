package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store used in tests and in single-node development
// when no redis is configured. Bundles do not survive a restart.
type Memory struct {
	mu      sync.Mutex
	bundle  Bundle
	present bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Put(ctx context.Context, b Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundle = b
	m.present = true
	return nil
}

func (m *Memory) Get(ctx context.Context) (Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return Bundle{}, ErrNotFound
	}
	return m.bundle, nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundle = Bundle{}
	m.present = false
	return nil
}

var _ Store = (*Memory)(nil)
