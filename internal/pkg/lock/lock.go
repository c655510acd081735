// Package lock provides per-key mutual exclusion for inventory rows.
// The unit of exclusion is the (product, warehouse) key; every
// read-then-write of quantity/reserved_quantity runs under it.
package lock

import (
	"context"
	"sync"
	"time"
)

// Locker is satisfied by the redis client (multi-instance deployments)
// and by KeyMutex (single node, tests). Acquire is non-blocking: callers
// retry with backoff.
type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// KeyMutex is an in-process Locker. TTLs are ignored; a lock is held
// until released by the owning token.
type KeyMutex struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{owners: make(map[string]string)}
}

func (m *KeyMutex) Acquire(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.owners[key]; held {
		return false, nil
	}
	m.owners[key] = token
	return true, nil
}

func (m *KeyMutex) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owners[key] == token {
		delete(m.owners, key)
	}
	return nil
}
