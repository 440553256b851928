// Package counter replaces the original environment-variable visit counter
// with an explicit key-value store behind a small interface. The in-memory
// store preserves the historical non-durable behavior; file and Postgres
// implementations exist for deployments that want the numbers to survive a
// restart.
package counter

import (
	"context"
	"sync"
	"time"
)

// Visits and LastVisit are the two keys the service tracks.
const (
	Visits    = "visits"
	LastVisit = "last_visit"
)

// Store provides atomic counter and timestamp persistence.
type Store interface {
	// Increment atomically bumps the named counter and returns the new value.
	Increment(ctx context.Context, name string) (int64, error)
	// Value reads the named counter; unknown names read as zero.
	Value(ctx context.Context, name string) (int64, error)
	// Touch records a timestamp under the given name.
	Touch(ctx context.Context, name string, t time.Time) error
	// LastTouch reads a recorded timestamp; the zero time means never.
	LastTouch(ctx context.Context, name string) (time.Time, error)
}

// MemoryStore keeps counters in process memory. Values are lost on restart,
// matching the original deployment's semantics.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]int64
	times  map[string]time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]int64),
		times:  make(map[string]time.Time),
	}
}

func (m *MemoryStore) Increment(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name]++
	return m.values[name], nil
}

func (m *MemoryStore) Value(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name], nil
}

func (m *MemoryStore) Touch(ctx context.Context, name string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.times[name] = t
	return nil
}

func (m *MemoryStore) LastTouch(ctx context.Context, name string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.times[name], nil
}
