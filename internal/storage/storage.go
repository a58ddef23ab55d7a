// Package storage defines the durable key-value slots that hold the
// serialized snapshots of each entity collection.
package storage

import (
	"context"
	"errors"
	"sync"
)

// Slot keys, one per independently persisted collection.
const (
	SlotAuth     = "auth-storage"
	SlotJournal  = "journal-storage"
	SlotRewards  = "rewards-storage"
	SlotSettings = "settings-storage"
)

var ErrSlotNotFound = errors.New("slot not found")

// Slots loads and saves opaque snapshot blobs by key.
type Slots interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Memory is a process-local Slots used in tests and for the memory backend.
type Memory struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, ErrSlotNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.slots[key] = v
	return nil
}
