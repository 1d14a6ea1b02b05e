package session

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// DefaultSlot is the implicit save slot.
const DefaultSlot = "$default"

// Store is a durable string key-value store. Concurrent writes to one key
// are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Key builds the storage key for a story's save slot.
func Key(storyID, slot string) string {
	return slotPrefix(storyID) + slot
}

func slotPrefix(storyID string) string {
	return "save_" + storyID + "_"
}

// Slots lists the save slots stored for a story, sorted.
func Slots(ctx context.Context, st Store, storyID string) ([]string, error) {
	prefix := slotPrefix(storyID)
	keys, err := st.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	slots := make([]string, 0, len(keys))
	for _, k := range keys {
		slots = append(slots, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(slots)
	return slots, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys implements Store.
func (m *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
