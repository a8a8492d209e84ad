package audit

import (
	"context"
	"sync"
)

type MemoryStoreOptions struct {
	// Capacity 最多保留的记录数，超出后丢弃最旧的
	Capacity int `cfg:"capacity" def:"1000" validate:"gte=0"`
}

// MemoryStore 环形缓冲，进程退出后丢失
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

func NewMemoryStoreWithOptions(options *MemoryStoreOptions) *MemoryStore {
	capacity := 1000
	if options != nil && options.Capacity > 0 {
		capacity = options.Capacity
	}
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) Append(ctx context.Context, entry *Entry) error {
	if err := checkEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	if len(s.entries) > s.capacity {
		s.entries = append([]Entry(nil), s.entries[len(s.entries)-s.capacity:]...)
	}
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, n int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, min(n, len(s.entries)))
	for i := len(s.entries) - 1; i >= 0 && len(result) < n; i-- {
		entry := s.entries[i]
		result = append(result, &entry)
	}
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
