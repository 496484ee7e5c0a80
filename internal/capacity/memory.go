package capacity

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process Store, used in tests and when
// no database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[time.Time]int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[time.Time]int)}
}

func (s *MemoryStore) Increment(_ context.Context, at time.Time, ceiling int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := at.UTC()
	if s.counters[key] >= ceiling {
		return false, nil
	}
	s.counters[key]++
	return true, nil
}

func (s *MemoryStore) Count(_ context.Context, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[at.UTC()], nil
}

func (s *MemoryStore) Full(_ context.Context, from, to time.Time, ceiling int) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var full []time.Time
	for at, count := range s.counters {
		if count >= ceiling && !at.Before(from) && !at.After(to) {
			full = append(full, at)
		}
	}
	sort.Slice(full, func(i, j int) bool { return full[i].Before(full[j]) })
	return full, nil
}
