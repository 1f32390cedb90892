// Package store holds the published market snapshot.
//
// The store is the only writer of market data. Every mutation produces a
// new immutable domain.Snapshot; readers receive the current snapshot and
// never observe a partially applied update. Subscribers are notified of
// each new snapshot on a buffered channel; a slow subscriber misses
// intermediate snapshots rather than blocking the writer.
package store

import (
	"sync"
	"time"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

const subscriberBuffer = 8

// MarketStore is a single-writer store of market snapshots
type MarketStore struct {
	mu      sync.RWMutex
	current domain.Snapshot
	subs    map[int]chan domain.Snapshot
	nextSub int
	now     func() time.Time
}

// New creates a store in the loading state with no data
func New() *MarketStore {
	return &MarketStore{
		current: domain.Snapshot{
			Weekly:  []domain.WeeklyRecord{},
			Monthly: []domain.MonthlyRecord{},
			Loading: true,
			Phase:   domain.PhaseIdle,
		},
		subs: make(map[int]chan domain.Snapshot),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns the current snapshot
func (s *MarketStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Begin marks the start of a new cycle: loading is set and any previous
// error is cleared. Existing data stays visible.
func (s *MarketStore) Begin() domain.Snapshot {
	return s.update(func(next *domain.Snapshot) {
		next.Loading = true
		next.Error = ""
		next.Phase = domain.PhasePriority
	})
}

// ReplacePriority replaces both collections with the priority results.
// Loading is cleared only when at least one record was supplied.
func (s *MarketStore) ReplacePriority(weekly []domain.WeeklyRecord, monthly []domain.MonthlyRecord) domain.Snapshot {
	return s.update(func(next *domain.Snapshot) {
		next.Weekly = append([]domain.WeeklyRecord{}, weekly...)
		next.Monthly = append([]domain.MonthlyRecord{}, monthly...)
		if len(weekly) > 0 || len(monthly) > 0 {
			next.Loading = false
		}
		next.Phase = domain.PhaseBackground
	})
}

// AppendBackground appends background results and clears loading
func (s *MarketStore) AppendBackground(weekly []domain.WeeklyRecord, monthly []domain.MonthlyRecord) domain.Snapshot {
	return s.update(func(next *domain.Snapshot) {
		next.Weekly = concat(next.Weekly, weekly)
		next.Monthly = concat(next.Monthly, monthly)
		next.Loading = false
		next.Phase = domain.PhaseComplete
	})
}

// Fail records a pipeline level failure. Loading stops and already
// published data is kept.
func (s *MarketStore) Fail(message string) domain.Snapshot {
	return s.update(func(next *domain.Snapshot) {
		next.Loading = false
		next.Error = message
		next.Phase = domain.PhaseFailed
	})
}

// Subscribe registers for snapshot notifications. The returned function
// unsubscribes and closes the channel.
func (s *MarketStore) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Snapshot, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// update applies fn to a copy of the current snapshot and publishes it
func (s *MarketStore) update(fn func(next *domain.Snapshot)) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	fn(&next)
	next.Version = s.current.Version + 1
	next.UpdatedAt = s.now()
	s.current = next

	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
		}
	}
	return next
}

// concat always allocates so earlier snapshots never share a backing array
// with later ones.
func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
