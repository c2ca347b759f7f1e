package timeline

import (
	"context"
	"sort"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and single-process runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.TimelineEntryID]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.TimelineEntryID]Entry)}
}

func (s *InMemoryStore) Insert(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; ok {
		return sentinel.ErrConflict
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, entryID id.TimelineEntryID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return Entry{}, sentinel.ErrNotFound
	}
	return cloneEntry(entry), nil
}

func (s *InMemoryStore) Update(_ context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[entry.ID]
	if !ok {
		return Entry{}, sentinel.ErrNotFound
	}
	entry.CreatedAt = current.CreatedAt
	s.entries[entry.ID] = cloneEntry(entry)
	return cloneEntry(entry), nil
}

func (s *InMemoryStore) ListByProfile(_ context.Context, profileID id.ProfileID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, entry := range s.entries {
		if entry.ProfileID == profileID {
			out = append(out, cloneEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

func cloneEntry(e Entry) Entry {
	out := e
	if e.EndDate != nil {
		end := *e.EndDate
		out.EndDate = &end
	}
	if e.TrustScore != nil {
		score := *e.TrustScore
		out.TrustScore = &score
	}
	return out
}
