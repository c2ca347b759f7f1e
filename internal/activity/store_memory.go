package activity

import (
	"context"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// InMemoryStore keeps audit entries per verification, ordered by append time.
// It favors clarity over performance and backs unit tests and development mode.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.VerificationID][]Activity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.VerificationID][]Activity)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.VerificationID] = append(s.entries[entry.VerificationID], cloneActivity(entry))
	return nil
}

// ListByVerification returns a snapshot copy, oldest first. Appends after the
// call return never show up in the returned slice.
func (s *InMemoryStore) ListByVerification(_ context.Context, verificationID id.VerificationID) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[verificationID]
	out := make([]Activity, 0, len(stored))
	for _, entry := range stored {
		out = append(out, cloneActivity(entry))
	}
	return out, nil
}

func cloneActivity(entry Activity) Activity {
	if entry.Details.Metadata != nil {
		meta := make(map[string]string, len(entry.Details.Metadata))
		for k, v := range entry.Details.Metadata {
			meta[k] = v
		}
		entry.Details.Metadata = meta
	}
	return entry
}
