package verification

import (
	"context"
	"sort"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and single-process runs. The
// mutex serializes Update so the version check and write are atomic, which is
// what gives concurrent writers the one-winner guarantee.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.VerificationID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.VerificationID]Record)}
}

func (s *InMemoryStore) Insert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; ok {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = cloneRecord(record)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, verificationID id.VerificationID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[verificationID]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) Update(_ context.Context, record Record, expectedVersion int64) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[record.ID]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	if current.Version != expectedVersion {
		return Record{}, sentinel.ErrStaleVersion
	}
	record.Version = expectedVersion + 1
	record.CreatedAt = current.CreatedAt
	s.records[record.ID] = cloneRecord(record)
	return cloneRecord(record), nil
}

func (s *InMemoryStore) ListByRequester(_ context.Context, requesterID id.ProfileID) ([]Record, error) {
	return s.list(func(r Record) bool { return r.RequesterID == requesterID }), nil
}

func (s *InMemoryStore) ListByVerifier(_ context.Context, verifierID id.ProfileID) ([]Record, error) {
	return s.list(func(r Record) bool { return r.VerifierID == verifierID }), nil
}

func (s *InMemoryStore) list(match func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, record := range s.records {
		if match(record) {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func cloneRecord(r Record) Record {
	out := r
	if r.Evidence != nil {
		out.Evidence = make([]Evidence, len(r.Evidence))
		for i, e := range r.Evidence {
			out.Evidence[i] = e
			if e.Metadata != nil {
				out.Evidence[i].Metadata = make(map[string]string, len(e.Metadata))
				for k, v := range e.Metadata {
					out.Evidence[i].Metadata[k] = v
				}
			}
		}
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
