package job

import (
	"context"
	"sort"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and single-process runs.
type InMemoryStore struct {
	mu   sync.RWMutex
	jobs map[id.JobID]Job
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{jobs: make(map[id.JobID]Job)}
}

func (s *InMemoryStore) Insert(_ context.Context, j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[j.ID]; ok {
		return sentinel.ErrConflict
	}
	s.jobs[j.ID] = j
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, jobID id.JobID) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return Job{}, sentinel.ErrNotFound
	}
	return j, nil
}

func (s *InMemoryStore) Update(_ context.Context, j Job) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[j.ID]
	if !ok {
		return Job{}, sentinel.ErrNotFound
	}
	j.CreatedAt = current.CreatedAt
	s.jobs[j.ID] = j
	return j, nil
}

func (s *InMemoryStore) ListOpen(_ context.Context) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Job
	for _, j := range s.jobs {
		if j.Status == StatusOpen {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
