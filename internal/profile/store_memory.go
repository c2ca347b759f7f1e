package profile

import (
	"context"
	"strings"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and single-process runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.ProfileID]Profile
	byEmail map[string]id.ProfileID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.ProfileID]Profile),
		byEmail: make(map[string]id.ProfileID),
	}
}

func emailKey(email string) string {
	return strings.ToLower(email)
}

func (s *InMemoryStore) CreateIfEmailAvailable(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(p.Email)
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrConflict
	}
	if _, ok := s.byID[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[p.ID] = p
	s.byEmail[key] = p.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, profileID id.ProfileID) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[profileID]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profileID, ok := s.byEmail[emailKey(email)]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	return s.byID[profileID], nil
}

func (s *InMemoryStore) Update(_ context.Context, p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[p.ID]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	p.Email = current.Email
	p.CreatedAt = current.CreatedAt
	s.byID[p.ID] = p
	return p, nil
}
