package notification

import (
	"context"
	"sort"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
)

// InMemoryStore is a map-backed Store for tests and single-process runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.NotificationID]Notification
	byUser map[id.ProfileID][]id.NotificationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.NotificationID]Notification),
		byUser: make(map[id.ProfileID][]id.NotificationID),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[n.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[n.ID] = cloneNotification(n)
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, notificationID id.NotificationID) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[notificationID]
	if !ok {
		return Notification{}, sentinel.ErrNotFound
	}
	return cloneNotification(n), nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, notificationID id.NotificationID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[notificationID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if n.Read {
		return false, nil
	}
	n.Read = true
	s.byID[notificationID] = n
	return true, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.ProfileID, unreadOnly bool) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]Notification, 0, len(ids))
	for _, nid := range ids {
		n := s.byID[nid]
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	// Newest first, matching the SQL store's ORDER BY created_at DESC.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, userID id.ProfileID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, nid := range s.byUser[userID] {
		if !s.byID[nid].Read {
			count++
		}
	}
	return count, nil
}

func cloneNotification(n Notification) Notification {
	out := n
	if n.Metadata != nil {
		out.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
