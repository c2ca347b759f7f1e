package notification

import (
	"context"
	"sync"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

const feedBuffer = 16

// InMemoryFeed delivers notifications over in-process channels. Used in tests
// and when Redis is not configured.
type InMemoryFeed struct {
	mu   sync.Mutex
	subs map[id.ProfileID]map[*Subscription]chan Notification
}

func NewInMemoryFeed() *InMemoryFeed {
	return &InMemoryFeed{subs: make(map[id.ProfileID]map[*Subscription]chan Notification)}
}

func (f *InMemoryFeed) Publish(_ context.Context, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs[n.UserID] {
		select {
		case ch <- cloneNotification(n):
		default:
			// Slow subscriber; the store still has the notification.
		}
	}
	return nil
}

func (f *InMemoryFeed) Subscribe(_ context.Context, userID id.ProfileID) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Notification, feedBuffer)
	sub := &Subscription{C: ch}
	sub.close = func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[userID][sub]; !ok {
			return nil
		}
		delete(f.subs[userID], sub)
		if len(f.subs[userID]) == 0 {
			delete(f.subs, userID)
		}
		close(ch)
		return nil
	}

	if f.subs[userID] == nil {
		f.subs[userID] = make(map[*Subscription]chan Notification)
	}
	f.subs[userID][sub] = ch
	return sub, nil
}
