package notification

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Feed is the live delivery channel for notifications. Delivery is
// at-least-once and best-effort; the store is the source of truth, so feed
// consumers should dedupe by notification ID.
type Feed interface {
	// Publish pushes a notification to any live subscribers of its recipient.
	Publish(ctx context.Context, n Notification) error
	// Subscribe opens a live stream for one recipient. The caller must Close
	// the subscription when done.
	Subscribe(ctx context.Context, userID id.ProfileID) (*Subscription, error)
}

// Subscription is one open feed stream. C is closed when the subscription
// ends, whether by Close or by the underlying transport going away.
type Subscription struct {
	C     <-chan Notification
	close func() error
}

func (s *Subscription) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
