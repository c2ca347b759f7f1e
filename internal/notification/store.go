package notification

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Store persists notifications. Implementations return sentinel.ErrNotFound
// for unknown IDs; MarkRead reports whether the flag actually changed so the
// dispatcher can keep the operation idempotent.
type Store interface {
	Insert(ctx context.Context, n Notification) error
	FindByID(ctx context.Context, notificationID id.NotificationID) (Notification, error)
	// MarkRead flips read to true. Returns changed=false when it already was.
	MarkRead(ctx context.Context, notificationID id.NotificationID) (changed bool, err error)
	// ListByUser returns notifications newest first, optionally unread only.
	ListByUser(ctx context.Context, userID id.ProfileID, unreadOnly bool) ([]Notification, error)
	// CountUnread is computed store-side; the unread count is derived, never stored.
	CountUnread(ctx context.Context, userID id.ProfileID) (int64, error)
}
