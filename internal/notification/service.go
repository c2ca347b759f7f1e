package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/girishmungarach/doneby-platform-sub001/internal/notification/metrics"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Dispatcher creates notifications, fans them out to the live feed and
// answers read-state queries.
type Dispatcher struct {
	store   Store
	feed    Feed
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFeed attaches a live delivery feed.
func WithFeed(feed Feed) Option {
	return func(d *Dispatcher) {
		d.feed = feed
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a Dispatcher backed by the given store.
func NewDispatcher(store Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify persists a notification and pushes it to the recipient's live feed.
// Feed delivery is best-effort; a feed failure is logged but never surfaced,
// the stored notification remains the source of truth.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) (Notification, error) {
	if n.UserID.IsNil() {
		return Notification{}, dErrors.New(dErrors.CodeInvalidInput, "notification recipient is required")
	}
	if n.ID == (id.NotificationID{}) {
		n.ID = id.NewNotificationID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = requestcontext.Now(ctx)
	}

	if err := d.store.Insert(ctx, n); err != nil {
		return Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "store notification")
	}
	d.metrics.IncrementDispatched(string(n.Type))

	if d.feed != nil {
		if err := d.feed.Publish(ctx, n); err != nil {
			d.metrics.IncrementFeedError()
			d.logger.Warn("live feed publish failed",
				"notification_id", n.ID.String(),
				"user_id", n.UserID.String(),
				"error", err)
		}
	}
	return n, nil
}

// MarkRead marks one of userID's notifications as read. Marking an
// already-read notification is a no-op, not an error. Another user's
// notification is indistinguishable from a missing one.
func (d *Dispatcher) MarkRead(ctx context.Context, userID id.ProfileID, notificationID id.NotificationID) error {
	n, err := d.store.FindByID(ctx, notificationID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "find notification")
	}
	if n.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}

	changed, err := d.store.MarkRead(ctx, notificationID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark notification read")
	}
	if changed {
		d.metrics.IncrementMarkRead("changed")
	} else {
		d.metrics.IncrementMarkRead("noop")
	}
	return nil
}

// List returns the user's notifications, newest first.
func (d *Dispatcher) List(ctx context.Context, userID id.ProfileID, unreadOnly bool) ([]Notification, error) {
	out, err := d.store.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications")
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (d *Dispatcher) UnreadCount(ctx context.Context, userID id.ProfileID) (int64, error) {
	count, err := d.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count unread notifications")
	}
	return count, nil
}

// Subscribe opens a live feed stream for the user. Returns nil when no feed
// is configured.
func (d *Dispatcher) Subscribe(ctx context.Context, userID id.ProfileID) (*Subscription, error) {
	if d.feed == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "live feed not configured")
	}
	sub, err := d.feed.Subscribe(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "subscribe to feed")
	}
	return sub, nil
}
