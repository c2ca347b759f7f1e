package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/girishmungarach/doneby-platform-sub001/internal/platform/redis"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// RedisFeed publishes notifications on a per-recipient pub/sub channel so
// every process serving that user sees them.
type RedisFeed struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisFeed(client *redis.Client, logger *slog.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger}
}

func feedChannel(userID id.ProfileID) string {
	return "notifications:" + userID.String()
}

type feedPayload struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	VerificationID string            `json:"verification_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	CreatedAt      time.Time         `json:"created_at"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

func (f *RedisFeed) Publish(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(feedPayload{
		ID:             n.ID.String(),
		UserID:         n.UserID.String(),
		VerificationID: n.VerificationID.String(),
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
		Metadata:       n.Metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal feed payload: %w", err)
	}
	if err := f.client.Publish(ctx, feedChannel(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, userID id.ProfileID) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, feedChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe notifications: %w", err)
	}

	ch := make(chan Notification, feedBuffer)
	go f.pump(pubsub, ch)

	return &Subscription{C: ch, close: pubsub.Close}, nil
}

func (f *RedisFeed) pump(pubsub *goredis.PubSub, out chan<- Notification) {
	defer close(out)
	for msg := range pubsub.Channel() {
		n, err := decodeFeedPayload(msg.Payload)
		if err != nil {
			f.logger.Warn("dropping malformed feed payload", "error", err)
			continue
		}
		select {
		case out <- n:
		default:
			f.logger.Warn("feed subscriber too slow, dropping notification",
				"notification_id", n.ID.String())
		}
	}
}

func decodeFeedPayload(raw string) (Notification, error) {
	var p feedPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Notification{}, fmt.Errorf("unmarshal feed payload: %w", err)
	}
	nid, err := id.ParseNotificationID(p.ID)
	if err != nil {
		return Notification{}, err
	}
	userID, err := id.ParseProfileID(p.UserID)
	if err != nil {
		return Notification{}, err
	}
	verID, err := id.ParseVerificationID(p.VerificationID)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		ID:             nid,
		UserID:         userID,
		VerificationID: verID,
		Type:           Type(p.Type),
		Title:          p.Title,
		Message:        p.Message,
		CreatedAt:      p.CreatedAt,
		Metadata:       p.Metadata,
	}, nil
}
