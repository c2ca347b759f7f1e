// Package relay exports recorded activities to Kafka so downstream consumers
// (compliance archive, analytics) can tail the verification audit stream. The
// store written by the Recorder remains the source of truth; the relay is a
// best-effort mirror consumed from a channel inbox.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
)

// payload is the JSON structure produced to Kafka. Keyed by verification ID so
// entries for one verification land on one partition in order.
type payload struct {
	ID             string            `json:"id"`
	VerificationID string            `json:"verification_id"`
	Type           string            `json:"type"`
	ActorID        string            `json:"actor_id"`
	ActorType      string            `json:"actor_type"`
	Timestamp      string            `json:"timestamp"`
	Message        string            `json:"message,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Relay consumes activities from a channel and produces them to a Kafka topic.
type Relay struct {
	client *kgo.Client
	topic  string
	inbox  <-chan activity.Activity
	logger *slog.Logger
}

// New connects to the given brokers. Call Close when done.
func New(brokers []string, topic string, inbox <-chan activity.Activity, logger *slog.Logger) (*Relay, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Relay{client: client, topic: topic, inbox: inbox, logger: logger}, nil
}

// Run consumes the inbox until ctx is cancelled. Produce failures are logged,
// not fatal: the audit store already holds the entry.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-r.inbox:
			r.produce(ctx, entry)
		}
	}
}

func (r *Relay) produce(ctx context.Context, entry activity.Activity) {
	body, err := json.Marshal(payload{
		ID:             entry.ID.String(),
		VerificationID: entry.VerificationID.String(),
		Type:           string(entry.Type),
		ActorID:        entry.ActorID.String(),
		ActorType:      string(entry.ActorType),
		Timestamp:      entry.Timestamp.UTC().Format(time.RFC3339Nano),
		Message:        entry.Details.Message,
		Metadata:       entry.Details.Metadata,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "marshal activity for export", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: r.topic,
		Key:   []byte(entry.VerificationID.String()),
		Value: body,
	}
	r.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			r.logger.ErrorContext(ctx, "produce activity to kafka",
				"activity_id", entry.ID.String(),
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the Kafka client.
func (r *Relay) Close() {
	_ = r.client.Flush(context.Background())
	r.client.Close()
}
