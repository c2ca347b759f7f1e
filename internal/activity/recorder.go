package activity

import (
	"context"
	"errors"
	"log/slog"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Recorder captures audit entries. It is append-only and uses the storage
// layer for persistence so tests can swap sinks easily. An optional export
// channel mirrors recorded entries to the Kafka relay without blocking the
// write path.
type Recorder struct {
	store  Store
	logger *slog.Logger
	export chan<- Activity
}

// Option configures optional Recorder dependencies.
type Option func(*Recorder)

// WithLogger attaches a logger for export-path diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithExport mirrors recorded entries onto ch. Sends never block: when the
// relay falls behind, entries are dropped from the export stream (the store
// remains the source of truth).
func WithExport(ch chan<- Activity) Option {
	return func(r *Recorder) { r.export = ch }
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record persists one audit entry, assigning its ID and timestamp when unset.
// The returned Activity reflects the values actually stored.
func (r *Recorder) Record(ctx context.Context, entry Activity) (Activity, error) {
	if entry.ID == (id.ActivityID{}) {
		entry.ID = id.NewActivityID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}

	if err := r.store.Append(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return Activity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "activity store unavailable")
		}
		return Activity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record activity")
	}

	if r.export != nil {
		select {
		case r.export <- entry:
		default:
			if r.logger != nil {
				r.logger.WarnContext(ctx, "activity export channel full, dropping entry",
					"activity_id", entry.ID.String(),
					"verification_id", entry.VerificationID.String(),
				)
			}
		}
	}
	return entry, nil
}

// ListByVerification returns the full history of a verification, oldest first.
func (r *Recorder) ListByVerification(ctx context.Context, verificationID id.VerificationID) ([]Activity, error) {
	entries, err := r.store.ListByVerification(ctx, verificationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list activities")
	}
	return entries, nil
}
