package timeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service manages timeline entries.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a timeline Service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("timeline store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Add creates an unverified entry on the owner's timeline.
func (s *Service) Add(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ProfileID.IsNil() {
		return Entry{}, dErrors.New(dErrors.CodeInvalidInput, "timeline entry owner is required")
	}
	if _, err := ParseKind(string(entry.Kind)); err != nil {
		return Entry{}, err
	}
	if strings.TrimSpace(entry.Title) == "" {
		return Entry{}, dErrors.New(dErrors.CodeInvalidInput, "timeline entry title is required")
	}
	if entry.StartDate.IsZero() {
		return Entry{}, dErrors.New(dErrors.CodeInvalidInput, "timeline entry start date is required")
	}
	if entry.EndDate != nil && entry.EndDate.Before(entry.StartDate) {
		return Entry{}, dErrors.New(dErrors.CodeInvalidInput, "timeline entry cannot end before it starts")
	}

	now := requestcontext.Now(ctx)
	entry.ID = id.NewTimelineEntryID()
	entry.Verified = false
	entry.TrustScore = nil
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := s.store.Insert(ctx, entry); err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "add timeline entry")
	}
	return entry, nil
}

// Get returns the entry by id.
func (s *Service) Get(ctx context.Context, entryID id.TimelineEntryID) (Entry, error) {
	entry, err := s.store.FindByID(ctx, entryID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Entry{}, dErrors.New(dErrors.CodeNotFound, "timeline entry not found")
	}
	if err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "get timeline entry")
	}
	return entry, nil
}

// ListByProfile returns the profile's entries, newest start date first.
func (s *Service) ListByProfile(ctx context.Context, profileID id.ProfileID) ([]Entry, error) {
	entries, err := s.store.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list timeline entries")
	}
	return entries, nil
}

// ApplyVerification marks an entry as verified and records the trust score a
// completed verification produced. Called by the verification lifecycle only.
func (s *Service) ApplyVerification(ctx context.Context, entryID id.TimelineEntryID, verified bool, trustScore *float64) error {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return err
	}

	entry.Verified = verified
	if trustScore != nil {
		entry.TrustScore = trustScore
	}
	entry.UpdatedAt = requestcontext.Now(ctx)

	if _, err := s.store.Update(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "timeline entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "apply verification to timeline entry")
	}

	s.logger.InfoContext(ctx, "timeline entry verification applied",
		"entry_id", entryID.String(),
		"verified", verified)
	return nil
}
