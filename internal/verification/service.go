package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	"github.com/girishmungarach/doneby-platform-sub001/internal/notification"
	"github.com/girishmungarach/doneby-platform-sub001/internal/verification/metrics"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

var tracer = otel.Tracer("verification")

// ActivityLog appends to and reads the verification audit trail.
type ActivityLog interface {
	Record(ctx context.Context, entry activity.Activity) (activity.Activity, error)
	ListByVerification(ctx context.Context, verificationID id.VerificationID) ([]activity.Activity, error)
}

// Notifier dispatches notifications to affected users.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) (notification.Notification, error)
}

// TimelineMarker propagates a completed verification onto the timeline entry
// it reviewed.
type TimelineMarker interface {
	ApplyVerification(ctx context.Context, entryID id.TimelineEntryID, verified bool, trustScore *float64) error
}

// Service orchestrates the verification lifecycle.
//
// Side-effect ordering is fixed and observable: the record commit happens
// first, then the activity append, then notification dispatch. There is no
// cross-step atomicity; on a failure after the commit the caller sees the
// committed record alongside the returned error, with activities and
// notifications possibly lagging.
type Service struct {
	store      Store
	activities ActivityLog
	notifier   Notifier
	timeline   TimelineMarker
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier attaches the notification dispatcher.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithTimeline attaches the timeline propagation hook.
func WithTimeline(t TimelineMarker) Option {
	return func(s *Service) {
		s.timeline = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a verification Service.
func New(store Store, activities ActivityLog, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("verification store is required")
	}
	if activities == nil {
		return nil, errors.New("activity log is required")
	}
	s := &Service{
		store:      store,
		activities: activities,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create opens a new verification request in status pending and records the
// opening activity.
func (s *Service) Create(ctx context.Context, requesterID id.ProfileID, timelineEntryID id.TimelineEntryID, metadata map[string]string) (Record, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.Create")
	defer span.End()

	if requesterID.IsNil() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "requester is required")
	}
	if timelineEntryID.IsNil() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "timeline entry is required")
	}

	now := requestcontext.Now(ctx)
	record := Record{
		ID:              id.NewVerificationID(),
		RequesterID:     requesterID,
		TimelineEntryID: timelineEntryID,
		Status:          StatusPending,
		Evidence:        []Evidence{},
		Metadata:        metadata,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if record.Metadata == nil {
		record.Metadata = map[string]string{}
	}

	if err := s.store.Insert(ctx, record); err != nil {
		span.RecordError(err)
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "create verification")
	}

	_, err := s.activities.Record(ctx, activity.Activity{
		VerificationID: record.ID,
		Type:           activity.TypeStatusChange,
		ActorID:        requesterID,
		ActorType:      activity.ActorRequester,
		Details: activity.Details{
			Message: "verification requested",
			Metadata: map[string]string{
				activity.MetadataKeyPreviousStatus: "",
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		return record, err
	}
	return record, nil
}

// Get returns the record by id.
func (s *Service) Get(ctx context.Context, verificationID id.VerificationID) (Record, error) {
	record, err := s.store.FindByID(ctx, verificationID)
	if err != nil {
		return Record{}, translateStoreErr(err)
	}
	return record, nil
}

// AssignVerifier attaches a verifier to a pending or in-progress record. Any
// evidence attached before assignment has its notification queued; assignment
// flushes it to the new verifier.
func (s *Service) AssignVerifier(ctx context.Context, verificationID id.VerificationID, verifierID id.ProfileID, expectedVersion int64) (Record, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.AssignVerifier")
	defer span.End()

	if verifierID.IsNil() {
		return Record{}, dErrors.New(dErrors.CodeInvalidInput, "verifier is required")
	}

	record, err := s.Get(ctx, verificationID)
	if err != nil {
		return Record{}, err
	}
	if record.Status.IsTerminal() {
		return Record{}, dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot assign a verifier to a %s verification", record.Status)
	}
	if record.VerifierID == verifierID {
		return record, nil
	}

	record.VerifierID = verifierID
	record.UpdatedAt = requestcontext.Now(ctx)

	record, err = s.store.Update(ctx, record, expectedVersion)
	if err != nil {
		span.RecordError(err)
		return Record{}, translateStoreErr(err)
	}

	_, err = s.activities.Record(ctx, activity.Activity{
		VerificationID: record.ID,
		Type:           activity.TypeCommentAdded,
		ActorID:        verifierID,
		ActorType:      activity.ActorVerifier,
		Details: activity.Details{
			Message:  "verifier assigned",
			Metadata: map[string]string{"verifier_id": verifierID.String()},
		},
	})
	if err != nil {
		span.RecordError(err)
		return record, err
	}

	if len(record.Evidence) > 0 {
		if err := s.dispatch(ctx, record, []id.ProfileID{verifierID}, notification.TypeEvidence,
			"Evidence awaiting review",
			fmt.Sprintf("%d evidence item(s) are attached to a verification assigned to you", len(record.Evidence)),
			nil,
		); err != nil {
			span.RecordError(err)
			return record, err
		}
	}
	return record, nil
}

// Transition validates and applies a status change, appending the audit
// activity and notifying the non-acting party. Re-submitting the current
// status fails with a no-op error so duplicate submissions are detectable.
func (s *Service) Transition(ctx context.Context, verificationID id.VerificationID, newStatus Status, actor Actor, details TransitionDetails, expectedVersion int64) (Record, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.Transition")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.ObserveTransitionLatency(time.Since(start))
	}()

	if _, err := ParseStatus(string(newStatus)); err != nil {
		s.metrics.IncrementTransition(string(newStatus), "invalid")
		return Record{}, err
	}

	record, err := s.Get(ctx, verificationID)
	if err != nil {
		s.metrics.IncrementTransition(string(newStatus), "error")
		return Record{}, err
	}
	previous := record.Status

	if newStatus == previous {
		s.metrics.IncrementTransition(string(newStatus), "noop")
		return Record{}, dErrors.Newf(dErrors.CodeNoOpTransition,
			"verification is already %s", previous)
	}
	if !CanTransition(previous, newStatus) {
		s.metrics.IncrementTransition(string(newStatus), "invalid")
		return Record{}, dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition verification from %s to %s", previous, newStatus)
	}
	if newStatus == StatusRejected {
		if err := validateRejectionReason(details.Reason); err != nil {
			s.metrics.IncrementTransition(string(newStatus), "invalid")
			return Record{}, err
		}
	}

	record.Status = newStatus
	record.UpdatedAt = requestcontext.Now(ctx)
	applyTransitionMetadata(&record, previous, newStatus, details)

	record, err = s.store.Update(ctx, record, expectedVersion)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, sentinel.ErrStaleVersion) {
			s.metrics.IncrementTransition(string(newStatus), "conflict")
		} else {
			s.metrics.IncrementTransition(string(newStatus), "error")
		}
		return Record{}, translateStoreErr(err)
	}
	s.metrics.IncrementTransition(string(newStatus), "ok")

	if _, err := s.activities.Record(ctx, statusChangeActivity(record, previous, actor, details)); err != nil {
		span.RecordError(err)
		return record, err
	}

	title, message := transitionNotice(previous, newStatus, details)
	noticeType := notification.TypeStatusUpdate
	if newStatus == StatusCompleted {
		noticeType = notification.TypeVerificationComplete
	}
	if err := s.dispatch(ctx, record, s.recipients(record, actor), noticeType, title, message, map[string]string{
		"previous_status": string(previous),
		"new_status":      string(newStatus),
	}); err != nil {
		span.RecordError(err)
		return record, err
	}

	if newStatus == StatusCompleted {
		if err := s.finalize(ctx, record, actor, details); err != nil {
			span.RecordError(err)
			return record, err
		}
	}
	return record, nil
}

// AttachEvidence appends a validated evidence item. The evidence commit is
// observable before the activity, and the activity before the notification.
func (s *Service) AttachEvidence(ctx context.Context, verificationID id.VerificationID, e Evidence, actor Actor, expectedVersion int64) (Record, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.AttachEvidence")
	defer span.End()

	if err := validateEvidence(e); err != nil {
		return Record{}, err
	}

	record, err := s.Get(ctx, verificationID)
	if err != nil {
		return Record{}, err
	}

	record.Evidence = append(record.Evidence, e)
	record.UpdatedAt = requestcontext.Now(ctx)

	record, err = s.store.Update(ctx, record, expectedVersion)
	if err != nil {
		span.RecordError(err)
		return Record{}, translateStoreErr(err)
	}
	s.metrics.IncrementEvidenceAttached(string(e.Type))

	_, err = s.activities.Record(ctx, activity.Activity{
		VerificationID: record.ID,
		Type:           activity.TypeEvidenceUploaded,
		ActorID:        actor.ID,
		ActorType:      actor.Type,
		Details: activity.Details{
			Message: "evidence uploaded",
			Metadata: map[string]string{
				"evidence_type": string(e.Type),
				"evidence_url":  e.URL,
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		return record, err
	}

	// Without a verifier there is no recipient yet; AssignVerifier flushes
	// the pending evidence notice.
	if record.HasVerifier() {
		if err := s.dispatch(ctx, record, []id.ProfileID{record.VerifierID}, notification.TypeEvidence,
			"New evidence attached",
			fmt.Sprintf("New %s evidence was attached to a verification assigned to you", e.Type),
			map[string]string{"evidence_type": string(e.Type)},
		); err != nil {
			span.RecordError(err)
			return record, err
		}
	}
	return record, nil
}

// GetActivities returns the record's full history, oldest first.
func (s *Service) GetActivities(ctx context.Context, verificationID id.VerificationID) ([]activity.Activity, error) {
	if _, err := s.Get(ctx, verificationID); err != nil {
		return nil, err
	}
	return s.activities.ListByVerification(ctx, verificationID)
}

// ListByRequester returns the requester's verifications, oldest first.
func (s *Service) ListByRequester(ctx context.Context, requesterID id.ProfileID) ([]Record, error) {
	records, err := s.store.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list verifications")
	}
	return records, nil
}

// ListByVerifier returns the verifier's assigned verifications, oldest first.
func (s *Service) ListByVerifier(ctx context.Context, verifierID id.ProfileID) ([]Record, error) {
	records, err := s.store.ListByVerifier(ctx, verifierID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list verifications")
	}
	return records, nil
}

// finalize runs the completion side effects: the completion activity, the
// timeline propagation and, when a trust score was supplied, the trust score
// trail.
func (s *Service) finalize(ctx context.Context, record Record, actor Actor, details TransitionDetails) error {
	_, err := s.activities.Record(ctx, activity.Activity{
		VerificationID: record.ID,
		Type:           activity.TypeVerificationCompleted,
		ActorID:        actor.ID,
		ActorType:      actor.Type,
		Details: activity.Details{
			Message:  "verification completed",
			Metadata: advisoryMetadata(details),
		},
	})
	if err != nil {
		return err
	}

	if s.timeline != nil {
		if err := s.timeline.ApplyVerification(ctx, record.TimelineEntryID, true, details.TrustScore); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "propagate verification to timeline")
		}
	}

	if details.TrustScore == nil {
		return nil
	}

	score := strconv.FormatFloat(*details.TrustScore, 'f', -1, 64)
	_, err = s.activities.Record(ctx, activity.Activity{
		VerificationID: record.ID,
		Type:           activity.TypeTrustScoreUpdated,
		ActorID:        actor.ID,
		ActorType:      actor.Type,
		Details: activity.Details{
			Message:  "trust score updated",
			Metadata: map[string]string{"trust_score": score},
		},
	})
	if err != nil {
		return err
	}

	return s.dispatch(ctx, record, []id.ProfileID{record.RequesterID}, notification.TypeTrustScore,
		"Trust score updated",
		fmt.Sprintf("Your timeline entry received a trust score of %s", score),
		map[string]string{"trust_score": score})
}

// recipients picks who gets notified about a transition: the non-acting
// party, or both parties for system-initiated transitions.
func (s *Service) recipients(record Record, actor Actor) []id.ProfileID {
	switch actor.Type {
	case activity.ActorVerifier:
		return []id.ProfileID{record.RequesterID}
	case activity.ActorRequester:
		if record.HasVerifier() {
			return []id.ProfileID{record.VerifierID}
		}
		return nil
	default:
		out := []id.ProfileID{record.RequesterID}
		if record.HasVerifier() {
			out = append(out, record.VerifierID)
		}
		return out
	}
}

func (s *Service) dispatch(ctx context.Context, record Record, recipients []id.ProfileID, kind notification.Type, title, message string, metadata map[string]string) error {
	if s.notifier == nil {
		return nil
	}
	for _, recipient := range recipients {
		_, err := s.notifier.Notify(ctx, notification.Notification{
			UserID:         recipient,
			VerificationID: record.ID,
			Type:           kind,
			Title:          title,
			Message:        message,
			Metadata:       metadata,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func statusChangeActivity(record Record, previous Status, actor Actor, details TransitionDetails) activity.Activity {
	metadata := advisoryMetadata(details)
	metadata[activity.MetadataKeyPreviousStatus] = string(previous)
	if record.Status == StatusRejected {
		metadata["reason"] = details.Reason
	}

	message := details.Notes
	if message == "" {
		message = fmt.Sprintf("status changed from %s to %s", previous, record.Status)
	}
	return activity.Activity{
		VerificationID: record.ID,
		Type:           activity.TypeStatusChange,
		ActorID:        actor.ID,
		ActorType:      actor.Type,
		Details: activity.Details{
			Message:  message,
			Metadata: metadata,
		},
	}
}

func advisoryMetadata(details TransitionDetails) map[string]string {
	metadata := map[string]string{}
	if details.EvidenceQuality != nil {
		metadata["evidence_quality"] = strconv.FormatFloat(*details.EvidenceQuality, 'f', -1, 64)
	}
	if details.TrustScore != nil {
		metadata["trust_score"] = strconv.FormatFloat(*details.TrustScore, 'f', -1, 64)
	}
	return metadata
}

func applyTransitionMetadata(record *Record, previous, next Status, details TransitionDetails) {
	if record.Metadata == nil {
		record.Metadata = map[string]string{}
	}
	switch {
	case next == StatusRejected:
		record.Metadata["rejection_reason"] = details.Reason
	case previous == StatusRejected && next == StatusPending:
		record.Metadata[MetadataKeyAppealStatus] = "submitted"
		if details.Reason != "" {
			record.Metadata[MetadataKeyAppealReason] = details.Reason
		}
	}
	if details.Notes != "" {
		record.Metadata[MetadataKeyNotes] = details.Notes
	}
}

func transitionNotice(previous, next Status, details TransitionDetails) (title, message string) {
	switch next {
	case StatusRejected:
		return "Verification rejected", fmt.Sprintf("Verification was rejected: %s", details.Reason)
	case StatusCompleted:
		return "Verification complete", "Verification finished and results were recorded"
	case StatusPending:
		if previous == StatusRejected {
			return "Verification appealed", "A rejected verification was re-opened for review"
		}
	}
	return "Verification updated", fmt.Sprintf("Verification moved from %s to %s", previous, next)
}

func translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "verification not found")
	case errors.Is(err, sentinel.ErrStaleVersion):
		return dErrors.New(dErrors.CodeConflict, "verification was modified concurrently, re-read and retry")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification store")
	}
}
