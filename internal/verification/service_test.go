package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	"github.com/girishmungarach/doneby-platform-sub001/internal/notification"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx           context.Context
	store         *InMemoryStore
	activities    *activity.Recorder
	notifications *notification.InMemoryStore
	service       *Service

	requester id.ProfileID
	verifier  id.ProfileID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Now())
	s.store = NewInMemoryStore()
	s.activities = activity.NewRecorder(activity.NewInMemoryStore())
	s.notifications = notification.NewInMemoryStore()

	dispatcher := notification.NewDispatcher(s.notifications)

	var err error
	s.service, err = New(s.store, s.activities, WithNotifier(dispatcher))
	s.Require().NoError(err)

	s.requester = id.NewProfileID()
	s.verifier = id.NewProfileID()
}

// newRecord creates a pending verification with a verifier already assigned.
func (s *ServiceSuite) newRecord() Record {
	record, err := s.service.Create(s.ctx, s.requester, id.NewTimelineEntryID(), nil)
	s.Require().NoError(err)
	record, err = s.service.AssignVerifier(s.ctx, record.ID, s.verifier, record.Version)
	s.Require().NoError(err)
	return record
}

// drive walks a record along a path of legal transitions and returns it.
func (s *ServiceSuite) drive(record Record, path ...Status) Record {
	for _, next := range path {
		actor := Actor{ID: s.verifier, Type: activity.ActorVerifier}
		details := TransitionDetails{}
		if next == StatusRejected {
			details.Reason = "evidence does not substantiate the claim"
		}
		if next == StatusPending {
			actor = Actor{ID: s.requester, Type: activity.ActorRequester}
		}
		var err error
		record, err = s.service.Transition(s.ctx, record.ID, next, actor, details, record.Version)
		s.Require().NoError(err)
	}
	return record
}

func (s *ServiceSuite) statusChanges(verificationID id.VerificationID) []activity.Activity {
	entries, err := s.activities.ListByVerification(s.ctx, verificationID)
	s.Require().NoError(err)
	var out []activity.Activity
	for _, entry := range entries {
		if entry.Type == activity.TypeStatusChange {
			out = append(out, entry)
		}
	}
	return out
}

func (s *ServiceSuite) TestCreate() {
	s.Run("starts pending with an opening activity", func() {
		record, err := s.service.Create(s.ctx, s.requester, id.NewTimelineEntryID(), nil)
		s.NoError(err)
		s.Equal(StatusPending, record.Status)
		s.Equal(int64(1), record.Version)
		s.Empty(record.Evidence)

		changes := s.statusChanges(record.ID)
		s.Require().Len(changes, 1)
		s.Equal("", changes[0].Details.Metadata[activity.MetadataKeyPreviousStatus])
	})

	s.Run("requires a requester", func() {
		_, err := s.service.Create(s.ctx, id.ProfileID{}, id.NewTimelineEntryID(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestLegalTransitions() {
	// One case per legal edge. The path drives the record to the edge's
	// source status first.
	cases := []struct {
		name string
		path []Status
		from Status
		to   Status
	}{
		{"pending to in_progress", nil, StatusPending, StatusInProgress},
		{"pending to rejected", nil, StatusPending, StatusRejected},
		{"pending to cancelled", nil, StatusPending, StatusCancelled},
		{"in_progress to verified", []Status{StatusInProgress}, StatusInProgress, StatusVerified},
		{"in_progress to rejected", []Status{StatusInProgress}, StatusInProgress, StatusRejected},
		{"in_progress to cancelled", []Status{StatusInProgress}, StatusInProgress, StatusCancelled},
		{"verified to completed", []Status{StatusInProgress, StatusVerified}, StatusVerified, StatusCompleted},
		{"verified to cancelled", []Status{StatusInProgress, StatusVerified}, StatusVerified, StatusCancelled},
		{"rejected to pending", []Status{StatusRejected}, StatusRejected, StatusPending},
		{"rejected to cancelled", []Status{StatusRejected}, StatusRejected, StatusCancelled},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			record := s.drive(s.newRecord(), tc.path...)
			s.Require().Equal(tc.from, record.Status)
			before := len(s.statusChanges(record.ID))

			details := TransitionDetails{}
			if tc.to == StatusRejected {
				details.Reason = "claim cannot be confirmed from evidence"
			}
			updated, err := s.service.Transition(s.ctx, record.ID, tc.to,
				Actor{ID: s.verifier, Type: activity.ActorVerifier}, details, record.Version)
			s.Require().NoError(err)
			s.Equal(tc.to, updated.Status)
			s.Equal(record.Version+1, updated.Version)

			changes := s.statusChanges(record.ID)
			s.Require().Len(changes, before+1)
			last := changes[len(changes)-1]
			s.Equal(string(tc.from), last.Details.Metadata[activity.MetadataKeyPreviousStatus])
		})
	}
}

func (s *ServiceSuite) TestIllegalTransitions() {
	cases := []struct {
		name string
		path []Status
		to   Status
	}{
		{"pending to verified", nil, StatusVerified},
		{"pending to completed", nil, StatusCompleted},
		{"in_progress to pending", []Status{StatusInProgress}, StatusPending},
		{"in_progress to completed", []Status{StatusInProgress}, StatusCompleted},
		{"verified to pending", []Status{StatusInProgress, StatusVerified}, StatusPending},
		{"verified to rejected", []Status{StatusInProgress, StatusVerified}, StatusRejected},
		{"rejected to verified", []Status{StatusRejected}, StatusVerified},
		{"completed is terminal", []Status{StatusInProgress, StatusVerified, StatusCompleted}, StatusCancelled},
		{"cancelled is terminal", []Status{StatusCancelled}, StatusPending},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			record := s.drive(s.newRecord(), tc.path...)
			before := len(s.statusChanges(record.ID))

			_, err := s.service.Transition(s.ctx, record.ID, tc.to,
				Actor{ID: s.verifier, Type: activity.ActorVerifier},
				TransitionDetails{Reason: "a reason long enough to pass validation"}, record.Version)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

			// Record untouched, no activity or notification produced.
			current, getErr := s.service.Get(s.ctx, record.ID)
			s.Require().NoError(getErr)
			s.Equal(record.Status, current.Status)
			s.Equal(record.Version, current.Version)
			s.Len(s.statusChanges(record.ID), before)
		})
	}
}

func (s *ServiceSuite) TestNoOpTransition() {
	record := s.newRecord()

	_, err := s.service.Transition(s.ctx, record.ID, record.Status,
		Actor{ID: s.verifier, Type: activity.ActorVerifier}, TransitionDetails{}, record.Version)
	s.True(dErrors.HasCode(err, dErrors.CodeNoOpTransition))
	s.False(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	current, getErr := s.service.Get(s.ctx, record.ID)
	s.Require().NoError(getErr)
	s.Equal(record.Version, current.Version)
}

func (s *ServiceSuite) TestRejectionReason() {
	actor := Actor{ID: s.verifier, Type: activity.ActorVerifier}

	s.Run("reason shorter than ten characters is rejected", func() {
		record := s.newRecord()
		_, err := s.service.Transition(s.ctx, record.ID, StatusRejected, actor,
			TransitionDetails{Reason: "too short"}, record.Version)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("exactly ten characters succeeds", func() {
		record := s.newRecord()
		updated, err := s.service.Transition(s.ctx, record.ID, StatusRejected, actor,
			TransitionDetails{Reason: "0123456789"}, record.Version)
		s.NoError(err)
		s.Equal(StatusRejected, updated.Status)
	})

	s.Run("reason is stored in the activity details", func() {
		record := s.newRecord()
		_, err := s.service.Transition(s.ctx, record.ID, StatusRejected, actor,
			TransitionDetails{Reason: "Insufficient evidence provided"}, record.Version)
		s.Require().NoError(err)

		changes := s.statusChanges(record.ID)
		last := changes[len(changes)-1]
		s.Equal("Insufficient evidence provided", last.Details.Metadata["reason"])
	})
}

func (s *ServiceSuite) TestAttachEvidence() {
	actor := Actor{ID: s.requester, Type: activity.ActorRequester}
	valid := Evidence{
		Type:        EvidenceDocument,
		URL:         "https://example.com/contract.pdf",
		Description: "signed employment contract",
	}

	s.Run("appends validated evidence and notifies the verifier", func() {
		record := s.newRecord()
		updated, err := s.service.AttachEvidence(s.ctx, record.ID, valid, actor, record.Version)
		s.Require().NoError(err)
		s.Require().Len(updated.Evidence, 1)
		s.Equal(EvidenceDocument, updated.Evidence[0].Type)

		notices, err := s.notifications.ListByUser(s.ctx, s.verifier, false)
		s.Require().NoError(err)
		s.Require().NotEmpty(notices)
		s.Equal(notification.TypeEvidence, notices[0].Type)
	})

	s.Run("append keeps existing entries untouched", func() {
		record := s.newRecord()
		record, err := s.service.AttachEvidence(s.ctx, record.ID, valid, actor, record.Version)
		s.Require().NoError(err)

		second := valid
		second.Type = EvidenceTestimonial
		second.URL = "https://example.com/reference-letter"
		record, err = s.service.AttachEvidence(s.ctx, record.ID, second, actor, record.Version)
		s.Require().NoError(err)

		s.Require().Len(record.Evidence, 2)
		s.Equal("https://example.com/contract.pdf", record.Evidence[0].URL)
	})

	s.Run("malformed url is rejected and the list is unchanged", func() {
		record := s.newRecord()
		bad := valid
		bad.URL = "not-a-url"
		_, err := s.service.AttachEvidence(s.ctx, record.ID, bad, actor, record.Version)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		current, getErr := s.service.Get(s.ctx, record.ID)
		s.Require().NoError(getErr)
		s.Empty(current.Evidence)
	})

	s.Run("short description is rejected", func() {
		record := s.newRecord()
		bad := valid
		bad.Description = "too short"
		_, err := s.service.AttachEvidence(s.ctx, record.ID, bad, actor, record.Version)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown evidence type is rejected", func() {
		record := s.newRecord()
		bad := valid
		bad.Type = "hearsay"
		_, err := s.service.AttachEvidence(s.ctx, record.ID, bad, actor, record.Version)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("evidence without a verifier queues the notice until assignment", func() {
		record, err := s.service.Create(s.ctx, s.requester, id.NewTimelineEntryID(), nil)
		s.Require().NoError(err)

		record, err = s.service.AttachEvidence(s.ctx, record.ID, valid, actor, record.Version)
		s.Require().NoError(err)

		lateVerifier := id.NewProfileID()
		notices, err := s.notifications.ListByUser(s.ctx, lateVerifier, false)
		s.Require().NoError(err)
		s.Empty(notices)

		_, err = s.service.AssignVerifier(s.ctx, record.ID, lateVerifier, record.Version)
		s.Require().NoError(err)

		notices, err = s.notifications.ListByUser(s.ctx, lateVerifier, false)
		s.Require().NoError(err)
		s.Require().NotEmpty(notices)
		s.Equal(notification.TypeEvidence, notices[0].Type)
	})
}

func (s *ServiceSuite) TestConcurrentModification() {
	s.Run("store admits exactly one writer per version", func() {
		record := s.newRecord()

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				update := record
				update.Status = StatusInProgress
				_, errs[i] = s.store.Update(s.ctx, update, record.Version)
			}(i)
		}
		wg.Wait()

		var successes, stale int
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, sentinel.ErrStaleVersion):
				stale++
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}
		s.Equal(1, successes)
		s.Equal(1, stale)
	})

	s.Run("stale expected version surfaces as a retryable conflict", func() {
		record := s.newRecord()
		actor := Actor{ID: s.verifier, Type: activity.ActorVerifier}

		_, err := s.service.Transition(s.ctx, record.ID, StatusInProgress, actor, TransitionDetails{}, record.Version)
		s.Require().NoError(err)

		// Second writer still holds the version it read before the commit.
		_, err = s.service.Transition(s.ctx, record.ID, StatusCancelled, actor, TransitionDetails{}, record.Version)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestGetActivities() {
	record := s.newRecord()
	record = s.drive(record, StatusInProgress, StatusVerified)

	entries, err := s.service.GetActivities(s.ctx, record.ID)
	s.Require().NoError(err)
	// Opening change, verifier assignment, two transitions.
	s.Require().Len(entries, 4)
	for i := 1; i < len(entries); i++ {
		s.False(entries[i].Timestamp.Before(entries[i-1].Timestamp))
	}

	s.Run("unknown verification returns not found", func() {
		_, err := s.service.GetActivities(s.ctx, id.NewVerificationID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestReviewRejectionAppealScenario() {
	record := s.newRecord()
	verifierActor := Actor{ID: s.verifier, Type: activity.ActorVerifier}

	record, err := s.service.Transition(s.ctx, record.ID, StatusInProgress, verifierActor, TransitionDetails{}, record.Version)
	s.Require().NoError(err)
	s.Equal(StatusInProgress, record.Status)

	notices, err := s.notifications.ListByUser(s.ctx, s.requester, false)
	s.Require().NoError(err)
	s.Require().Len(notices, 1)
	s.Equal(notification.TypeStatusUpdate, notices[0].Type)

	record, err = s.service.Transition(s.ctx, record.ID, StatusRejected, verifierActor,
		TransitionDetails{Reason: "Insufficient evidence provided"}, record.Version)
	s.Require().NoError(err)
	s.Equal(StatusRejected, record.Status)

	changes := s.statusChanges(record.ID)
	s.Equal("Insufficient evidence provided", changes[len(changes)-1].Details.Metadata["reason"])

	notices, err = s.notifications.ListByUser(s.ctx, s.requester, false)
	s.Require().NoError(err)
	s.Len(notices, 2)

	record, err = s.service.Transition(s.ctx, record.ID, StatusPending,
		Actor{ID: s.requester, Type: activity.ActorRequester}, TransitionDetails{}, record.Version)
	s.Require().NoError(err)
	s.Equal(StatusPending, record.Status)
	s.Equal("submitted", record.Metadata[MetadataKeyAppealStatus])
}

func (s *ServiceSuite) TestCompletionSideEffects() {
	score := 0.92
	applied := &timelineSpy{}
	service, err := New(s.store, s.activities,
		WithNotifier(notification.NewDispatcher(s.notifications)),
		WithTimeline(applied))
	s.Require().NoError(err)

	record, err := service.Create(s.ctx, s.requester, id.NewTimelineEntryID(), nil)
	s.Require().NoError(err)
	record, err = service.AssignVerifier(s.ctx, record.ID, s.verifier, record.Version)
	s.Require().NoError(err)
	record = s.driveWith(service, record, StatusInProgress, StatusVerified)

	record, err = service.Transition(s.ctx, record.ID, StatusCompleted,
		Actor{ID: s.verifier, Type: activity.ActorVerifier},
		TransitionDetails{TrustScore: &score}, record.Version)
	s.Require().NoError(err)

	s.Run("timeline entry is marked verified with the trust score", func() {
		s.True(applied.called)
		s.Equal(record.TimelineEntryID, applied.entryID)
		s.Require().NotNil(applied.trustScore)
		s.Equal(score, *applied.trustScore)
	})

	s.Run("completion and trust score activities are recorded", func() {
		entries, err := s.activities.ListByVerification(s.ctx, record.ID)
		s.Require().NoError(err)
		types := map[activity.Type]int{}
		for _, entry := range entries {
			types[entry.Type]++
		}
		s.Equal(1, types[activity.TypeVerificationCompleted])
		s.Equal(1, types[activity.TypeTrustScoreUpdated])
	})

	s.Run("requester receives completion and trust score notices", func() {
		notices, err := s.notifications.ListByUser(s.ctx, s.requester, false)
		s.Require().NoError(err)
		var complete, trust int
		for _, n := range notices {
			switch n.Type {
			case notification.TypeVerificationComplete:
				complete++
			case notification.TypeTrustScore:
				trust++
			}
		}
		s.Equal(1, complete)
		s.Equal(1, trust)
	})
}

func (s *ServiceSuite) driveWith(service *Service, record Record, path ...Status) Record {
	for _, next := range path {
		var err error
		record, err = service.Transition(s.ctx, record.ID, next,
			Actor{ID: s.verifier, Type: activity.ActorVerifier}, TransitionDetails{}, record.Version)
		s.Require().NoError(err)
	}
	return record
}

type timelineSpy struct {
	called     bool
	entryID    id.TimelineEntryID
	verified   bool
	trustScore *float64
}

func (t *timelineSpy) ApplyVerification(_ context.Context, entryID id.TimelineEntryID, verified bool, trustScore *float64) error {
	t.called = true
	t.entryID = entryID
	t.verified = verified
	t.trustScore = trustScore
	return nil
}
