//go:build integration

package verification_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/girishmungarach/doneby-platform-sub001/internal/profile"
	"github.com/girishmungarach/doneby-platform-sub001/internal/timeline"
	"github.com/girishmungarach/doneby-platform-sub001/internal/verification"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *verification.PostgresStore

	requester id.ProfileID
	entry     id.TimelineEntryID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = verification.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "verifications", "timeline_entries", "profiles")
	s.Require().NoError(err)

	// Records reference a profile and a timeline entry.
	now := time.Now().UTC().Truncate(time.Microsecond)
	s.requester = id.NewProfileID()
	profiles := profile.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(profiles.CreateIfEmailAvailable(ctx, profile.Profile{
		ID:           s.requester,
		Email:        "requester@example.com",
		Name:         "Requester",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	s.entry = id.NewTimelineEntryID()
	entries := timeline.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(entries.Insert(ctx, timeline.Entry{
		ID:           s.entry,
		ProfileID:    s.requester,
		Kind:         timeline.KindWork,
		Title:        "Engineer",
		Organization: "Acme",
		StartDate:    now.AddDate(-1, 0, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func (s *PostgresStoreSuite) newRecord() verification.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return verification.Record{
		ID:              id.NewVerificationID(),
		RequesterID:     s.requester,
		TimelineEntryID: s.entry,
		Status:          verification.StatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *PostgresStoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	record := s.newRecord()
	record.Metadata = map[string]string{"notes": "initial request"}

	s.Require().NoError(s.store.Insert(ctx, record))

	found, err := s.store.FindByID(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.ID, found.ID)
	s.Equal(verification.StatusPending, found.Status)
	s.Equal(int64(1), found.Version)
	s.Equal("initial request", found.Metadata["notes"])
	s.False(found.HasVerifier())

	_, err = s.store.FindByID(ctx, id.NewVerificationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateIncrementsVersion() {
	ctx := context.Background()
	record := s.newRecord()
	s.Require().NoError(s.store.Insert(ctx, record))

	record.Status = verification.StatusInProgress
	updated, err := s.store.Update(ctx, record, 1)
	s.Require().NoError(err)
	s.Equal(verification.StatusInProgress, updated.Status)
	s.Equal(int64(2), updated.Version)

	_, err = s.store.Update(ctx, record, 1)
	s.ErrorIs(err, sentinel.ErrStaleVersion)

	_, err = s.store.Update(ctx, s.newRecord(), 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentUpdateConflict verifies that two writers presenting the same
// expected version result in exactly one commit.
func (s *PostgresStoreSuite) TestConcurrentUpdateConflict() {
	ctx := context.Background()
	record := s.newRecord()
	s.Require().NoError(s.store.Insert(ctx, record))

	const writers = 20
	var wg sync.WaitGroup
	var successCount, staleCount atomic.Int32

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidate := record
			candidate.Status = verification.StatusInProgress
			_, err := s.store.Update(ctx, candidate, 1)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrStaleVersion) {
				staleCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one update should commit")
	s.Equal(int32(writers-1), staleCount.Load())

	found, err := s.store.FindByID(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), found.Version)
}

func (s *PostgresStoreSuite) TestEvidenceRoundTrip() {
	ctx := context.Background()
	record := s.newRecord()
	s.Require().NoError(s.store.Insert(ctx, record))

	record.Evidence = []verification.Evidence{{
		Type:        verification.EvidenceDocument,
		URL:         "https://files.example.com/contract.pdf",
		Description: "signed employment contract",
		Metadata:    map[string]string{"pages": "4"},
	}}
	updated, err := s.store.Update(ctx, record, 1)
	s.Require().NoError(err)
	s.Require().Len(updated.Evidence, 1)

	found, err := s.store.FindByID(ctx, record.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Evidence, 1)
	s.Equal(verification.EvidenceDocument, found.Evidence[0].Type)
	s.Equal("signed employment contract", found.Evidence[0].Description)
	s.Equal("4", found.Evidence[0].Metadata["pages"])
}

func (s *PostgresStoreSuite) TestListByRequesterOrdersOldestFirst() {
	ctx := context.Background()
	first := s.newRecord()
	second := s.newRecord()
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	second.UpdatedAt = second.CreatedAt
	s.Require().NoError(s.store.Insert(ctx, first))
	s.Require().NoError(s.store.Insert(ctx, second))

	records, err := s.store.ListByRequester(ctx, s.requester)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.ID, records[0].ID)
	s.Equal(second.ID, records[1].ID)

	records, err = s.store.ListByVerifier(ctx, id.NewProfileID())
	s.Require().NoError(err)
	s.Empty(records)
}
