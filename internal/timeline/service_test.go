package timeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

type TimelineServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemoryStore
	service *Service
	owner   id.ProfileID
}

func TestTimelineServiceSuite(t *testing.T) {
	suite.Run(t, new(TimelineServiceSuite))
}

func (s *TimelineServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Now())
	s.store = NewInMemoryStore()

	var err error
	s.service, err = New(s.store)
	s.Require().NoError(err)

	s.owner = id.NewProfileID()
}

func (s *TimelineServiceSuite) entry() Entry {
	return Entry{
		ProfileID:    s.owner,
		Kind:         KindWork,
		Title:        "Senior Engineer",
		Organization: "Acme Corp",
		StartDate:    time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func (s *TimelineServiceSuite) TestAdd() {
	s.Run("creates an unverified entry", func() {
		entry, err := s.service.Add(s.ctx, s.entry())
		s.NoError(err)
		s.False(entry.ID.IsNil())
		s.False(entry.Verified)
		s.Nil(entry.TrustScore)
	})

	s.Run("owner cannot pre-set verified state", func() {
		in := s.entry()
		in.Verified = true
		score := 1.0
		in.TrustScore = &score

		entry, err := s.service.Add(s.ctx, in)
		s.NoError(err)
		s.False(entry.Verified)
		s.Nil(entry.TrustScore)
	})

	s.Run("rejects unknown kind", func() {
		in := s.entry()
		in.Kind = "hobby"
		_, err := s.service.Add(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects end date before start date", func() {
		in := s.entry()
		end := in.StartDate.AddDate(-1, 0, 0)
		in.EndDate = &end
		_, err := s.service.Add(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *TimelineServiceSuite) TestApplyVerification() {
	entry, err := s.service.Add(s.ctx, s.entry())
	s.Require().NoError(err)

	score := 0.87
	s.NoError(s.service.ApplyVerification(s.ctx, entry.ID, true, &score))

	got, err := s.service.Get(s.ctx, entry.ID)
	s.Require().NoError(err)
	s.True(got.Verified)
	s.Require().NotNil(got.TrustScore)
	s.Equal(score, *got.TrustScore)

	s.Run("unknown entry returns not found", func() {
		err := s.service.ApplyVerification(s.ctx, id.NewTimelineEntryID(), true, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TimelineServiceSuite) TestListByProfile() {
	first := s.entry()
	first.StartDate = time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	second := s.entry()
	second.Title = "Staff Engineer"
	second.StartDate = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, e := range []Entry{first, second} {
		_, err := s.service.Add(s.ctx, e)
		s.Require().NoError(err)
	}

	entries, err := s.service.ListByProfile(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Staff Engineer", entries[0].Title)

	other, err := s.service.ListByProfile(s.ctx, id.NewProfileID())
	s.NoError(err)
	s.Empty(other)
}
