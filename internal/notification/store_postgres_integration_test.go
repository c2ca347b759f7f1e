//go:build integration

package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/girishmungarach/doneby-platform-sub001/internal/notification"
	"github.com/girishmungarach/doneby-platform-sub001/internal/profile"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *notification.PostgresStore

	user id.ProfileID
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
	s.store = notification.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "verification_notifications", "profiles")
	s.Require().NoError(err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	s.user = id.NewProfileID()
	profiles := profile.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(profiles.CreateIfEmailAvailable(ctx, profile.Profile{
		ID:           s.user,
		Email:        "recipient@example.com",
		Name:         "Recipient",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}))
}

func (s *PostgresStoreSuite) newNotification(createdAt time.Time) notification.Notification {
	return notification.Notification{
		ID:        id.NewNotificationID(),
		UserID:    s.user,
		Type:      notification.TypeStatusUpdate,
		Title:     "Verification update",
		Message:   "your verification moved to in_progress",
		CreatedAt: createdAt,
	}
}

func (s *PostgresStoreSuite) TestMarkReadReportsChange() {
	ctx := context.Background()
	n := s.newNotification(time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Insert(ctx, n))

	changed, err := s.store.MarkRead(ctx, n.ID)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.store.MarkRead(ctx, n.ID)
	s.Require().NoError(err)
	s.False(changed, "second mark must be a no-op")

	_, err = s.store.MarkRead(ctx, id.NewNotificationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListAndCountUnread() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := s.newNotification(base)
	newer := s.newNotification(base.Add(time.Second))
	s.Require().NoError(s.store.Insert(ctx, older))
	s.Require().NoError(s.store.Insert(ctx, newer))

	all, err := s.store.ListByUser(ctx, s.user, false)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(newer.ID, all[0].ID, "newest first")

	count, err := s.store.CountUnread(ctx, s.user)
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	_, err = s.store.MarkRead(ctx, older.ID)
	s.Require().NoError(err)

	unread, err := s.store.ListByUser(ctx, s.user, true)
	s.Require().NoError(err)
	s.Require().Len(unread, 1)
	s.Equal(newer.ID, unread[0].ID)

	count, err = s.store.CountUnread(ctx, s.user)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	count, err = s.store.CountUnread(ctx, id.NewProfileID())
	s.Require().NoError(err)
	s.Zero(count)
}
