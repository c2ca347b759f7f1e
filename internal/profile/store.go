package profile

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Store persists profiles. Emails are unique; CreateIfEmailAvailable is the
// atomic claim on an address and returns sentinel.ErrConflict when taken.
type Store interface {
	CreateIfEmailAvailable(ctx context.Context, p Profile) error
	FindByID(ctx context.Context, profileID id.ProfileID) (Profile, error)
	FindByEmail(ctx context.Context, email string) (Profile, error)
	Update(ctx context.Context, p Profile) (Profile, error)
}
