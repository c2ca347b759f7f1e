package timeline

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Store persists timeline entries. Implementations return sentinel.ErrNotFound
// for unknown IDs. ListByProfile returns entries newest start date first.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	FindByID(ctx context.Context, entryID id.TimelineEntryID) (Entry, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]Entry, error)
}
