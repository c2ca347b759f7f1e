package verification

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Store persists verification records. Implementations return
// sentinel.ErrNotFound for unknown IDs and sentinel.ErrStaleVersion when an
// Update presents an expectedVersion that no longer matches the stored row.
// Update is the only mutation path after Insert; on success the returned
// record carries the incremented version. Reads return snapshot copies that
// callers may mutate freely.
type Store interface {
	Insert(ctx context.Context, record Record) error
	FindByID(ctx context.Context, verificationID id.VerificationID) (Record, error)
	// Update applies the record as the new state iff the stored version equals
	// expectedVersion. Exactly one of two concurrent writers presenting the
	// same expectedVersion commits; the other observes ErrStaleVersion.
	Update(ctx context.Context, record Record, expectedVersion int64) (Record, error)
	ListByRequester(ctx context.Context, requesterID id.ProfileID) ([]Record, error)
	ListByVerifier(ctx context.Context, verifierID id.ProfileID) ([]Record, error)
}
