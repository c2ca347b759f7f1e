package activity

import (
	"context"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Store persists audit entries. Append-only: there is deliberately no update
// or delete. Implementations must return snapshot copies from
// ListByVerification so concurrent appends never mutate a returned slice.
type Store interface {
	Append(ctx context.Context, entry Activity) error
	ListByVerification(ctx context.Context, verificationID id.VerificationID) ([]Activity, error)
}
