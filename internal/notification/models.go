// Package notification fans out one notification per (event, recipient) pair
// and tracks read state. Notifications are created by the dispatcher whenever
// a verification activity concerns a user; they are mutated only to flip read
// to true and never deleted here (retention is an external concern).
package notification

import (
	"time"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Type classifies what a notification is about.
type Type string

const (
	TypeStatusUpdate         Type = "status_update"
	TypeComment              Type = "comment"
	TypeEvidence             Type = "evidence"
	TypeVerificationComplete Type = "verification_complete"
	TypeTrustScore           Type = "trust_score"
)

// Notification is one message addressed to a single recipient about a single
// verification.
type Notification struct {
	ID             id.NotificationID
	UserID         id.ProfileID
	VerificationID id.VerificationID
	Type           Type
	Title          string
	Message        string
	Read           bool
	CreatedAt      time.Time
	Metadata       map[string]string
}
