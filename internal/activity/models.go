// Package activity provides the append-only audit trail for verification
// records. Activities are immutable once recorded; the current status of a
// verification always equals the status carried by its most recent
// status_change activity.
package activity

import (
	"time"

	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
)

// Type classifies what happened to a verification.
type Type string

const (
	TypeStatusChange          Type = "status_change"
	TypeCommentAdded          Type = "comment_added"
	TypeEvidenceUploaded      Type = "evidence_uploaded"
	TypeVerificationCompleted Type = "verification_completed"
	TypeTrustScoreUpdated     Type = "trust_score_updated"
)

// ActorType identifies which side of a verification performed an action.
type ActorType string

const (
	ActorRequester ActorType = "requester"
	ActorVerifier  ActorType = "verifier"
	ActorSystem    ActorType = "system"
)

// MetadataKeyPreviousStatus records the status a status_change moved away from.
const MetadataKeyPreviousStatus = "previous_status"

// Details carries the human-readable message and structured metadata of an entry.
type Details struct {
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Activity is one immutable audit entry, owned exclusively by its verification.
type Activity struct {
	ID             id.ActivityID
	VerificationID id.VerificationID
	Type           Type
	ActorID        id.ProfileID
	ActorType      ActorType
	Timestamp      time.Time
	Details        Details
}
