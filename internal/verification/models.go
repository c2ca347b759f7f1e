// Package verification implements the verification lifecycle: a requester's
// timeline entry is reviewed by a verifier through a fixed status state
// machine, with evidence attachments, an append-only activity history and
// notifications to the affected parties.
package verification

import (
	"time"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

// Status is the lifecycle state of a verification record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusVerified   Status = "verified"
	StatusRejected   Status = "rejected"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusInProgress, StatusVerified, StatusRejected, StatusCompleted, StatusCancelled:
		return Status(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown verification status %q", raw)
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// EvidenceType classifies an attached evidence item.
type EvidenceType string

const (
	EvidenceDocument      EvidenceType = "document"
	EvidenceTestimonial   EvidenceType = "testimonial"
	EvidenceCertification EvidenceType = "certification"
	EvidenceOther         EvidenceType = "other"
)

// ParseEvidenceType validates a raw evidence type string.
func ParseEvidenceType(raw string) (EvidenceType, error) {
	switch EvidenceType(raw) {
	case EvidenceDocument, EvidenceTestimonial, EvidenceCertification, EvidenceOther:
		return EvidenceType(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown evidence type %q", raw)
}

// Evidence is one supporting artifact attached to a verification. The
// evidence list on a record is append-only.
type Evidence struct {
	Type        EvidenceType      `json:"type"`
	URL         string            `json:"url"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Record is the verification under review. Version is the optimistic
// concurrency token: every committed write increments it, and writers must
// present the version they read.
type Record struct {
	ID              id.VerificationID
	RequesterID     id.ProfileID
	VerifierID      id.ProfileID // nil UUID until a verifier is assigned
	TimelineEntryID id.TimelineEntryID
	Status          Status
	Evidence        []Evidence
	Metadata        map[string]string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasVerifier reports whether a verifier has been assigned.
func (r Record) HasVerifier() bool {
	return !r.VerifierID.IsNil()
}

// Metadata keys used by the lifecycle.
const (
	MetadataKeyAppealStatus       = "appeal_status"
	MetadataKeyAppealReason       = "appeal_reason"
	MetadataKeyNotes              = "notes"
	MetadataKeyVerificationMethod = "verification_method"
	MetadataKeyVerificationSource = "verification_source"
)

// Actor identifies who performs an operation.
type Actor struct {
	ID   id.ProfileID
	Type activity.ActorType
}

// System is the actor for transitions the platform initiates itself.
var System = Actor{Type: activity.ActorSystem}

// ResolveActor identifies which party of the record the profile is. Profiles
// that are neither party are refused.
func ResolveActor(record Record, profileID id.ProfileID) (Actor, error) {
	switch profileID {
	case record.RequesterID:
		return Actor{ID: profileID, Type: activity.ActorRequester}, nil
	case record.VerifierID:
		return Actor{ID: profileID, Type: activity.ActorVerifier}, nil
	}
	return Actor{}, dErrors.New(dErrors.CodeForbidden, "profile is not a party to this verification")
}

// TransitionDetails carries optional context for a status change. Reason is
// mandatory for rejections. EvidenceQuality and TrustScore are advisory
// numbers accepted on verified/completed transitions.
type TransitionDetails struct {
	Reason          string
	Notes           string
	EvidenceQuality *float64
	TrustScore      *float64
}
