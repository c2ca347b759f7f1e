// Package domain holds the typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-entity
// assignment (a ProfileID can never be passed where a VerificationID is
// expected). Parse functions enforce the trust-boundary invariant: IDs must be
// valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

type (
	// ProfileID identifies a user profile (requester, verifier, or company member).
	ProfileID uuid.UUID
	// VerificationID identifies a verification record.
	VerificationID uuid.UUID
	// TimelineEntryID identifies a work-history or certification entry.
	TimelineEntryID uuid.UUID
	// ActivityID identifies an immutable audit entry.
	ActivityID uuid.UUID
	// NotificationID identifies a notification.
	NotificationID uuid.UUID
	// JobID identifies a job posting.
	JobID uuid.UUID
)

func (i ProfileID) String() string { return uuid.UUID(i).String() }
func (i VerificationID) String() string { return uuid.UUID(i).String() }
func (i TimelineEntryID) String() string { return uuid.UUID(i).String() }
func (i ActivityID) String() string { return uuid.UUID(i).String() }
func (i NotificationID) String() string { return uuid.UUID(i).String() }
func (i JobID) String() string { return uuid.UUID(i).String() }

func (i ProfileID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i VerificationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i TimelineEntryID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i NotificationID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }
func (i JobID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

// NewProfileID returns a fresh random profile ID.
func NewProfileID() ProfileID { return ProfileID(uuid.New()) }

// NewVerificationID returns a fresh random verification ID.
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }

// NewTimelineEntryID returns a fresh random timeline entry ID.
func NewTimelineEntryID() TimelineEntryID { return TimelineEntryID(uuid.New()) }

// NewActivityID returns a fresh random activity ID.
func NewActivityID() ActivityID { return ActivityID(uuid.New()) }

// NewNotificationID returns a fresh random notification ID.
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

// NewJobID returns a fresh random job ID.
func NewJobID() JobID { return JobID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseProfileID validates and converts a raw string into a ProfileID.
func ParseProfileID(raw string) (ProfileID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ProfileID{}, err
	}
	return ProfileID(parsed), nil
}

// ParseVerificationID validates and converts a raw string into a VerificationID.
func ParseVerificationID(raw string) (VerificationID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return VerificationID{}, err
	}
	return VerificationID(parsed), nil
}

// ParseTimelineEntryID validates and converts a raw string into a TimelineEntryID.
func ParseTimelineEntryID(raw string) (TimelineEntryID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return TimelineEntryID{}, err
	}
	return TimelineEntryID(parsed), nil
}

// ParseActivityID validates and converts a raw string into an ActivityID.
func ParseActivityID(raw string) (ActivityID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ActivityID{}, err
	}
	return ActivityID(parsed), nil
}

// ParseNotificationID validates and converts a raw string into a NotificationID.
func ParseNotificationID(raw string) (NotificationID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return NotificationID{}, err
	}
	return NotificationID(parsed), nil
}

// ParseJobID validates and converts a raw string into a JobID.
func ParseJobID(raw string) (JobID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return JobID{}, err
	}
	return JobID(parsed), nil
}
