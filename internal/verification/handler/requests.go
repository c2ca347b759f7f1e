package handler

import (
	"strings"

	"github.com/girishmungarach/doneby-platform-sub001/internal/verification"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
)

// CreateRequest is the HTTP request body for POST /verifications.
type CreateRequest struct {
	TimelineEntryID string            `json:"timeline_entry_id"`
	Metadata        map[string]string `json:"metadata,omitempty"`

	parsedTimelineEntryID id.TimelineEntryID
}

// Validate validates and parses the request.
func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.TimelineEntryID = strings.TrimSpace(r.TimelineEntryID)
	if r.TimelineEntryID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "timeline_entry_id is required")
	}
	entryID, err := id.ParseTimelineEntryID(r.TimelineEntryID)
	if err != nil {
		return err
	}
	r.parsedTimelineEntryID = entryID
	return nil
}

// ParsedTimelineEntryID returns the validated timeline entry id.
func (r *CreateRequest) ParsedTimelineEntryID() id.TimelineEntryID {
	return r.parsedTimelineEntryID
}

// AssignRequest is the HTTP request body for POST /verifications/{id}/assign.
type AssignRequest struct {
	VerifierID      string `json:"verifier_id"`
	ExpectedVersion int64  `json:"expected_version"`

	parsedVerifierID id.ProfileID
}

// Validate validates and parses the request.
func (r *AssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verifierID, err := id.ParseProfileID(strings.TrimSpace(r.VerifierID))
	if err != nil {
		return err
	}
	r.parsedVerifierID = verifierID
	if r.ExpectedVersion < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "expected_version is required")
	}
	return nil
}

// ParsedVerifierID returns the validated verifier id.
func (r *AssignRequest) ParsedVerifierID() id.ProfileID {
	return r.parsedVerifierID
}

// TransitionRequest is the HTTP request body for POST /verifications/{id}/transition.
type TransitionRequest struct {
	Status          string   `json:"status"`
	Reason          string   `json:"reason,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	EvidenceQuality *float64 `json:"evidence_quality,omitempty"`
	TrustScore      *float64 `json:"trust_score,omitempty"`
	ExpectedVersion int64    `json:"expected_version"`

	parsedStatus verification.Status
}

// Validate validates and parses the request. Reason length is checked by the
// lifecycle so the validation error carries the domain wording.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := verification.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.parsedStatus = status
	if r.ExpectedVersion < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "expected_version is required")
	}
	return nil
}

// ParsedStatus returns the validated target status.
func (r *TransitionRequest) ParsedStatus() verification.Status {
	return r.parsedStatus
}

// Details converts the request into transition details.
func (r *TransitionRequest) Details() verification.TransitionDetails {
	return verification.TransitionDetails{
		Reason:          strings.TrimSpace(r.Reason),
		Notes:           strings.TrimSpace(r.Notes),
		EvidenceQuality: r.EvidenceQuality,
		TrustScore:      r.TrustScore,
	}
}

// AttachEvidenceRequest is the HTTP request body for POST /verifications/{id}/evidence.
type AttachEvidenceRequest struct {
	Type            string            `json:"type"`
	URL             string            `json:"url"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ExpectedVersion int64             `json:"expected_version"`
}

// Validate checks the envelope; evidence content is validated by the
// lifecycle.
func (r *AttachEvidenceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Type = strings.TrimSpace(r.Type)
	r.URL = strings.TrimSpace(r.URL)
	r.Description = strings.TrimSpace(r.Description)
	if r.ExpectedVersion < 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "expected_version is required")
	}
	return nil
}

// Evidence converts the request into a domain evidence item.
func (r *AttachEvidenceRequest) Evidence() verification.Evidence {
	return verification.Evidence{
		Type:        verification.EvidenceType(r.Type),
		URL:         r.URL,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}
