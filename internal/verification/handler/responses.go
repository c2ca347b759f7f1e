package handler

import (
	"time"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	"github.com/girishmungarach/doneby-platform-sub001/internal/verification"
)

// RecordResponse is the HTTP representation of a verification record.
type RecordResponse struct {
	ID              string             `json:"id"`
	RequesterID     string             `json:"requester_id"`
	VerifierID      string             `json:"verifier_id,omitempty"`
	TimelineEntryID string             `json:"timeline_entry_id"`
	Status          string             `json:"status"`
	Evidence        []EvidenceResponse `json:"evidence"`
	Metadata        map[string]string  `json:"metadata,omitempty"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// EvidenceResponse is one evidence item in a record response.
type EvidenceResponse struct {
	Type        string            `json:"type"`
	URL         string            `json:"url"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FromRecord converts a domain record to an HTTP response.
func FromRecord(record verification.Record) RecordResponse {
	resp := RecordResponse{
		ID:              record.ID.String(),
		RequesterID:     record.RequesterID.String(),
		TimelineEntryID: record.TimelineEntryID.String(),
		Status:          string(record.Status),
		Evidence:        make([]EvidenceResponse, 0, len(record.Evidence)),
		Metadata:        record.Metadata,
		Version:         record.Version,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
	if record.HasVerifier() {
		resp.VerifierID = record.VerifierID.String()
	}
	for _, e := range record.Evidence {
		resp.Evidence = append(resp.Evidence, EvidenceResponse{
			Type:        string(e.Type),
			URL:         e.URL,
			Description: e.Description,
			Metadata:    e.Metadata,
		})
	}
	return resp
}

// FromRecords converts a list of records.
func FromRecords(records []verification.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, FromRecord(record))
	}
	return out
}

// ActivityResponse is the HTTP representation of one audit entry.
type ActivityResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	ActorID   string            `json:"actor_id,omitempty"`
	ActorType string            `json:"actor_type"`
	Timestamp time.Time         `json:"timestamp"`
	Message   string            `json:"message,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FromActivities converts audit entries, preserving their order.
func FromActivities(entries []activity.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		resp := ActivityResponse{
			ID:        entry.ID.String(),
			Type:      string(entry.Type),
			ActorType: string(entry.ActorType),
			Timestamp: entry.Timestamp,
			Message:   entry.Details.Message,
			Metadata:  entry.Details.Metadata,
		}
		if !entry.ActorID.IsNil() {
			resp.ActorID = entry.ActorID.String()
		}
		out = append(out, resp)
	}
	return out
}
