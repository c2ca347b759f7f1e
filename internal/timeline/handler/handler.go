// Package handler exposes timeline entries over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/girishmungarach/doneby-platform-sub001/internal/timeline"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service defines the timeline operations the transport needs.
type Service interface {
	Add(ctx context.Context, entry timeline.Entry) (timeline.Entry, error)
	Get(ctx context.Context, entryID id.TimelineEntryID) (timeline.Entry, error)
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]timeline.Entry, error)
}

// Handler wires timeline endpoints to the timeline service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a timeline handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts timeline endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/timeline", h.HandleAdd)
	r.Get("/timeline/{entryID}", h.HandleGet)
	r.Get("/profiles/{profileID}/timeline", h.HandleListByProfile)
}

// AddRequest is the HTTP request body for POST /timeline.
type AddRequest struct {
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	Organization string     `json:"organization,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// Validate normalizes the request; content rules live in the timeline service.
func (r *AddRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Kind = strings.TrimSpace(r.Kind)
	r.Title = strings.TrimSpace(r.Title)
	if r.Kind == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "kind is required")
	}
	return nil
}

// EntryResponse is the HTTP representation of a timeline entry.
type EntryResponse struct {
	ID           string     `json:"id"`
	ProfileID    string     `json:"profile_id"`
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	Organization string     `json:"organization,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Description  string     `json:"description,omitempty"`
	Verified     bool       `json:"verified"`
	TrustScore   *float64   `json:"trust_score,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FromEntry converts a domain entry to an HTTP response.
func FromEntry(entry timeline.Entry) EntryResponse {
	return EntryResponse{
		ID:           entry.ID.String(),
		ProfileID:    entry.ProfileID.String(),
		Kind:         string(entry.Kind),
		Title:        entry.Title,
		Organization: entry.Organization,
		StartDate:    entry.StartDate,
		EndDate:      entry.EndDate,
		Description:  entry.Description,
		Verified:     entry.Verified,
		TrustScore:   entry.TrustScore,
		CreatedAt:    entry.CreatedAt,
	}
}

// FromEntries converts a list of entries, preserving their order.
func FromEntries(entries []timeline.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromEntry(entry))
	}
	return out
}

// HandleAdd handles POST /timeline.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Add(ctx, timeline.Entry{
		ProfileID:    actorID,
		Kind:         timeline.Kind(req.Kind),
		Title:        req.Title,
		Organization: req.Organization,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Description:  req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "timeline entry creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromEntry(entry))
}

// HandleGet handles GET /timeline/{entryID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entryID, err := id.ParseTimelineEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Get(ctx, entryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntry(entry))
}

// HandleListByProfile handles GET /profiles/{profileID}/timeline.
func (h *Handler) HandleListByProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := id.ParseProfileID(chi.URLParam(r, "profileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.ListByProfile(ctx, profileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntries(entries))
}
