// Package handler exposes job postings over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/girishmungarach/doneby-platform-sub001/internal/job"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service defines the job operations the transport needs.
type Service interface {
	Post(ctx context.Context, j job.Job) (job.Job, error)
	Get(ctx context.Context, jobID id.JobID) (job.Job, error)
	ListOpen(ctx context.Context) ([]job.Job, error)
	Close(ctx context.Context, jobID id.JobID, actorID id.ProfileID) (job.Job, error)
}

// Handler wires job endpoints to the job service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a job handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts job endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/jobs", h.HandlePost)
	r.Get("/jobs", h.HandleList)
	r.Get("/jobs/{jobID}", h.HandleGet)
	r.Post("/jobs/{jobID}/close", h.HandleClose)
}

// PostRequest is the HTTP request body for POST /jobs.
type PostRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Validate normalizes the request; content rules live in the job service.
func (r *PostRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	return nil
}

// JobResponse is the HTTP representation of a job posting.
type JobResponse struct {
	ID          string    `json:"id"`
	PosterID    string    `json:"poster_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromJob converts a domain job to an HTTP response.
func FromJob(j job.Job) JobResponse {
	return JobResponse{
		ID:          j.ID.String(),
		PosterID:    j.PosterID.String(),
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Description: j.Description,
		Status:      string(j.Status),
		CreatedAt:   j.CreatedAt,
	}
}

// HandlePost handles POST /jobs.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PostRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	j, err := h.service.Post(ctx, job.Job{
		PosterID:    actorID,
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "job posting failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromJob(j))
}

// HandleList handles GET /jobs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListOpen(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, FromJob(j))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /jobs/{jobID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	jobID, err := id.ParseJobID(chi.URLParam(r, "jobID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	j, err := h.service.Get(r.Context(), jobID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromJob(j))
}

// HandleClose handles POST /jobs/{jobID}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	jobID, err := id.ParseJobID(chi.URLParam(r, "jobID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	j, err := h.service.Close(ctx, jobID, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromJob(j))
}
