// Package handler exposes the verification lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/girishmungarach/doneby-platform-sub001/internal/activity"
	"github.com/girishmungarach/doneby-platform-sub001/internal/verification"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service defines the verification operations the transport needs.
type Service interface {
	Create(ctx context.Context, requesterID id.ProfileID, timelineEntryID id.TimelineEntryID, metadata map[string]string) (verification.Record, error)
	Get(ctx context.Context, verificationID id.VerificationID) (verification.Record, error)
	AssignVerifier(ctx context.Context, verificationID id.VerificationID, verifierID id.ProfileID, expectedVersion int64) (verification.Record, error)
	Transition(ctx context.Context, verificationID id.VerificationID, newStatus verification.Status, actor verification.Actor, details verification.TransitionDetails, expectedVersion int64) (verification.Record, error)
	AttachEvidence(ctx context.Context, verificationID id.VerificationID, e verification.Evidence, actor verification.Actor, expectedVersion int64) (verification.Record, error)
	GetActivities(ctx context.Context, verificationID id.VerificationID) ([]activity.Activity, error)
	ListByRequester(ctx context.Context, requesterID id.ProfileID) ([]verification.Record, error)
	ListByVerifier(ctx context.Context, verifierID id.ProfileID) ([]verification.Record, error)
}

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verifications", h.HandleCreate)
	r.Get("/verifications/{verificationID}", h.HandleGet)
	r.Post("/verifications/{verificationID}/assign", h.HandleAssign)
	r.Post("/verifications/{verificationID}/transition", h.HandleTransition)
	r.Post("/verifications/{verificationID}/evidence", h.HandleAttachEvidence)
	r.Get("/verifications/{verificationID}/activities", h.HandleActivities)
	r.Get("/me/verifications", h.HandleListMine)
	r.Get("/me/reviews", h.HandleListReviews)
}

// HandleCreate handles POST /verifications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Create(ctx, actorID, req.ParsedTimelineEntryID(), req.Metadata)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification create failed",
			"request_id", requestID,
			"actor_id", actorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification created",
		"request_id", requestID,
		"verification_id", record.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRecord(record))
}

// HandleGet handles GET /verifications/{verificationID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Get(ctx, verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleAssign handles POST /verifications/{verificationID}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.AssignVerifier(ctx, verificationID, req.ParsedVerifierID(), req.ExpectedVersion)
	if err != nil {
		h.logger.ErrorContext(ctx, "verifier assignment failed",
			"request_id", requestID,
			"verification_id", verificationID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleTransition handles POST /verifications/{verificationID}/transition.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)
	start := time.Now()

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Get(ctx, verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	actor, err := verification.ResolveActor(record, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err = h.service.Transition(ctx, verificationID, req.ParsedStatus(), actor, req.Details(), req.ExpectedVersion)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification transition failed",
			"request_id", requestID,
			"verification_id", verificationID.String(),
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification transitioned",
		"request_id", requestID,
		"verification_id", verificationID.String(),
		"status", record.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleAttachEvidence handles POST /verifications/{verificationID}/evidence.
func (h *Handler) HandleAttachEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AttachEvidenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Get(ctx, verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	actor, err := verification.ResolveActor(record, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err = h.service.AttachEvidence(ctx, verificationID, req.Evidence(), actor, req.ExpectedVersion)
	if err != nil {
		h.logger.ErrorContext(ctx, "evidence attachment failed",
			"request_id", requestID,
			"verification_id", verificationID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleActivities handles GET /verifications/{verificationID}/activities.
func (h *Handler) HandleActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verificationID, err := id.ParseVerificationID(chi.URLParam(r, "verificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.GetActivities(ctx, verificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromActivities(entries))
}

// HandleListMine handles GET /me/verifications.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, h.service.ListByRequester)
}

// HandleListReviews handles GET /me/reviews.
func (h *Handler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, h.service.ListByVerifier)
}

func (h *Handler) listFor(w http.ResponseWriter, r *http.Request, list func(context.Context, id.ProfileID) ([]verification.Record, error)) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	records, err := list(ctx, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}
