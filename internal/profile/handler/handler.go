// Package handler exposes profile registration and authentication over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/girishmungarach/doneby-platform-sub001/internal/profile"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service defines the profile operations the transport needs.
type Service interface {
	Register(ctx context.Context, address, name, password string) (profile.Profile, error)
	Authenticate(ctx context.Context, address, password string) (profile.Profile, string, error)
	Get(ctx context.Context, profileID id.ProfileID) (profile.Profile, error)
	UpdateHeadline(ctx context.Context, profileID id.ProfileID, headline string) (profile.Profile, error)
}

// Handler wires profile endpoints to the profile service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a profile handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts the authenticated endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/profiles/{profileID}", h.HandleGet)
	r.Get("/me", h.HandleMe)
	r.Patch("/me", h.HandleUpdateHeadline)
}

// RegisterRequest is the HTTP request body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

// Validate normalizes the request; content rules live in the profile service.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return nil
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes the request.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "email and password are required")
	}
	return nil
}

// UpdateHeadlineRequest is the HTTP request body for PATCH /me.
type UpdateHeadlineRequest struct {
	Headline string `json:"headline"`
}

// ProfileResponse is the HTTP representation of a profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Headline  string    `json:"headline,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the session token alongside the profile.
type LoginResponse struct {
	Profile ProfileResponse `json:"profile"`
	Token   string          `json:"token"`
}

// FromProfile converts a domain profile to an HTTP response.
func FromProfile(p profile.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		Name:      p.Name,
		Headline:  p.Headline,
		CreatedAt: p.CreatedAt,
	}
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "profile registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromProfile(p))
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, token, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Profile: FromProfile(p), Token: token})
}

// HandleGet handles GET /profiles/{profileID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := id.ParseProfileID(chi.URLParam(r, "profileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.service.Get(ctx, profileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(p))
}

// HandleMe handles GET /me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	p, err := h.service.Get(ctx, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(p))
}

// HandleUpdateHeadline handles PATCH /me.
func (h *Handler) HandleUpdateHeadline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateHeadlineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.UpdateHeadline(ctx, actorID, req.Headline)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(p))
}
