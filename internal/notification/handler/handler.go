// Package handler exposes the notification inbox over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/girishmungarach/doneby-platform-sub001/internal/notification"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/httputil"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

// Service defines the notification operations the transport needs.
type Service interface {
	List(ctx context.Context, userID id.ProfileID, unreadOnly bool) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID id.ProfileID) (int64, error)
	MarkRead(ctx context.Context, userID id.ProfileID, notificationID id.NotificationID) error
}

// Handler wires notification endpoints to the dispatcher.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a notification handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts notification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Get("/notifications/unread-count", h.HandleUnreadCount)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
}

// HandleList handles GET /notifications. ?unread=true filters to unread.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notices, err := h.service.List(ctx, userID, unreadOnly)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromNotifications(notices))
}

// HandleUnreadCount handles GET /notifications/unread-count.
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UnreadCountResponse{Unread: count})
}

// HandleMarkRead handles POST /notifications/{notificationID}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireActor(w, ctx)
	if !ok {
		return
	}

	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.MarkRead(ctx, userID, notificationID); err != nil {
		h.logger.ErrorContext(ctx, "mark notification read failed",
			"request_id", requestID,
			"notification_id", notificationID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireActor(w http.ResponseWriter, ctx context.Context) (id.ProfileID, bool) {
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.ProfileID{}, false
	}
	return actorID, true
}

// NotificationResponse is the HTTP representation of one notification.
type NotificationResponse struct {
	ID             string            `json:"id"`
	VerificationID string            `json:"verification_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Message        string            `json:"message"`
	Read           bool              `json:"read"`
	CreatedAt      time.Time         `json:"created_at"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// UnreadCountResponse is the HTTP response for GET /notifications/unread-count.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// FromNotifications converts notifications, preserving their order.
func FromNotifications(notices []notification.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notices))
	for _, n := range notices {
		out = append(out, NotificationResponse{
			ID:             n.ID.String(),
			VerificationID: n.VerificationID.String(),
			Type:           string(n.Type),
			Title:          n.Title,
			Message:        n.Message,
			Read:           n.Read,
			CreatedAt:      n.CreatedAt,
			Metadata:       n.Metadata,
		})
	}
	return out
}
