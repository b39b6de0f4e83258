package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

// DeviceRegistry records device tokens for push delivery.
type DeviceRegistry interface {
	RegisterDevice(ctx context.Context, userID uuid.UUID, token string) error
	UnregisterDevice(ctx context.Context, userID uuid.UUID, token string) error
}

type Handler struct {
	svc     *Service
	hub     *Hub
	devices DeviceRegistry
}

// NewHandler creates the notification handler. The device registry may
// be nil when push is not configured.
func NewHandler(svc *Service, hub *Hub, devices DeviceRegistry) *Handler {
	return &Handler{svc: svc, hub: hub, devices: devices}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	notifications, err := h.svc.List(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	unread, err := h.svc.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	if err := h.svc.MarkAsRead(r.Context(), userID, id); err != nil {
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.svc.MarkAllAsRead(r.Context(), userID); err != nil {
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

type deviceRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

// RegisterDevice records a device token for push delivery.
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}
	if h.devices == nil {
		response.ServiceUnavailable(w, "Push notifications are not available")
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if err := h.devices.RegisterDevice(r.Context(), userID, req.Token); err != nil {
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

// UnregisterDevice drops a device token.
func (h *Handler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}
	if h.devices == nil {
		response.ServiceUnavailable(w, "Push notifications are not available")
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	if err := h.devices.UnregisterDevice(r.Context(), userID, req.Token); err != nil {
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Patch("/{id}/read", h.MarkAsRead)
	r.Patch("/read-all", h.MarkAllAsRead)
	r.Post("/devices", h.RegisterDevice)
	r.Delete("/devices", h.UnregisterDevice)
	return r
}
