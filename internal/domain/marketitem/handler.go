package marketitem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/catalog"
	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/storage"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

const maxUploadBytes = 8 << 20

// ImageQueue hands uploaded image keys to the background optimizer.
type ImageQueue interface {
	Enqueue(ctx context.Context, objectKey string) error
}

type Handler struct {
	svc     *Service
	storage storage.ObjectStorage
	images  ImageQueue
}

func NewHandler(svc *Service, store storage.ObjectStorage, images ImageQueue) *Handler {
	return &Handler{svc: svc, storage: store, images: images}
}

type createRequest struct {
	ProductID string   `json:"product_id" validate:"required,uuid"`
	FaceValue string   `json:"face_value" validate:"required"`
	Quantity  int      `json:"quantity" validate:"omitempty,gte=1,lte=100"`
	Comment   string   `json:"comment" validate:"omitempty,max=500"`
	ImageKeys []string `json:"image_keys" validate:"required,min=1,max=10"`
}

// Create submits a card for appraisal using image keys returned by
// UploadImage.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}
	faceValue, err := decimal.NewFromString(req.FaceValue)
	if err != nil || faceValue.IsNegative() || faceValue.IsZero() {
		response.BadRequest(w, "invalid face value")
		return
	}

	mi, err := h.svc.Create(r.Context(), userID, productID, faceValue, req.Quantity, req.Comment, req.ImageKeys)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			response.NotFound(w, "Product not found")
		case errors.Is(err, catalog.ErrInactive):
			response.UnprocessableEntity(w, "This product is not accepting submissions right now")
		case errors.Is(err, ErrNoImages):
			response.BadRequest(w, "At least one card image is required")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, mi)
}

// UploadImage stores one card image and returns its key and URL.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	data, contentType, err := storage.ValidateImage(file)
	if err != nil {
		response.BadRequest(w, "Only JPEG, PNG or WebP images up to 8MB are accepted")
		return
	}

	key := fmt.Sprintf("market-items/%s/%d-%s", userID, time.Now().UnixNano(), uuid.NewString()[:8])
	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), contentType); err != nil {
		response.InternalError(w)
		return
	}
	if h.images != nil {
		if err := h.images.Enqueue(r.Context(), key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to enqueue image for optimization")
		}
	}
	response.Created(w, map[string]string{
		"key": key,
		"url": h.storage.GetURL(key),
	})
}

// List returns the caller's submissions, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.svc.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"market_items": items})
}

// Get returns one of the caller's submissions.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	mi, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Market item not found")
			return
		}
		response.InternalError(w)
		return
	}
	if mi.UserID != userID {
		response.NotFound(w, "Market item not found")
		return
	}
	response.OK(w, mi)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Post("/images", h.UploadImage)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}
