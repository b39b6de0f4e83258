package ethwithdrawal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/rates"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	NairaAmount  int64  `json:"naira_amount" validate:"required,gt=0"` // kobo
	EthAddress   string `json:"eth_address" validate:"required,eth_address"`
	EthNetToSend string `json:"eth_net_to_send" validate:"omitempty"`
}

// Create submits an ETH withdrawal priced at the current rate.
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
	ethNet := decimal.Zero
	if req.EthNetToSend != "" {
		var err error
		if ethNet, err = decimal.NewFromString(req.EthNetToSend); err != nil {
			response.BadRequest(w, "invalid eth_net_to_send")
			return
		}
	}

	ew, err := h.svc.Create(r.Context(), userID, req.NairaAmount, req.EthAddress, ethNet)
	if err != nil {
		switch {
		case errors.Is(err, rates.ErrRateUnavailable):
			response.ServiceUnavailable(w, "ETH rate is unavailable right now, try again shortly")
		case errors.Is(err, wallet.ErrBelowMinimum):
			response.UnprocessableEntity(w, "Minimum withdrawal amount is ₦"+wallet.FormatNaira(h.svc.wallets.MinDebit()))
		case errors.Is(err, wallet.ErrInsufficientBalance):
			response.UnprocessableEntity(w, "Insufficient wallet balance")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, ew)
}

// List returns the caller's ETH withdrawals, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	withdrawals, err := h.svc.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"eth_withdrawals": withdrawals})
}

// Get returns one of the caller's ETH withdrawals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	ew, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "ETH withdrawal not found")
			return
		}
		response.InternalError(w)
		return
	}
	if ew.UserID != userID {
		response.NotFound(w, "ETH withdrawal not found")
		return
	}
	response.OK(w, ew)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}
