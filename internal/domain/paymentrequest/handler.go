package paymentrequest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/middleware"
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
	Amount        int64  `json:"amount" validate:"required,gt=0"` // kobo
	BankAccountID string `json:"bank_account_id" validate:"required,uuid"`
}

// Create submits a withdrawal to a linked bank account.
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
	accountID, err := uuid.Parse(req.BankAccountID)
	if err != nil {
		response.BadRequest(w, "invalid bank account id")
		return
	}

	pr, err := h.svc.Create(r.Context(), userID, req.Amount, accountID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrBelowMinimum):
			response.UnprocessableEntity(w, "Minimum withdrawal amount is ₦"+wallet.FormatNaira(h.svc.wallets.MinDebit()))
		case errors.Is(err, wallet.ErrInsufficientBalance):
			response.UnprocessableEntity(w, "Insufficient wallet balance")
		case errors.Is(err, ErrNoSuchBankAccount):
			response.BadRequest(w, "Bank account is not linked to your wallet")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, pr)
}

// List returns the caller's withdrawal requests, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	requests, err := h.svc.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"payment_requests": requests})
}

// Get returns one of the caller's withdrawal requests.
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

	pr, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Payment request not found")
			return
		}
		response.InternalError(w)
		return
	}
	if pr.UserID != userID {
		response.NotFound(w, "Payment request not found")
		return
	}
	response.OK(w, pr)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}
