package wallet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/bankresolve"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type addBankAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,nuban"`
	BankCode      string `json:"bank_code" validate:"required,min=3,max=6"`
}

// Get returns the wallet view: balance, history and bank accounts.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	view, err := h.svc.GetView(r.Context(), userID, filterFromQuery(r))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, view)
}

// Transactions returns the filtered transaction history.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	entries, err := h.svc.History(r.Context(), userID, filterFromQuery(r))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"transactions": entries})
}

// AddBankAccount links a payout destination after resolving it.
func (h *Handler) AddBankAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req addBankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	account, err := h.svc.AddBankAccount(r.Context(), userID, req.AccountNumber, req.BankCode)
	if err != nil {
		switch {
		case errors.Is(err, bankresolve.ErrResolveFailed):
			response.BadRequest(w, "We could not verify this account. Check the number and bank.")
		case errors.Is(err, ErrBankAccountLimit):
			response.Conflict(w, "You can link at most 2 bank accounts")
		case errors.Is(err, ErrBankAccountExists):
			response.Conflict(w, "This bank account is already linked")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, account)
}

// RemoveBankAccount unlinks a payout destination.
func (h *Handler) RemoveBankAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid account id")
		return
	}

	if err := h.svc.RemoveBankAccount(r.Context(), userID, accountID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Bank account not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

func filterFromQuery(r *http.Request) EntryFilter {
	q := r.URL.Query()
	f := EntryFilter{
		Type:   TransactionType(q.Get("type")),
		Status: TransactionStatus(q.Get("status")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = offset
	}
	return f
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Get)
	r.Get("/transactions", h.Transactions)
	r.Post("/bank-accounts", h.AddBankAccount)
	r.Delete("/bank-accounts/{id}", h.RemoveBankAccount)
	return r
}
