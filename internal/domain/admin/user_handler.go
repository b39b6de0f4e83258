package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/user"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

// ListUsers returns accounts newest first with optional search.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))

	users, err := h.users.List(r.Context(), q.Get("search"), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	total, err := h.users.Count(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*user.Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToPublic())
	}
	response.WithMeta(w, map[string]interface{}{"users": out}, response.Meta{
		Total:   total,
		Limit:   limit,
		HasNext: offset+len(out) < total,
	})
}

// GetUser returns one account together with its wallet view.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	if u == nil {
		response.NotFound(w, "User not found")
		return
	}

	view, err := h.wallets.GetView(r.Context(), id, wallet.EntryFilter{Limit: 20})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{
		"user":   u.ToPublic(),
		"wallet": view,
	})
}

func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

func (h *Handler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

func (h *Handler) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}
	if err := h.users.SetBanned(r.Context(), id, banned); err != nil {
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}

type grantRequest struct {
	Amount      int64  `json:"amount" validate:"required"` // kobo, signed
	Description string `json:"description" validate:"required,max=200"`
}

// GrantWalletAdjustment credits or debits a wallet manually, e.g. a
// goodwill credit or a correction. Debits go through the same rules as
// any other debit, minimum and balance floor included.
func (h *Handler) GrantWalletAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	txType := wallet.TransactionTypeCredit
	if req.Amount < 0 {
		txType = wallet.TransactionTypeDebit
	}

	res, err := h.wallets.ApplyTransaction(r.Context(), id, req.Amount, txType, req.Description,
		wallet.Reference{Kind: wallet.RefOther, ID: uuid.New()}, wallet.StatusCompleted)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientBalance):
			response.UnprocessableEntity(w, "Adjustment would drive the balance negative")
		case errors.Is(err, wallet.ErrBelowMinimum):
			response.UnprocessableEntity(w, "Debit is below the minimum amount of ₦"+wallet.FormatNaira(h.wallets.MinDebit()))
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, res)
}
