package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/ethwithdrawal"
	"github.com/giftbay/giftbay-api/internal/domain/marketitem"
	"github.com/giftbay/giftbay-api/internal/domain/paymentrequest"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

func (h *Handler) ListPaymentRequests(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	requests, err := h.paymentRequests.List(r.Context(), paymentrequest.Status(r.URL.Query().Get("status")), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"payment_requests": requests})
}

type paymentRequestTransition struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// TransitionPaymentRequest applies one admin status change to a payout.
func (h *Handler) TransitionPaymentRequest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	var req paymentRequestTransition
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	pr, err := h.paymentRequests.Transition(r.Context(), id, paymentrequest.Status(req.Status), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, paymentrequest.ErrNotFound):
			response.NotFound(w, "Payment request not found")
		case errors.Is(err, paymentrequest.ErrInvalidStatus):
			response.BadRequest(w, "Unknown payment request status")
		case errors.Is(err, paymentrequest.ErrIllegalTransition):
			response.Conflict(w, "Payment request cannot move to this status")
		case errors.Is(err, paymentrequest.ErrMissingReason):
			response.BadRequest(w, "A reason is required to reject a payment request")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, pr)
}

func (h *Handler) ListEthWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	withdrawals, err := h.ethWithdrawals.List(r.Context(), ethwithdrawal.Status(r.URL.Query().Get("status")), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"eth_withdrawals": withdrawals})
}

type ethWithdrawalTransition struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
	TxHash string `json:"tx_hash" validate:"omitempty,max=100"`
}

// TransitionEthWithdrawal applies one admin status change to an ETH
// withdrawal.
func (h *Handler) TransitionEthWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	var req ethWithdrawalTransition
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	ew, err := h.ethWithdrawals.Transition(r.Context(), id, ethwithdrawal.Status(req.Status), req.Reason, req.TxHash)
	if err != nil {
		switch {
		case errors.Is(err, ethwithdrawal.ErrNotFound):
			response.NotFound(w, "ETH withdrawal not found")
		case errors.Is(err, ethwithdrawal.ErrInvalidStatus):
			response.BadRequest(w, "Unknown ETH withdrawal status")
		case errors.Is(err, ethwithdrawal.ErrIllegalTransition):
			response.Conflict(w, "ETH withdrawal cannot move to this status")
		case errors.Is(err, ethwithdrawal.ErrMissingReason):
			response.BadRequest(w, "A reason is required to reject an ETH withdrawal")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, ew)
}

func (h *Handler) ListMarketItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := h.marketItems.List(r.Context(), marketitem.Status(r.URL.Query().Get("status")), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"market_items": items})
}

type marketItemTransition struct {
	Status         string `json:"status" validate:"required"`
	CancelReason   string `json:"cancel_reason" validate:"omitempty,max=500"`
	CancelImageKey string `json:"cancel_image_key" validate:"omitempty,max=300"`
}

// TransitionMarketItem sets the appraisal status of a submission.
func (h *Handler) TransitionMarketItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	var req marketItemTransition
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	mi, err := h.marketItems.Transition(r.Context(), id, marketitem.Status(req.Status), req.CancelReason, req.CancelImageKey)
	if err != nil {
		switch {
		case errors.Is(err, marketitem.ErrNotFound):
			response.NotFound(w, "Market item not found")
		case errors.Is(err, marketitem.ErrInvalidStatus):
			response.BadRequest(w, "Unknown market item status")
		case errors.Is(err, marketitem.ErrMissingReason):
			response.BadRequest(w, "A reason is required to cancel a market item")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, mi)
}
