package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/catalog"
	"github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/validator"
)

// ListProducts returns the full catalog, inactive products included.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	products, err := h.products.List(r.Context(), false, r.URL.Query().Get("category"), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"products": products})
}

type createProductRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,max=50"`
	Country     string `json:"country" validate:"required,max=50"`
	Currency    string `json:"currency" validate:"required,len=3"`
	RatePerUnit string `json:"rate_per_unit" validate:"required"`
	MinAmount   string `json:"min_amount" validate:"omitempty"`
	MaxAmount   string `json:"max_amount" validate:"omitempty"`
	ImageKey    string `json:"image_key" validate:"omitempty,max=300"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return
	}

	rate, err := decimal.NewFromString(req.RatePerUnit)
	if err != nil || rate.IsNegative() {
		response.BadRequest(w, "invalid rate_per_unit")
		return
	}
	minAmount, maxAmount := decimal.Zero, decimal.Zero
	if req.MinAmount != "" {
		if minAmount, err = decimal.NewFromString(req.MinAmount); err != nil {
			response.BadRequest(w, "invalid min_amount")
			return
		}
	}
	if req.MaxAmount != "" {
		if maxAmount, err = decimal.NewFromString(req.MaxAmount); err != nil {
			response.BadRequest(w, "invalid max_amount")
			return
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	p, err := h.products.Create(r.Context(), &catalog.Product{
		Name:        req.Name,
		Category:    req.Category,
		Country:     req.Country,
		Currency:    req.Currency,
		RatePerUnit: rate,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
		ImageKey:    req.ImageKey,
		IsActive:    active,
	})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	var u catalog.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	p, err := h.products.Update(r.Context(), id, u)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.NotFound(w, "Product not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}
