package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a tradeable card type: a brand/denomination combination
// with the naira rate the exchange currently pays per unit of face
// value.
type Product struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Category string    `db:"category" json:"category"`
	Country  string    `db:"country" json:"country"`
	Currency string    `db:"currency" json:"currency"`

	// RatePerUnit is naira paid per unit of face value.
	RatePerUnit decimal.Decimal `db:"rate_per_unit" json:"rate_per_unit"`
	MinAmount   decimal.Decimal `db:"min_amount" json:"min_amount"`
	MaxAmount   decimal.Decimal `db:"max_amount" json:"max_amount"`

	ImageKey string `db:"image_key" json:"image_key,omitempty"`
	IsActive bool   `db:"is_active" json:"is_active"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProductUpdate carries a partial update; nil fields are left as-is.
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Country     *string          `json:"country"`
	Currency    *string          `json:"currency"`
	RatePerUnit *decimal.Decimal `json:"rate_per_unit"`
	MinAmount   *decimal.Decimal `json:"min_amount"`
	MaxAmount   *decimal.Decimal `json:"max_amount"`
	ImageKey    *string          `json:"image_key"`
	IsActive    *bool            `json:"is_active"`
}
