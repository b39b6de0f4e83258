package marketitem

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Status is the appraisal state of a submitted card. Unlike the payout
// lifecycles it has no terminal lock: admins re-set it freely while
// sorting out a submission, and the Credited flag carries the
// exactly-once guarantee instead.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusCancel     Status = "CANCEL"
)

// Valid reports whether the status is one of the admin-settable values.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusDone, StatusCancel:
		return true
	}
	return false
}

// MarketItem is one submitted gift card awaiting appraisal.
type MarketItem struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`

	ProductID   uuid.UUID `db:"product_id" json:"product_id"`
	ProductName string    `db:"product_name" json:"product_name"`

	FaceValue decimal.Decimal `db:"face_value" json:"face_value"`
	Quantity  int             `db:"quantity" json:"quantity"`

	// CalculatedTotalAmount is the naira payout quoted at submission,
	// stored as a string and parsed only when the item is marked DONE.
	// A value that fails to parse credits 0, it does not fail the
	// transition.
	CalculatedTotalAmount string `db:"calculated_total_amount" json:"calculated_total_amount"`

	Comment   string         `db:"comment" json:"comment,omitempty"`
	ImageKeys pq.StringArray `db:"image_keys" json:"image_keys"`

	// Status is empty until an admin first touches the item.
	Status         Status         `db:"status" json:"status,omitempty"`
	CancelReason   sql.NullString `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CancelImageKey sql.NullString `db:"cancel_image_key" json:"cancel_image_key,omitempty"`

	// Credited guards against a repeated DONE re-crediting the wallet.
	Credited      bool          `db:"credited" json:"-"`
	CreditEntryID uuid.NullUUID `db:"credit_entry_id" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
