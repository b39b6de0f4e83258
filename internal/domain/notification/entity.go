package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification by the event that produced it
type Kind string

const (
	KindWalletCredit  Kind = "wallet_credit"  // money arrived in the wallet
	KindWalletDebit   Kind = "wallet_debit"   // money left the wallet
	KindPayoutStatus  Kind = "payout_status"  // payment request transitioned
	KindEthStatus     Kind = "eth_status"     // ETH withdrawal transitioned
	KindMarketStatus  Kind = "market_status"  // submitted card transitioned
	KindSignupBonus   Kind = "signup_bonus"   // welcome credit
	KindAnnouncement  Kind = "announcement"   // admin broadcast
)

// Notification is one in-app message for a user
type Notification struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Kind        Kind       `db:"kind" json:"kind"`
	Message     string     `db:"message" json:"message"`
	Amount      int64      `db:"amount" json:"amount"` // absolute, kobo; 0 when not money-related
	ReferenceID uuid.UUID  `db:"reference_id" json:"reference_id,omitempty"`
	Link        string     `db:"link" json:"link,omitempty"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
