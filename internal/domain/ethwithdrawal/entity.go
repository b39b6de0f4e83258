package ethwithdrawal

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the ETH withdrawal lifecycle.
//
//	pending -> processed
//	pending -> rejected
//
// Both targets are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusRejected  Status = "rejected"
)

// CanTransition reports whether target is a legal next status.
func (s Status) CanTransition(target Status) bool {
	if s != StatusPending {
		return false
	}
	return target == StatusProcessed || target == StatusRejected
}

// EthWithdrawal converts wallet naira into on-chain ETH. The naira
// amount leaves the wallet at creation; the ETH leg happens off-system
// and is only reported back through the processed transition.
type EthWithdrawal struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`

	// NairaAmount is the debit in kobo.
	NairaAmount int64  `db:"naira_amount" json:"naira_amount"`
	EthAddress  string `db:"eth_address" json:"eth_address"`

	// EthCalculated is naira / rate at creation time, kept for display
	// and audit. EthNetToSend is the fee-adjusted amount actually sent,
	// never used in ledger math.
	EthCalculated decimal.Decimal `db:"eth_calculated" json:"eth_calculated"`
	EthNetToSend  decimal.Decimal `db:"eth_net_to_send" json:"eth_net_to_send"`
	RateUsed      decimal.Decimal `db:"rate_used" json:"rate_used"`

	Status       Status         `db:"status" json:"status"`
	RejectReason sql.NullString `db:"reject_reason" json:"reject_reason,omitempty"`
	TxHash       sql.NullString `db:"tx_hash" json:"tx_hash,omitempty"`

	DebitEntryID uuid.UUID `db:"debit_entry_id" json:"debit_entry_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
