package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeCredit     TransactionType = "credit"
	TransactionTypeDebit      TransactionType = "debit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus mirrors the lifecycle of the referenced request.
// Only StatusCompleted and StatusApproved move the balance.
type TransactionStatus string

const (
	StatusPending            TransactionStatus = "pending"
	StatusApproved           TransactionStatus = "approved"
	StatusApprovedProcessing TransactionStatus = "approved-processing"
	StatusRejected           TransactionStatus = "rejected"
	StatusCompleted          TransactionStatus = "completed"
)

// MovesBalance reports whether an entry at this status has an immediate
// balance effect.
func (s TransactionStatus) MovesBalance() bool {
	return s == StatusCompleted || s == StatusApproved
}

// Valid reports whether the status is one of the recognized values.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusApprovedProcessing, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// ReferenceKind discriminates which request entity a ledger entry points at.
type ReferenceKind string

const (
	RefPaymentRequest ReferenceKind = "payment_request"
	RefEthWithdrawal  ReferenceKind = "eth_withdrawal"
	RefMarketItem     ReferenceKind = "market_item"
	RefUser           ReferenceKind = "user"
	RefOther          ReferenceKind = "other"
)

// Valid reports whether the kind is one of the recognized values.
func (k ReferenceKind) Valid() bool {
	switch k {
	case RefPaymentRequest, RefEthWithdrawal, RefMarketItem, RefUser, RefOther:
		return true
	}
	return false
}

// Reference is a weak, typed pointer from a ledger entry to the request
// that caused it. Lookup only, never ownership.
type Reference struct {
	Kind ReferenceKind `json:"kind"`
	ID   uuid.UUID     `json:"id"`
}

// Wallet holds one user's balance. All amounts are kobo (minor units);
// fractional naira never touches the ledger.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one immutable, append-only ledger entry. Only the status
// and applied_to_balance fields may change after creation.
type Transaction struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	UserID           uuid.UUID         `db:"user_id" json:"user_id"`
	Type             TransactionType   `db:"type" json:"type"`
	Amount           int64             `db:"amount" json:"amount"`
	Description      string            `db:"description" json:"description"`
	ReferenceID      uuid.UUID         `db:"reference_id" json:"reference_id"`
	ReferenceKind    ReferenceKind     `db:"reference_kind" json:"reference_kind"`
	Status           TransactionStatus `db:"status" json:"status"`
	AppliedToBalance bool              `db:"applied_to_balance" json:"-"`
	CreatedAt        time.Time         `db:"created_at" json:"timestamp"`
}

// BankAccount is a payout destination attached to a wallet. At most two
// per wallet, unique on (account_number, bank_code).
type BankAccount struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	BankCode      string    `db:"bank_code" json:"bank_code"`
	BankName      string    `db:"bank_name" json:"bank_name"`
	HolderName    string    `db:"holder_name" json:"holder_name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// MaxBankAccounts caps payout destinations per wallet.
const MaxBankAccounts = 2

// FormatNaira renders a kobo amount as a naira string, e.g. 150050 -> "1500.50".
func FormatNaira(kobo int64) string {
	return decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// NairaToKobo converts a decimal naira amount to kobo, truncating
// sub-kobo precision.
func NairaToKobo(naira decimal.Decimal) int64 {
	return naira.Mul(decimal.NewFromInt(100)).IntPart()
}
