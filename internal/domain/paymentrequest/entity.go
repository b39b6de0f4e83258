package paymentrequest

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is the payout request lifecycle.
//
//	pending -> approved-processing -> completed
//	pending -> rejected
//
// completed and rejected are terminal.
type Status string

const (
	StatusPending            Status = "pending"
	StatusApprovedProcessing Status = "approved-processing"
	StatusRejected           Status = "rejected"
	StatusCompleted          Status = "completed"
)

// legalTransitions enumerates the admin-reachable target statuses per
// current status.
var legalTransitions = map[Status][]Status{
	StatusPending:            {StatusApprovedProcessing, StatusRejected},
	StatusApprovedProcessing: {StatusCompleted},
}

// CanTransition reports whether target is a legal next status.
func (s Status) CanTransition(target Status) bool {
	for _, t := range legalTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PaymentRequest is a bank-transfer payout. The amount leaves the wallet
// at creation, not at approval; rejection refunds it.
type PaymentRequest struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Amount int64     `db:"amount" json:"amount"` // kobo

	// Snapshot of the payout destination at request time
	AccountNumber string `db:"account_number" json:"account_number"`
	BankCode      string `db:"bank_code" json:"bank_code"`
	BankName      string `db:"bank_name" json:"bank_name"`
	HolderName    string `db:"holder_name" json:"holder_name"`

	Status       Status         `db:"status" json:"status"`
	RejectReason sql.NullString `db:"reject_reason" json:"reject_reason,omitempty"`

	// DebitEntryID links to the ledger entry created at submission so
	// transitions can mirror status onto it.
	DebitEntryID uuid.UUID `db:"debit_entry_id" json:"debit_entry_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
