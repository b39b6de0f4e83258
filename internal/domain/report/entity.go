package report

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Report is a user-filed dispute or complaint, optionally pointing at
// a submission or withdrawal.
type Report struct {
	ID      uuid.UUID `db:"id" json:"id"`
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	Subject string    `db:"subject" json:"subject"`
	Message string    `db:"message" json:"message"`

	ReferenceID uuid.NullUUID `db:"reference_id" json:"reference_id,omitempty"`

	Status     Status         `db:"status" json:"status"`
	AdminReply sql.NullString `db:"admin_reply" json:"admin_reply,omitempty"`
	ResolvedAt sql.NullTime   `db:"resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
