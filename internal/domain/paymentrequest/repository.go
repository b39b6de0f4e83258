package paymentrequest

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment request data access
type Repository interface {
	Create(ctx context.Context, pr *PaymentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*PaymentRequest, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*PaymentRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, rejectReason string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, pr *PaymentRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_requests
			(id, user_id, amount, account_number, bank_code, bank_name, holder_name, status, debit_entry_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, pr.ID, pr.UserID, pr.Amount, pr.AccountNumber, pr.BankCode, pr.BankName, pr.HolderName,
		pr.Status, pr.DebitEntryID, pr.CreatedAt, pr.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	var pr PaymentRequest
	err := r.db.GetContext(ctx, &pr, `SELECT * FROM payment_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*PaymentRequest, error) {
	var out []*PaymentRequest
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM payment_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return out, err
}

func (r *repository) List(ctx context.Context, status Status, limit, offset int) ([]*PaymentRequest, error) {
	var out []*PaymentRequest
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM payment_requests
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	return out, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, rejectReason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_requests
		SET status = $1,
		    reject_reason = NULLIF($2, ''),
		    updated_at = now()
		WHERE id = $3
	`, status, rejectReason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
