package ethwithdrawal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines eth withdrawal data access
type Repository interface {
	Create(ctx context.Context, ew *EthWithdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*EthWithdrawal, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*EthWithdrawal, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*EthWithdrawal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, rejectReason, txHash string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ew *EthWithdrawal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO eth_withdrawals
			(id, user_id, naira_amount, eth_address, eth_calculated, eth_net_to_send, rate_used, status, debit_entry_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, ew.ID, ew.UserID, ew.NairaAmount, ew.EthAddress, ew.EthCalculated, ew.EthNetToSend, ew.RateUsed,
		ew.Status, ew.DebitEntryID, ew.CreatedAt, ew.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*EthWithdrawal, error) {
	var ew EthWithdrawal
	err := r.db.GetContext(ctx, &ew, `SELECT * FROM eth_withdrawals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ew, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*EthWithdrawal, error) {
	var out []*EthWithdrawal
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM eth_withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return out, err
}

func (r *repository) List(ctx context.Context, status Status, limit, offset int) ([]*EthWithdrawal, error) {
	var out []*EthWithdrawal
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM eth_withdrawals
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	return out, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, rejectReason, txHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE eth_withdrawals
		SET status = $1,
		    reject_reason = NULLIF($2, ''),
		    tx_hash = NULLIF($3, ''),
		    updated_at = now()
		WHERE id = $4
	`, status, rejectReason, txHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
