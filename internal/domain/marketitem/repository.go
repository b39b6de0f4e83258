package marketitem

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines market item data access
type Repository interface {
	Create(ctx context.Context, mi *MarketItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*MarketItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MarketItem, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*MarketItem, error)
	// SaveTransition persists the item's status fields and credit
	// bookkeeping in one statement.
	SaveTransition(ctx context.Context, mi *MarketItem) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, mi *MarketItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO market_items
			(id, user_id, product_id, product_name, face_value, quantity, calculated_total_amount, comment, image_keys, credited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, mi.ID, mi.UserID, mi.ProductID, mi.ProductName, mi.FaceValue, mi.Quantity,
		mi.CalculatedTotalAmount, mi.Comment, mi.ImageKeys, mi.Credited, mi.CreatedAt, mi.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*MarketItem, error) {
	var mi MarketItem
	err := r.db.GetContext(ctx, &mi, `SELECT * FROM market_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mi, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MarketItem, error) {
	var out []*MarketItem
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM market_items
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return out, err
}

func (r *repository) List(ctx context.Context, status Status, limit, offset int) ([]*MarketItem, error) {
	var out []*MarketItem
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM market_items
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	return out, err
}

func (r *repository) SaveTransition(ctx context.Context, mi *MarketItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE market_items
		SET status = $1,
		    cancel_reason = $2,
		    cancel_image_key = $3,
		    credited = $4,
		    credit_entry_id = $5,
		    updated_at = now()
		WHERE id = $6
	`, mi.Status, mi.CancelReason, mi.CancelImageKey, mi.Credited, mi.CreditEntryID, mi.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
