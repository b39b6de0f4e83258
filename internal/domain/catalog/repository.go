package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines product data access
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, activeOnly bool, category string, limit, offset int) ([]*Product, error)
	Update(ctx context.Context, id uuid.UUID, u ProductUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products
			(id, name, category, country, currency, rate_per_unit, min_amount, max_amount, image_key, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.Name, p.Category, p.Country, p.Currency, p.RatePerUnit, p.MinAmount, p.MaxAmount,
		p.ImageKey, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool, category string, limit, offset int) ([]*Product, error) {
	var out []*Product
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM products
		WHERE ($1 = false OR is_active)
		  AND ($2 = '' OR category = $2)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`, activeOnly, category, limit, offset)
	return out, err
}

// Update applies only the fields set in u.
func (r *repository) Update(ctx context.Context, id uuid.UUID, u ProductUpdate) error {
	set := []string{"updated_at = now()"}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.Country != nil {
		add("country", *u.Country)
	}
	if u.Currency != nil {
		add("currency", *u.Currency)
	}
	if u.RatePerUnit != nil {
		add("rate_per_unit", *u.RatePerUnit)
	}
	if u.MinAmount != nil {
		add("min_amount", *u.MinAmount)
	}
	if u.MaxAmount != nil {
		add("max_amount", *u.MaxAmount)
	}
	if u.ImageKey != nil {
		add("image_key", *u.ImageKey)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
