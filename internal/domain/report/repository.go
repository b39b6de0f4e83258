package report

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines report data access
type Repository interface {
	Create(ctx context.Context, rep *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Report, error)
	List(ctx context.Context, status Status, limit, offset int) ([]*Report, error)
	Resolve(ctx context.Context, id uuid.UUID, adminReply string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rep *Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, user_id, subject, message, reference_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rep.ID, rep.UserID, rep.Subject, rep.Message, rep.ReferenceID, rep.Status, rep.CreatedAt, rep.UpdatedAt)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	var rep Report
	err := r.db.GetContext(ctx, &rep, `SELECT * FROM reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Report, error) {
	var out []*Report
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return out, err
}

func (r *repository) List(ctx context.Context, status Status, limit, offset int) ([]*Report, error) {
	var out []*Report
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM reports
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	return out, err
}

func (r *repository) Resolve(ctx context.Context, id uuid.UUID, adminReply string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = $1, admin_reply = $2, resolved_at = now(), updated_at = now()
		WHERE id = $3 AND status = $4
	`, StatusResolved, adminReply, id, StatusOpen)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadyResolved
	}
	return nil
}
