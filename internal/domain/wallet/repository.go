package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the Postgres-backed Store. Per-user serialization is a
// SELECT ... FOR UPDATE row lock on the wallet inside one transaction.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

func (r *Repository) EnsureWallet(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *Repository) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.db.GetContext(ctx, &w, `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// lockWallet takes the per-user row lock, creating the wallet if needed,
// and returns the current balance.
func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return balance, err
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE user_id = $2`, balance, userID)
	return err
}

func (r *Repository) Apply(ctx context.Context, userID uuid.UUID, entry *Transaction) (*Transaction, int64, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	balance, err := r.lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, 0, err
	}

	if entry.Amount < 0 && balance+entry.Amount < 0 {
		return nil, 0, ErrInsufficientBalance
	}

	stored := *entry
	stored.ID = uuid.New()
	stored.UserID = userID
	stored.CreatedAt = time.Now().UTC()
	stored.AppliedToBalance = stored.Status.MovesBalance()

	newBalance := balance
	if stored.AppliedToBalance {
		newBalance = balance + stored.Amount
		if err := r.updateBalance(ctx, tx, userID, newBalance); err != nil {
			return nil, 0, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_transactions
			(id, user_id, type, amount, description, reference_id, reference_kind, status, applied_to_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, stored.ID, stored.UserID, stored.Type, stored.Amount, stored.Description,
		stored.ReferenceID, stored.ReferenceKind, stored.Status, stored.AppliedToBalance, stored.CreatedAt,
	); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return &stored, newBalance, nil
}

func (r *Repository) UpdateEntryStatus(ctx context.Context, userID, entryID uuid.UUID, status TransactionStatus) (*Transaction, int64, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var balance int64
	err = tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	var entry Transaction
	err = tx.GetContext(ctx, &entry, `
		SELECT id, user_id, type, amount, description, reference_id, reference_kind, status, applied_to_balance, created_at
		FROM wallet_transactions
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, entryID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	entry.Status = status
	newBalance := balance
	if status.MovesBalance() && !entry.AppliedToBalance {
		entry.AppliedToBalance = true
		newBalance = balance + entry.Amount
		if err := r.updateBalance(ctx, tx, userID, newBalance); err != nil {
			return nil, 0, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE wallet_transactions
		SET status = $1, applied_to_balance = $2
		WHERE id = $3
	`, entry.Status, entry.AppliedToBalance, entry.ID); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return &entry, newBalance, nil
}

func (r *Repository) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*Transaction, error) {
	var entry Transaction
	err := r.db.GetContext(ctx, &entry, `
		SELECT id, user_id, type, amount, description, reference_id, reference_kind, status, applied_to_balance, created_at
		FROM wallet_transactions
		WHERE id = $1 AND user_id = $2
	`, entryID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) ListEntries(ctx context.Context, userID uuid.UUID, f EntryFilter) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, description, reference_id, reference_kind, status, applied_to_balance, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		  AND ($2 = '' OR type = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	var entries []*Transaction
	err := r.db.SelectContext(ctx, &entries, query, userID, string(f.Type), string(f.Status), limit, f.Offset)
	return entries, err
}

func (r *Repository) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]*BankAccount, error) {
	var accounts []*BankAccount
	err := r.db.SelectContext(ctx, &accounts, `
		SELECT id, user_id, account_number, bank_code, bank_name, holder_name, created_at
		FROM wallet_bank_accounts
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	return accounts, err
}

func (r *Repository) AddBankAccount(ctx context.Context, account *BankAccount) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := r.lockWallet(ctx, tx, account.UserID); err != nil {
		return err
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM wallet_bank_accounts WHERE user_id = $1`, account.UserID); err != nil {
		return err
	}
	if count >= MaxBankAccounts {
		return ErrBankAccountLimit
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_bank_accounts (id, user_id, account_number, bank_code, bank_name, holder_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, account.ID, account.UserID, account.AccountNumber, account.BankCode, account.BankName, account.HolderName, account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrBankAccountExists
		}
		return err
	}

	return tx.Commit()
}

func (r *Repository) RemoveBankAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wallet_bank_accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
