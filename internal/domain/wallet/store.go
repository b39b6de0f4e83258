package wallet

import (
	"context"

	"github.com/google/uuid"
)

// EntryFilter narrows a transaction history query. Zero values match all.
type EntryFilter struct {
	Type   TransactionType
	Status TransactionStatus
	Limit  int
	Offset int
}

// Store is the ledger storage contract. Implementations must serialize
// balance mutations per user: Apply and UpdateEntryStatus on the same
// wallet must never interleave in a way that lets two mutations read the
// same stale balance. Mutations on different wallets are independent.
type Store interface {
	// EnsureWallet creates the wallet with balance 0 if it does not exist.
	// Idempotent and safe under concurrent calls for the same user.
	EnsureWallet(ctx context.Context, userID uuid.UUID) error

	// GetWallet returns the wallet or ErrNotFound.
	GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// Apply appends exactly one ledger entry, moving the balance in the
	// same critical section when the entry's status has an immediate
	// effect. A negative-amount entry that would drive the balance below
	// zero fails with ErrInsufficientBalance and leaves both the balance
	// and the entry list unchanged. The wallet is created lazily.
	// Returns the stored entry and the resulting balance.
	Apply(ctx context.Context, userID uuid.UUID, entry *Transaction) (*Transaction, int64, error)

	// UpdateEntryStatus sets the entry's status and applies its balance
	// effect at most once across all calls, tracked by the entry's
	// applied_to_balance flag. ErrNotFound if the wallet or entry is
	// absent. Deferred debits realized here may drive the balance
	// negative; that is the explicit bookkeeping path.
	UpdateEntryStatus(ctx context.Context, userID, entryID uuid.UUID, status TransactionStatus) (*Transaction, int64, error)

	// GetEntry returns a single ledger entry or ErrNotFound.
	GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*Transaction, error)

	// ListEntries returns entries newest first, filtered by f.
	ListEntries(ctx context.Context, userID uuid.UUID, f EntryFilter) ([]*Transaction, error)

	ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]*BankAccount, error)

	// AddBankAccount fails with ErrBankAccountLimit past MaxBankAccounts
	// and ErrBankAccountExists on a duplicate (account_number, bank_code).
	AddBankAccount(ctx context.Context, account *BankAccount) error

	RemoveBankAccount(ctx context.Context, userID, accountID uuid.UUID) error
}
