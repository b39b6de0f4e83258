package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationEmitter receives a best-effort signal after every balance
// mutation or status change. Implementations must not block the caller
// and must swallow their own failures; a lost notification never rolls
// back a ledger write.
type NotificationEmitter interface {
	Notify(userID uuid.UUID, amount int64, kind ReferenceKind, message string, referenceID uuid.UUID)
}

// BankAccountResolver looks up the holder and bank name for an account
// through the payment network.
type BankAccountResolver interface {
	Resolve(ctx context.Context, accountNumber, bankCode string) (holderName, bankName string, err error)
}

// ApplyResult is returned by every successful ledger mutation.
type ApplyResult struct {
	Transaction *Transaction `json:"transaction"`
	NewBalance  int64        `json:"new_balance"`
}

// View is the wallet as served to clients.
type View struct {
	Balance      int64          `json:"balance"`
	Transactions []*Transaction `json:"transactions"`
	BankAccounts []*BankAccount `json:"bank_accounts"`
}

// Service owns every balance mutation. No other component writes to a
// wallet; request lifecycles and admin handlers go through it.
type Service struct {
	store    Store
	emitter  NotificationEmitter
	resolver BankAccountResolver
	minDebit int64 // minimum debit magnitude in kobo
}

func NewService(store Store, emitter NotificationEmitter, resolver BankAccountResolver, minDebit int64) *Service {
	return &Service{store: store, emitter: emitter, resolver: resolver, minDebit: minDebit}
}

// MinDebit returns the configured minimum withdrawal amount in kobo.
func (s *Service) MinDebit() int64 {
	return s.minDebit
}

// ApplyTransaction validates and appends one ledger entry, moving the
// balance immediately when status is completed or approved. Validation
// failures come back as the package's sentinel errors; callers treat
// them as recoverable rejections, not faults.
func (s *Service) ApplyTransaction(ctx context.Context, userID uuid.UUID, amount int64, txType TransactionType, description string, ref Reference, status TransactionStatus) (*ApplyResult, error) {
	if !ref.Kind.Valid() {
		return nil, ErrInvalidReference
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if amount < 0 && -amount < s.minDebit {
		return nil, ErrBelowMinimum
	}

	entry := &Transaction{
		Type:          txType,
		Amount:        amount,
		Description:   description,
		ReferenceID:   ref.ID,
		ReferenceKind: ref.Kind,
		Status:        status,
	}

	stored, newBalance, err := s.store.Apply(ctx, userID, entry)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Str("type", string(txType)).
		Str("status", string(status)).
		Str("reference_kind", string(ref.Kind)).
		Msg("ledger entry applied")

	s.emit(userID, stored, description)

	return &ApplyResult{Transaction: stored, NewBalance: newBalance}, nil
}

// UpdateEntryStatus mirrors a request's lifecycle onto its ledger entry.
// The balance effect is applied at most once; repeating the same target
// status is a no-op on the balance.
func (s *Service) UpdateEntryStatus(ctx context.Context, userID, entryID uuid.UUID, status TransactionStatus) (*ApplyResult, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	entry, newBalance, err := s.store.UpdateEntryStatus(ctx, userID, entryID, status)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("entry_id", entryID.String()).
		Str("status", string(status)).
		Msg("ledger entry status updated")

	return &ApplyResult{Transaction: entry, NewBalance: newBalance}, nil
}

// GetView returns balance, history and payout accounts, creating the
// wallet lazily on first access.
func (s *Service) GetView(ctx context.Context, userID uuid.UUID, f EntryFilter) (*View, error) {
	if err := s.store.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}
	w, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListEntries(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.ListBankAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &View{Balance: w.Balance, Transactions: entries, BankAccounts: accounts}, nil
}

// History returns the filtered transaction list, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, f EntryFilter) ([]*Transaction, error) {
	if err := s.store.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, userID, f)
}

// AddBankAccount resolves the holder through the payment network, then
// links the account. At most two accounts per wallet.
func (s *Service) AddBankAccount(ctx context.Context, userID uuid.UUID, accountNumber, bankCode string) (*BankAccount, error) {
	holderName, bankName, err := s.resolver.Resolve(ctx, accountNumber, bankCode)
	if err != nil {
		return nil, err
	}

	account := &BankAccount{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
		BankName:      bankName,
		HolderName:    holderName,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.AddBankAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) RemoveBankAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	return s.store.RemoveBankAccount(ctx, userID, accountID)
}

// emit fires the post-mutation notification. The amount is reported as
// an absolute value; direction comes from the message.
func (s *Service) emit(userID uuid.UUID, entry *Transaction, message string) {
	if s.emitter == nil {
		return
	}
	amount := entry.Amount
	if amount < 0 {
		amount = -amount
	}
	if message == "" {
		if entry.Amount >= 0 {
			message = "₦" + FormatNaira(amount) + " was credited to your wallet"
		} else {
			message = "₦" + FormatNaira(amount) + " was debited from your wallet"
		}
	}
	s.emitter.Notify(userID, amount, entry.ReferenceKind, message, entry.ReferenceID)
}
