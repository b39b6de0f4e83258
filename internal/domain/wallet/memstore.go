package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used in tests and single-instance
// development without Postgres. Per-user mutexes give the same
// serialization guarantee as the row lock in Repository.
type MemoryStore struct {
	mu      sync.Mutex // guards the maps themselves
	locks   map[uuid.UUID]*sync.Mutex
	wallets map[uuid.UUID]*Wallet
	entries map[uuid.UUID][]*Transaction // per user, insertion order
	banks   map[uuid.UUID][]*BankAccount
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:   make(map[uuid.UUID]*sync.Mutex),
		wallets: make(map[uuid.UUID]*Wallet),
		entries: make(map[uuid.UUID][]*Transaction),
		banks:   make(map[uuid.UUID][]*BankAccount),
	}
}

var _ Store = (*MemoryStore)(nil)

// userLock returns the per-user mutex, creating wallet state lazily.
func (m *MemoryStore) userLock(userID uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

func (m *MemoryStore) ensureLocked(userID uuid.UUID) *Wallet {
	w, ok := m.wallets[userID]
	if !ok {
		w = &Wallet{UserID: userID, Balance: 0, UpdatedAt: time.Now().UTC()}
		m.wallets[userID] = w
	}
	return w
}

func (m *MemoryStore) EnsureWallet(_ context.Context, userID uuid.UUID) error {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	m.ensureLocked(userID)
	return nil
}

func (m *MemoryStore) GetWallet(_ context.Context, userID uuid.UUID) (*Wallet, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	w, ok := m.wallets[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *MemoryStore) Apply(_ context.Context, userID uuid.UUID, entry *Transaction) (*Transaction, int64, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	w := m.ensureLocked(userID)

	if entry.Amount < 0 && w.Balance+entry.Amount < 0 {
		return nil, 0, ErrInsufficientBalance
	}

	stored := *entry
	stored.ID = uuid.New()
	stored.UserID = userID
	stored.CreatedAt = time.Now().UTC()
	stored.AppliedToBalance = stored.Status.MovesBalance()

	if stored.AppliedToBalance {
		w.Balance += stored.Amount
		w.UpdatedAt = stored.CreatedAt
	}
	m.entries[userID] = append(m.entries[userID], &stored)

	copied := stored
	return &copied, w.Balance, nil
}

func (m *MemoryStore) UpdateEntryStatus(_ context.Context, userID, entryID uuid.UUID, status TransactionStatus) (*Transaction, int64, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	w, ok := m.wallets[userID]
	if !ok {
		return nil, 0, ErrNotFound
	}

	for _, entry := range m.entries[userID] {
		if entry.ID != entryID {
			continue
		}
		entry.Status = status
		if status.MovesBalance() && !entry.AppliedToBalance {
			entry.AppliedToBalance = true
			w.Balance += entry.Amount
			w.UpdatedAt = time.Now().UTC()
		}
		copied := *entry
		return &copied, w.Balance, nil
	}
	return nil, 0, ErrNotFound
}

func (m *MemoryStore) GetEntry(_ context.Context, userID, entryID uuid.UUID) (*Transaction, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	for _, entry := range m.entries[userID] {
		if entry.ID == entryID {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListEntries(_ context.Context, userID uuid.UUID, f EntryFilter) ([]*Transaction, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var out []*Transaction
	for _, entry := range m.entries[userID] {
		if f.Type != "" && entry.Type != f.Type {
			continue
		}
		if f.Status != "" && entry.Status != f.Status {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}

	// newest first
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ListBankAccounts(_ context.Context, userID uuid.UUID) ([]*BankAccount, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	out := make([]*BankAccount, 0, len(m.banks[userID]))
	for _, acct := range m.banks[userID] {
		copied := *acct
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MemoryStore) AddBankAccount(_ context.Context, account *BankAccount) error {
	lock := m.userLock(account.UserID)
	lock.Lock()
	defer lock.Unlock()

	m.ensureLocked(account.UserID)

	existing := m.banks[account.UserID]
	if len(existing) >= MaxBankAccounts {
		return ErrBankAccountLimit
	}
	for _, acct := range existing {
		if acct.AccountNumber == account.AccountNumber && acct.BankCode == account.BankCode {
			return ErrBankAccountExists
		}
	}

	copied := *account
	m.banks[account.UserID] = append(existing, &copied)
	return nil
}

func (m *MemoryStore) RemoveBankAccount(_ context.Context, userID, accountID uuid.UUID) error {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	accounts := m.banks[userID]
	for i, acct := range accounts {
		if acct.ID == accountID {
			m.banks[userID] = append(accounts[:i], accounts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
