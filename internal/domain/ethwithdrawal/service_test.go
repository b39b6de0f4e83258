package ethwithdrawal_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/ethwithdrawal"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/pkg/rates"
)

const testMinDebit = 1000

const testAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

// fixedRate returns a constant ETH/NGN rate, or ErrRateUnavailable
// when down.
type fixedRate struct {
	rate decimal.Decimal
	down bool
}

func (f *fixedRate) EthToNaira(context.Context) (decimal.Decimal, error) {
	if f.down {
		return decimal.Zero, rates.ErrRateUnavailable
	}
	return f.rate, nil
}

type memRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*ethwithdrawal.EthWithdrawal
}

func newMemRepo() *memRepo {
	return &memRepo{requests: make(map[uuid.UUID]*ethwithdrawal.EthWithdrawal)}
}

func (r *memRepo) Create(_ context.Context, ew *ethwithdrawal.EthWithdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ew
	r.requests[ew.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*ethwithdrawal.EthWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ew, ok := r.requests[id]
	if !ok {
		return nil, ethwithdrawal.ErrNotFound
	}
	cp := *ew
	return &cp, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*ethwithdrawal.EthWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ethwithdrawal.EthWithdrawal
	for _, ew := range r.requests {
		if ew.UserID == userID {
			cp := *ew
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) List(_ context.Context, status ethwithdrawal.Status, _, _ int) ([]*ethwithdrawal.EthWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ethwithdrawal.EthWithdrawal
	for _, ew := range r.requests {
		if status == "" || ew.Status == status {
			cp := *ew
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status ethwithdrawal.Status, reason, txHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ew, ok := r.requests[id]
	if !ok {
		return ethwithdrawal.ErrNotFound
	}
	ew.Status = status
	ew.RejectReason.String = reason
	ew.RejectReason.Valid = reason != ""
	ew.TxHash.String = txHash
	ew.TxHash.Valid = txHash != ""
	return nil
}

func newTestService(t *testing.T, rate *fixedRate) (*ethwithdrawal.Service, *wallet.Service, *wallet.MemoryStore) {
	t.Helper()
	store := wallet.NewMemoryStore()
	wallets := wallet.NewService(store, nil, nil, testMinDebit)
	svc := ethwithdrawal.NewService(newMemRepo(), wallets, rate, nil)
	return svc, wallets, store
}

func seedBalance(t *testing.T, wallets *wallet.Service, userID uuid.UUID, amount int64) {
	t.Helper()
	_, err := wallets.ApplyTransaction(context.Background(), userID, amount, wallet.TransactionTypeCredit,
		"seed", wallet.Reference{Kind: wallet.RefOther, ID: uuid.New()}, wallet.StatusCompleted)
	if err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}
}

func walletBalance(t *testing.T, store *wallet.MemoryStore, userID uuid.UUID) int64 {
	t.Helper()
	w, err := store.GetWallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	return w.Balance
}

func TestCreateEnforcesBalanceFloor(t *testing.T) {
	rate := &fixedRate{rate: decimal.NewFromInt(5_000_000)}
	svc, wallets, store := newTestService(t, rate)
	userID := uuid.New()
	seedBalance(t, wallets, userID, 10000)

	_, err := svc.Create(context.Background(), userID, 12000, testAddress, decimal.Zero)
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := walletBalance(t, store, userID); got != 10000 {
		t.Fatalf("balance changed by rejected create: got %d", got)
	}

	ew, err := svc.Create(context.Background(), userID, 8000, testAddress, decimal.Zero)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := walletBalance(t, store, userID); got != 2000 {
		t.Fatalf("balance after create = %d, want 2000", got)
	}

	// 8000 kobo = ₦80, rate ₦5,000,000 per ETH
	want := decimal.NewFromInt(80).DivRound(decimal.NewFromInt(5_000_000), 18)
	if !ew.EthCalculated.Equal(want) {
		t.Fatalf("eth_calculated = %s, want %s", ew.EthCalculated, want)
	}
	if !ew.RateUsed.Equal(rate.rate) {
		t.Fatalf("rate_used = %s, want %s", ew.RateUsed, rate.rate)
	}
}

func TestCreateFailsWhenRateUnavailable(t *testing.T) {
	svc, wallets, store := newTestService(t, &fixedRate{down: true})
	userID := uuid.New()
	seedBalance(t, wallets, userID, 10000)

	_, err := svc.Create(context.Background(), userID, 5000, testAddress, decimal.Zero)
	if !errors.Is(err, rates.ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
	// no debit without a priced request
	if got := walletBalance(t, store, userID); got != 10000 {
		t.Fatalf("balance changed by failed create: got %d", got)
	}
	entries, err := store.ListEntries(context.Background(), userID, wallet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the seed entry, got %d", len(entries))
	}
}

func TestRejectRefunds(t *testing.T) {
	svc, wallets, store := newTestService(t, &fixedRate{rate: decimal.NewFromInt(5_000_000)})
	userID := uuid.New()
	seedBalance(t, wallets, userID, 10000)

	ew, err := svc.Create(context.Background(), userID, 8000, testAddress, decimal.Zero)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Transition(context.Background(), ew.ID, ethwithdrawal.StatusRejected, "", ""); !errors.Is(err, ethwithdrawal.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}

	ew, err = svc.Transition(context.Background(), ew.ID, ethwithdrawal.StatusRejected, "address flagged", "")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got := walletBalance(t, store, userID); got != 10000 {
		t.Fatalf("balance after reject = %d, want 10000", got)
	}

	// terminal: no further transitions
	if _, err := svc.Transition(context.Background(), ew.ID, ethwithdrawal.StatusProcessed, "", "0xabc"); !errors.Is(err, ethwithdrawal.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestProcessedHasNoBalanceEffect(t *testing.T) {
	svc, wallets, store := newTestService(t, &fixedRate{rate: decimal.NewFromInt(5_000_000)})
	userID := uuid.New()
	seedBalance(t, wallets, userID, 10000)

	ew, err := svc.Create(context.Background(), userID, 8000, testAddress, decimal.NewFromFloat(0.0000158))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ew, err = svc.Transition(context.Background(), ew.ID, ethwithdrawal.StatusProcessed, "", "0xdeadbeef")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if ew.Status != ethwithdrawal.StatusProcessed {
		t.Fatalf("status = %s, want processed", ew.Status)
	}
	if got := walletBalance(t, store, userID); got != 2000 {
		t.Fatalf("balance after processed = %d, want 2000", got)
	}
}
