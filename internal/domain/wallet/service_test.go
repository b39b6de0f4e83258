package wallet_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

const testMinDebit = 1000

func newTestService() (*wallet.Service, *wallet.MemoryStore) {
	store := wallet.NewMemoryStore()
	svc := wallet.NewService(store, nil, nil, testMinDebit)
	return svc, store
}

func mustCredit(t *testing.T, svc *wallet.Service, userID uuid.UUID, amount int64) {
	t.Helper()
	_, err := svc.ApplyTransaction(context.Background(), userID, amount, wallet.TransactionTypeCredit,
		"seed", wallet.Reference{Kind: wallet.RefOther, ID: uuid.New()}, wallet.StatusCompleted)
	if err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}
}

func balance(t *testing.T, store *wallet.MemoryStore, userID uuid.UUID) int64 {
	t.Helper()
	w, err := store.GetWallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	return w.Balance
}

func TestDebitNeverDrivesBalanceNegative(t *testing.T) {
	svc, store := newTestService()
	userID := uuid.New()

	mustCredit(t, svc, userID, 500)

	_, err := svc.ApplyTransaction(context.Background(), userID, -1500, wallet.TransactionTypeDebit,
		"too big", wallet.Reference{Kind: wallet.RefPaymentRequest, ID: uuid.New()}, wallet.StatusCompleted)
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if got := balance(t, store, userID); got != 500 {
		t.Fatalf("balance changed by rejected debit: got %d, want 500", got)
	}

	// the rejected call must not leave an entry behind
	entries, err := store.ListEntries(context.Background(), userID, wallet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the seed entry, got %d entries", len(entries))
	}
}

func TestEveryMutationAppendsExactlyOneEntry(t *testing.T) {
	svc, store := newTestService()
	userID := uuid.New()
	ref := wallet.Reference{Kind: wallet.RefMarketItem, ID: uuid.New()}

	res, err := svc.ApplyTransaction(context.Background(), userID, 2500, wallet.TransactionTypeCredit,
		"card approved", ref, wallet.StatusCompleted)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	entries, err := store.ListEntries(context.Background(), userID, wallet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Amount != 2500 || entry.Type != wallet.TransactionTypeCredit ||
		entry.Description != "card approved" || entry.ReferenceID != ref.ID ||
		entry.ReferenceKind != wallet.RefMarketItem || entry.Status != wallet.StatusCompleted {
		t.Fatalf("stored entry does not match call arguments: %+v", entry)
	}
	if res.NewBalance != 2500 {
		t.Fatalf("expected new balance 2500, got %d", res.NewBalance)
	}
}

func TestPendingEntryDoesNotMoveBalance(t *testing.T) {
	svc, store := newTestService()
	userID := uuid.New()

	res, err := svc.ApplyTransaction(context.Background(), userID, 200, wallet.TransactionTypeCredit,
		"pending credit", wallet.Reference{Kind: wallet.RefOther, ID: uuid.New()}, wallet.StatusPending)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if res.NewBalance != 0 {
		t.Fatalf("pending entry moved balance: %d", res.NewBalance)
	}
	if got := balance(t, store, userID); got != 0 {
		t.Fatalf("expected balance 0 while pending, got %d", got)
	}
}

func TestUpdateEntryStatusAppliesEffectExactlyOnce(t *testing.T) {
	svc, store := newTestService()
	userID := uuid.New()

	res, err := svc.ApplyTransaction(context.Background(), userID, 200, wallet.TransactionTypeCredit,
		"pending credit", wallet.Reference{Kind: wallet.RefOther, ID: uuid.New()}, wallet.StatusPending)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	entryID := res.Transaction.ID

	first, err := svc.UpdateEntryStatus(context.Background(), userID, entryID, wallet.StatusCompleted)
	if err != nil {
		t.Fatalf("first status update failed: %v", err)
	}
	if first.NewBalance != 200 {
		t.Fatalf("expected balance 200 after first completion, got %d", first.NewBalance)
	}

	second, err := svc.UpdateEntryStatus(context.Background(), userID, entryID, wallet.StatusCompleted)
	if err != nil {
		t.Fatalf("second status update failed: %v", err)
	}
	if second.NewBalance != 200 {
		t.Fatalf("duplicate completion double-applied: balance %d", second.NewBalance)
	}
	if got := balance(t, store, userID); got != 200 {
		t.Fatalf("expected balance 200, got %d", got)
	}
}

func TestMinimumWithdrawalEnforced(t *testing.T) {
	svc, store := newTestService()
	userID := uuid.New()

	mustCredit(t, svc, userID, 100000)

	_, err := svc.ApplyTransaction(context.Background(), userID, -500, wallet.TransactionTypeDebit,
		"tiny withdrawal", wallet.Reference{Kind: wallet.RefPaymentRequest, ID: uuid.New()}, wallet.StatusCompleted)
	if !errors.Is(err, wallet.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	if got := balance(t, store, userID); got != 100000 {
		t.Fatalf("rejected debit changed balance: %d", got)
	}
}

func TestUnrecognizedReferenceKindRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ApplyTransaction(context.Background(), uuid.New(), 2000, wallet.TransactionTypeCredit,
		"bad ref", wallet.Reference{Kind: "giftcard", ID: uuid.New()}, wallet.StatusCompleted)
	if !errors.Is(err, wallet.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestUpdateEntryStatusNotFound(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	mustCredit(t, svc, userID, 100)

	_, err := svc.UpdateEntryStatus(context.Background(), userID, uuid.New(), wallet.StatusCompleted)
	if !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown entry, got %v", err)
	}

	_, err = svc.UpdateEntryStatus(context.Background(), uuid.New(), uuid.New(), wallet.StatusCompleted)
	if !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown wallet, got %v", err)
	}
}

func TestConcurrentDebitsOnlyOneSucceeds(t *testing.T) {
	// Minimum below the debit size so the race is decided by the balance
	// floor, not the withdrawal threshold.
	store := wallet.NewMemoryStore()
	svc := wallet.NewService(store, nil, nil, 500)
	userID := uuid.New()

	mustCredit(t, svc, userID, 1000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0
	insufficient := 0

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyTransaction(context.Background(), userID, -600, wallet.TransactionTypeDebit,
				"race", wallet.Reference{Kind: wallet.RefPaymentRequest, ID: uuid.New()}, wallet.StatusCompleted)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
				return
			}
			if errors.Is(err, wallet.ErrInsufficientBalance) {
				insufficient++
				return
			}
			t.Errorf("unexpected error: %v", err)
		}()
	}
	wg.Wait()

	if success != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", success, insufficient)
	}
	if got := balance(t, store, userID); got != 400 {
		t.Fatalf("expected final balance 400, got %d", got)
	}
}

func TestHistoryFilterAndOrder(t *testing.T) {
	svc, _ := newTestService()
	userID := uuid.New()

	mustCredit(t, svc, userID, 5000)
	if _, err := svc.ApplyTransaction(context.Background(), userID, -2000, wallet.TransactionTypeDebit,
		"withdrawal", wallet.Reference{Kind: wallet.RefPaymentRequest, ID: uuid.New()}, wallet.StatusCompleted); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	debits, err := svc.History(context.Background(), userID, wallet.EntryFilter{Type: wallet.TransactionTypeDebit})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(debits) != 1 || debits[0].Amount != -2000 {
		t.Fatalf("debit filter returned wrong entries: %+v", debits)
	}

	all, err := svc.History(context.Background(), userID, wallet.EntryFilter{})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}
