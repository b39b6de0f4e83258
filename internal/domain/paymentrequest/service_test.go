package paymentrequest_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/paymentrequest"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

const testMinDebit = 1000

// memRepo is an in-memory Repository for service tests.
type memRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*paymentrequest.PaymentRequest
}

func newMemRepo() *memRepo {
	return &memRepo{requests: make(map[uuid.UUID]*paymentrequest.PaymentRequest)}
}

func (r *memRepo) Create(_ context.Context, pr *paymentrequest.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pr
	r.requests[pr.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*paymentrequest.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr, ok := r.requests[id]
	if !ok {
		return nil, paymentrequest.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*paymentrequest.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*paymentrequest.PaymentRequest
	for _, pr := range r.requests {
		if pr.UserID == userID {
			cp := *pr
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) List(_ context.Context, status paymentrequest.Status, _, _ int) ([]*paymentrequest.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*paymentrequest.PaymentRequest
	for _, pr := range r.requests {
		if status == "" || pr.Status == status {
			cp := *pr
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status paymentrequest.Status, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr, ok := r.requests[id]
	if !ok {
		return paymentrequest.ErrNotFound
	}
	pr.Status = status
	pr.RejectReason.String = reason
	pr.RejectReason.Valid = reason != ""
	return nil
}

func newTestService(t *testing.T) (*paymentrequest.Service, *wallet.Service, *wallet.MemoryStore) {
	t.Helper()
	store := wallet.NewMemoryStore()
	wallets := wallet.NewService(store, nil, nil, testMinDebit)
	svc := paymentrequest.NewService(newMemRepo(), wallets, nil)
	return svc, wallets, store
}

func seedAccount(t *testing.T, store *wallet.MemoryStore, userID uuid.UUID) uuid.UUID {
	t.Helper()
	account := &wallet.BankAccount{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: "0123456789",
		BankCode:      "058",
		BankName:      "GTBank",
		HolderName:    "ADA OBI",
	}
	if err := store.AddBankAccount(context.Background(), account); err != nil {
		t.Fatalf("seed bank account failed: %v", err)
	}
	return account.ID
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

func TestCreateDebitsImmediately(t *testing.T) {
	svc, wallets, store := newTestService(t)
	userID := uuid.New()
	accountID := seedAccount(t, store, userID)
	seedBalance(t, wallets, userID, 5000)

	pr, err := svc.Create(context.Background(), userID, 2000, accountID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if pr.Status != paymentrequest.StatusPending {
		t.Fatalf("new request status = %s, want pending", pr.Status)
	}
	if got := walletBalance(t, store, userID); got != 3000 {
		t.Fatalf("balance after create = %d, want 3000", got)
	}

	entry, err := store.GetEntry(context.Background(), userID, pr.DebitEntryID)
	if err != nil {
		t.Fatalf("debit entry not found: %v", err)
	}
	if entry.Amount != -2000 || entry.ReferenceKind != wallet.RefPaymentRequest || entry.ReferenceID != pr.ID {
		t.Fatalf("debit entry not linked to the request: %+v", entry)
	}
}

func TestCreateRejectsBelowMinimum(t *testing.T) {
	svc, wallets, store := newTestService(t)
	userID := uuid.New()
	accountID := seedAccount(t, store, userID)
	seedBalance(t, wallets, userID, 5000)

	_, err := svc.Create(context.Background(), userID, 500, accountID)
	if !errors.Is(err, wallet.ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
	if got := walletBalance(t, store, userID); got != 5000 {
		t.Fatalf("balance changed by rejected create: got %d", got)
	}
}

func TestCreateRejectsInsufficientBalance(t *testing.T) {
	svc, wallets, store := newTestService(t)
	userID := uuid.New()
	accountID := seedAccount(t, store, userID)
	seedBalance(t, wallets, userID, 1500)

	_, err := svc.Create(context.Background(), userID, 2000, accountID)
	if !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := walletBalance(t, store, userID); got != 1500 {
		t.Fatalf("balance changed by rejected create: got %d", got)
	}
}

func TestCreateRequiresLinkedAccount(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	userID := uuid.New()
	seedBalance(t, wallets, userID, 5000)

	_, err := svc.Create(context.Background(), userID, 2000, uuid.New())
	if !errors.Is(err, paymentrequest.ErrNoSuchBankAccount) {
		t.Fatalf("expected ErrNoSuchBankAccount, got %v", err)
	}
}

func TestRejectRefundsInFull(t *testing.T) {
	svc, wallets, store := newTestService(t)
	userID := uuid.New()
	accountID := seedAccount(t, store, userID)
	seedBalance(t, wallets, userID, 5000)

	pr, err := svc.Create(context.Background(), userID, 2000, accountID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := walletBalance(t, store, userID); got != 3000 {
		t.Fatalf("balance after create = %d, want 3000", got)
	}

	pr, err = svc.Transition(context.Background(), pr.ID, paymentrequest.StatusRejected, "name mismatch")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got := walletBalance(t, store, userID); got != 5000 {
		t.Fatalf("balance after reject = %d, want 5000", got)
	}

	// history keeps both the original debit and the refund credit
	entries, err := store.ListEntries(context.Background(), userID, wallet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	var debit, refund *wallet.Transaction
	for _, e := range entries {
		if e.ReferenceID != pr.ID {
			continue
		}
		if e.Amount < 0 {
			debit = e
		} else {
			refund = e
		}
	}
	if debit == nil || refund == nil {
		t.Fatalf("expected both debit and refund entries, got %d entries", len(entries))
	}
	if debit.Status != wallet.StatusRejected {
		t.Fatalf("original debit status = %s, want rejected", debit.Status)
	}
	if refund.Amount != 2000 {
		t.Fatalf("refund amount = %d, want 2000", refund.Amount)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, wallets, store := newTestService(t)
	userID := uuid.New()
	accountID := seedAccount(t, store, userID)
	seedBalance(t, wallets, userID, 5000)

	pr, err := svc.Create(context.Background(), userID, 2000, accountID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Transition(context.Background(), pr.ID, paymentrequest.StatusRejected, "")
	if !errors.Is(err, paymentrequest.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
	if got := walletBalance(t, store, userID); got != 3000 {
		t.Fatalf("balance changed by failed reject: got %d", got)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	svc, wallets, store := newTestService(t)
	userID := uuid.New()
	accountID := seedAccount(t, store, userID)
	seedBalance(t, wallets, userID, 5000)

	pr, err := svc.Create(context.Background(), userID, 2000, accountID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// pending cannot jump straight to completed
	if _, err := svc.Transition(context.Background(), pr.ID, paymentrequest.StatusCompleted, ""); !errors.Is(err, paymentrequest.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}

	pr, err = svc.Transition(context.Background(), pr.ID, paymentrequest.StatusApprovedProcessing, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	pr, err = svc.Transition(context.Background(), pr.ID, paymentrequest.StatusCompleted, "")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if pr.Status != paymentrequest.StatusCompleted {
		t.Fatalf("status = %s, want completed", pr.Status)
	}

	// the debit applied at creation must not apply again on completion
	if got := walletBalance(t, store, userID); got != 3000 {
		t.Fatalf("balance after completion = %d, want 3000", got)
	}

	// completed is terminal
	if _, err := svc.Transition(context.Background(), pr.ID, paymentrequest.StatusRejected, "late"); !errors.Is(err, paymentrequest.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition on terminal status, got %v", err)
	}

	// unknown target statuses are rejected outright
	if _, err := svc.Transition(context.Background(), pr.ID, paymentrequest.Status("paid"), ""); !errors.Is(err, paymentrequest.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
