package marketitem_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/catalog"
	"github.com/giftbay/giftbay-api/internal/domain/marketitem"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

type memRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*marketitem.MarketItem
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[uuid.UUID]*marketitem.MarketItem)}
}

func (r *memRepo) Create(_ context.Context, mi *marketitem.MarketItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *mi
	r.items[mi.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*marketitem.MarketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mi, ok := r.items[id]
	if !ok {
		return nil, marketitem.ErrNotFound
	}
	cp := *mi
	return &cp, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID, _, _ int) ([]*marketitem.MarketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketitem.MarketItem
	for _, mi := range r.items {
		if mi.UserID == userID {
			cp := *mi
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) List(_ context.Context, status marketitem.Status, _, _ int) ([]*marketitem.MarketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*marketitem.MarketItem
	for _, mi := range r.items {
		if status == "" || mi.Status == status {
			cp := *mi
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) SaveTransition(_ context.Context, mi *marketitem.MarketItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[mi.ID]
	if !ok {
		return marketitem.ErrNotFound
	}
	stored.Status = mi.Status
	stored.CancelReason = mi.CancelReason
	stored.CancelImageKey = mi.CancelImageKey
	stored.Credited = mi.Credited
	stored.CreditEntryID = mi.CreditEntryID
	return nil
}

// fixedCatalog serves one always-active product.
type fixedCatalog struct {
	product *catalog.Product
}

func (f *fixedCatalog) GetActive(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if f.product == nil || f.product.ID != id {
		return nil, catalog.ErrNotFound
	}
	return f.product, nil
}

func newTestService(t *testing.T) (*marketitem.Service, *memRepo, *wallet.MemoryStore, *catalog.Product) {
	t.Helper()
	store := wallet.NewMemoryStore()
	wallets := wallet.NewService(store, nil, nil, 1000)
	product := &catalog.Product{
		ID:          uuid.New(),
		Name:        "Amazon US",
		Category:    "giftcard",
		Currency:    "USD",
		RatePerUnit: decimal.NewFromInt(1000), // ₦1000 per $1
		IsActive:    true,
	}
	repo := newMemRepo()
	svc := marketitem.NewService(repo, wallets, &fixedCatalog{product: product}, nil)
	return svc, repo, store, product
}

func walletBalance(t *testing.T, store *wallet.MemoryStore, userID uuid.UUID) int64 {
	t.Helper()
	w, err := store.GetWallet(context.Background(), userID)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	return w.Balance
}

// seedItem plants an item with a fixed quote, bypassing catalog pricing.
func seedItem(t *testing.T, repo *memRepo, userID uuid.UUID, quoted string) *marketitem.MarketItem {
	t.Helper()
	mi := &marketitem.MarketItem{
		ID:                    uuid.New(),
		UserID:                userID,
		ProductID:             uuid.New(),
		ProductName:           "Steam EU",
		FaceValue:             decimal.NewFromInt(25),
		Quantity:              1,
		CalculatedTotalAmount: quoted,
		ImageKeys:             []string{"market-items/x/1"},
		Status:                marketitem.StatusProcessing,
	}
	if err := repo.Create(context.Background(), mi); err != nil {
		t.Fatalf("seed item failed: %v", err)
	}
	return mi
}

func TestCreateQuotesFromCatalogRate(t *testing.T) {
	svc, _, _, product := newTestService(t)
	userID := uuid.New()

	mi, err := svc.Create(context.Background(), userID, product.ID, decimal.NewFromInt(50), 2, "", []string{"k1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// $50 x 2 x ₦1000
	if mi.CalculatedTotalAmount != "100000.00" {
		t.Fatalf("quote = %s, want 100000.00", mi.CalculatedTotalAmount)
	}
	if mi.Status != "" {
		t.Fatalf("new item status = %q, want unset", mi.Status)
	}
}

func TestCreateRequiresImages(t *testing.T) {
	svc, _, _, product := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), product.ID, decimal.NewFromInt(50), 1, "", nil)
	if !errors.Is(err, marketitem.ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestDoneCreditsQuotedAmountOnce(t *testing.T) {
	svc, repo, store, _ := newTestService(t)
	userID := uuid.New()
	mi := seedItem(t, repo, userID, "1500.50")

	got, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusDone, "", "")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if !got.Credited {
		t.Fatal("item not marked credited")
	}
	if balance := walletBalance(t, store, userID); balance != 150050 {
		t.Fatalf("balance = %d kobo, want 150050", balance)
	}

	// repeated DONE re-sets the status but must not pay again
	if _, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusDone, "", ""); err != nil {
		t.Fatalf("second transition failed: %v", err)
	}
	if balance := walletBalance(t, store, userID); balance != 150050 {
		t.Fatalf("balance after repeated DONE = %d kobo, want 150050", balance)
	}

	entries, err := store.ListEntries(context.Background(), userID, wallet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one credit entry, got %d", len(entries))
	}
	if entries[0].ReferenceKind != wallet.RefMarketItem || entries[0].ReferenceID != mi.ID {
		t.Fatalf("credit entry not linked to the item: %+v", entries[0])
	}
}

func TestDoneSurvivesRoundTripThroughProcessing(t *testing.T) {
	svc, repo, store, _ := newTestService(t)
	userID := uuid.New()
	mi := seedItem(t, repo, userID, "2000.00")

	if _, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusDone, "", ""); err != nil {
		t.Fatalf("done failed: %v", err)
	}
	if _, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusProcessing, "", ""); err != nil {
		t.Fatalf("processing failed: %v", err)
	}
	if _, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusDone, "", ""); err != nil {
		t.Fatalf("second done failed: %v", err)
	}
	// the credited flag survives the detour
	if balance := walletBalance(t, store, userID); balance != 200000 {
		t.Fatalf("balance = %d kobo, want 200000", balance)
	}
}

func TestUnparseableQuoteCreditsZero(t *testing.T) {
	svc, repo, store, _ := newTestService(t)
	userID := uuid.New()
	mi := seedItem(t, repo, userID, "n/a")

	got, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusDone, "", "")
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if !got.Credited {
		t.Fatal("item not marked credited")
	}
	if balance := walletBalance(t, store, userID); balance != 0 {
		t.Fatalf("balance = %d kobo, want 0", balance)
	}
}

func TestCancelRequiresReasonAndProcessingClearsIt(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	mi := seedItem(t, repo, uuid.New(), "500.00")

	if _, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusCancel, "", ""); !errors.Is(err, marketitem.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}

	got, err := svc.Transition(context.Background(), mi.ID, marketitem.StatusCancel, "code already redeemed", "proof/1.jpg")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if !got.CancelReason.Valid || got.CancelReason.String != "code already redeemed" {
		t.Fatalf("cancel reason not stored: %+v", got.CancelReason)
	}

	got, err = svc.Transition(context.Background(), mi.ID, marketitem.StatusProcessing, "", "")
	if err != nil {
		t.Fatalf("processing failed: %v", err)
	}
	if got.CancelReason.Valid || got.CancelImageKey.Valid {
		t.Fatalf("processing did not clear cancel fields: %+v", got)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	mi := seedItem(t, repo, uuid.New(), "500.00")

	if _, err := svc.Transition(context.Background(), mi.ID, marketitem.Status("SOLD"), "", ""); !errors.Is(err, marketitem.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
