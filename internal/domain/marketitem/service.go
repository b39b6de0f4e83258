package marketitem

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/catalog"
	"github.com/giftbay/giftbay-api/internal/domain/notification"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

// ProductCatalog supplies the product being submitted; satisfied by
// catalog.Service.
type ProductCatalog interface {
	GetActive(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Notifier is the best-effort status notification sink; satisfied by
// notification.Service.
type Notifier interface {
	Emit(userID uuid.UUID, kind notification.Kind, message string, amount int64, referenceID uuid.UUID, link string)
}

type Service struct {
	repo     Repository
	wallets  *wallet.Service
	catalog  ProductCatalog
	notifier Notifier
}

func NewService(repo Repository, wallets *wallet.Service, cat ProductCatalog, notifier Notifier) *Service {
	return &Service{repo: repo, wallets: wallets, catalog: cat, notifier: notifier}
}

// Create submits a card for appraisal. The quoted payout is priced at
// submission time from the product's current rate; no money moves
// until an admin marks the item DONE.
func (s *Service) Create(ctx context.Context, userID, productID uuid.UUID, faceValue decimal.Decimal, quantity int, comment string, imageKeys []string) (*MarketItem, error) {
	if len(imageKeys) == 0 {
		return nil, ErrNoImages
	}
	product, err := s.catalog.GetActive(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		quantity = 1
	}

	total := faceValue.Mul(decimal.NewFromInt(int64(quantity))).Mul(product.RatePerUnit)
	now := time.Now().UTC()
	mi := &MarketItem{
		ID:                    uuid.New(),
		UserID:                userID,
		ProductID:             product.ID,
		ProductName:           product.Name,
		FaceValue:             faceValue,
		Quantity:              quantity,
		CalculatedTotalAmount: total.StringFixed(2),
		Comment:               comment,
		ImageKeys:             imageKeys,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, mi); err != nil {
		return nil, err
	}

	log.Info().
		Str("item_id", mi.ID.String()).
		Str("user_id", userID.String()).
		Str("product", product.Name).
		Str("quoted", mi.CalculatedTotalAmount).
		Msg("market item submitted")

	return mi, nil
}

// Transition sets the appraisal status. Statuses are freely
// re-settable; the Credited flag makes the DONE payout happen at most
// once per item no matter how many times DONE is applied.
func (s *Service) Transition(ctx context.Context, itemID uuid.UUID, target Status, cancelReason, cancelImageKey string) (*MarketItem, error) {
	if !target.Valid() {
		return nil, ErrInvalidStatus
	}

	mi, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	changed := mi.Status != target

	switch target {
	case StatusDone:
		if !mi.Credited {
			kobo := payoutKobo(mi.CalculatedTotalAmount)
			res, err := s.wallets.ApplyTransaction(ctx, mi.UserID, kobo, wallet.TransactionTypeCredit,
				mi.ProductName+" approved",
				wallet.Reference{Kind: wallet.RefMarketItem, ID: mi.ID},
				wallet.StatusCompleted)
			if err != nil {
				return nil, err
			}
			mi.Credited = true
			mi.CreditEntryID = uuid.NullUUID{UUID: res.Transaction.ID, Valid: true}
		}

	case StatusCancel:
		if cancelReason == "" {
			return nil, ErrMissingReason
		}
		mi.CancelReason = sql.NullString{String: cancelReason, Valid: true}
		mi.CancelImageKey = sql.NullString{String: cancelImageKey, Valid: cancelImageKey != ""}

	case StatusProcessing:
		mi.CancelReason = sql.NullString{}
		mi.CancelImageKey = sql.NullString{}
	}

	mi.Status = target
	if err := s.repo.SaveTransition(ctx, mi); err != nil {
		return nil, err
	}

	log.Info().
		Str("item_id", mi.ID.String()).
		Str("status", string(target)).
		Bool("credited", mi.Credited).
		Msg("market item transitioned")

	if changed && s.notifier != nil {
		s.notifier.Emit(mi.UserID, notification.KindMarketStatus,
			statusMessage(mi, target, cancelReason), payoutKobo(mi.CalculatedTotalAmount), mi.ID, "/market-items")
	}
	return mi, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*MarketItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MarketItem, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*MarketItem, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, status, limit, offset)
}

// payoutKobo parses the quoted naira amount. An unparseable quote pays
// 0 rather than failing the transition.
func payoutKobo(quoted string) int64 {
	amount, err := decimal.NewFromString(quoted)
	if err != nil {
		log.Warn().Str("quoted", quoted).Msg("unparseable market item quote, crediting 0")
		return 0
	}
	return wallet.NairaToKobo(amount)
}

func statusMessage(mi *MarketItem, target Status, cancelReason string) string {
	switch target {
	case StatusDone:
		return mi.ProductName + " was approved, ₦" + wallet.FormatNaira(payoutKobo(mi.CalculatedTotalAmount)) + " credited to your wallet"
	case StatusCancel:
		return mi.ProductName + " was declined: " + cancelReason
	case StatusProcessing:
		return mi.ProductName + " is being reviewed"
	default:
		return mi.ProductName + " status changed"
	}
}
