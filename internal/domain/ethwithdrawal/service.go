package ethwithdrawal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/giftbay/giftbay-api/internal/domain/notification"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

// RateSource supplies the current ETH/NGN rate; satisfied by
// rates.Client. A failed lookup fails the creation, it never falls
// back to a stale or guessed rate.
type RateSource interface {
	EthToNaira(ctx context.Context) (decimal.Decimal, error)
}

// Notifier is the best-effort status notification sink; satisfied by
// notification.Service.
type Notifier interface {
	Emit(userID uuid.UUID, kind notification.Kind, message string, amount int64, referenceID uuid.UUID, link string)
}

type Service struct {
	repo     Repository
	wallets  *wallet.Service
	rates    RateSource
	notifier Notifier
}

func NewService(repo Repository, wallets *wallet.Service, rates RateSource, notifier Notifier) *Service {
	return &Service{repo: repo, wallets: wallets, rates: rates, notifier: notifier}
}

// Create submits an ETH withdrawal and debits the naira amount
// immediately. The rate is looked up first so a rate outage never
// leaves a debit without a priced request.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, nairaAmount int64, ethAddress string, ethNetToSend decimal.Decimal) (*EthWithdrawal, error) {
	rate, err := s.rates.EthToNaira(ctx)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New()

	res, err := s.wallets.ApplyTransaction(ctx, userID, -nairaAmount, wallet.TransactionTypeWithdrawal,
		"ETH withdrawal to "+shortAddress(ethAddress),
		wallet.Reference{Kind: wallet.RefEthWithdrawal, ID: requestID},
		wallet.StatusCompleted)
	if err != nil {
		return nil, err
	}

	naira := decimal.NewFromInt(nairaAmount).Div(decimal.NewFromInt(100))
	now := time.Now().UTC()
	ew := &EthWithdrawal{
		ID:            requestID,
		UserID:        userID,
		NairaAmount:   nairaAmount,
		EthAddress:    ethAddress,
		EthCalculated: naira.DivRound(rate, 18),
		EthNetToSend:  ethNetToSend,
		RateUsed:      rate,
		Status:        StatusPending,
		DebitEntryID:  res.Transaction.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, ew); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("user_id", userID.String()).
		Int64("naira_amount", nairaAmount).
		Str("eth_calculated", ew.EthCalculated.String()).
		Msg("eth withdrawal created")

	return ew, nil
}

// Transition applies one admin status change. Rejection credits the
// refund; processed only records the on-chain send and notifies.
func (s *Service) Transition(ctx context.Context, requestID uuid.UUID, target Status, reason, txHash string) (*EthWithdrawal, error) {
	switch target {
	case StatusProcessed, StatusRejected:
	default:
		return nil, ErrInvalidStatus
	}

	ew, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !ew.Status.CanTransition(target) {
		return nil, ErrIllegalTransition
	}

	switch target {
	case StatusRejected:
		if reason == "" {
			return nil, ErrMissingReason
		}
		if _, err := s.wallets.ApplyTransaction(ctx, ew.UserID, ew.NairaAmount, wallet.TransactionTypeCredit,
			"Refund: ETH withdrawal rejected ("+reason+")",
			wallet.Reference{Kind: wallet.RefEthWithdrawal, ID: ew.ID},
			wallet.StatusCompleted); err != nil {
			return nil, err
		}
		if _, err := s.wallets.UpdateEntryStatus(ctx, ew.UserID, ew.DebitEntryID, wallet.StatusRejected); err != nil {
			return nil, err
		}

	case StatusProcessed:
		// No balance change: the naira already left at creation and
		// the ETH leg is off-system.
		if _, err := s.wallets.UpdateEntryStatus(ctx, ew.UserID, ew.DebitEntryID, wallet.StatusCompleted); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, ew.ID, target, reason, txHash); err != nil {
		return nil, err
	}
	ew.Status = target

	log.Info().
		Str("request_id", ew.ID.String()).
		Str("status", string(target)).
		Msg("eth withdrawal transitioned")

	if s.notifier != nil {
		s.notifier.Emit(ew.UserID, notification.KindEthStatus,
			statusMessage(ew, target, reason, txHash), ew.NairaAmount, ew.ID, "/wallet/eth-withdrawals")
	}
	return ew, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*EthWithdrawal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*EthWithdrawal, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*EthWithdrawal, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, status, limit, offset)
}

func statusMessage(ew *EthWithdrawal, target Status, reason, txHash string) string {
	switch target {
	case StatusProcessed:
		msg := ew.EthNetToSend.String() + " ETH was sent to " + shortAddress(ew.EthAddress)
		if txHash != "" {
			msg += " (tx " + txHash + ")"
		}
		return msg
	case StatusRejected:
		return "Your ETH withdrawal of ₦" + wallet.FormatNaira(ew.NairaAmount) + " was rejected: " + reason
	default:
		return "Your ETH withdrawal status changed"
	}
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
