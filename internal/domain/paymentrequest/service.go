package paymentrequest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/domain/notification"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

// Notifier is the best-effort status notification sink; satisfied by
// notification.Service.
type Notifier interface {
	Emit(userID uuid.UUID, kind notification.Kind, message string, amount int64, referenceID uuid.UUID, link string)
}

// Service owns the payout request lifecycle. Every balance effect goes
// through the wallet service; this service never touches a balance
// directly.
type Service struct {
	repo     Repository
	wallets  *wallet.Service
	notifier Notifier
}

func NewService(repo Repository, wallets *wallet.Service, notifier Notifier) *Service {
	return &Service{repo: repo, wallets: wallets, notifier: notifier}
}

// Create submits a payout request and debits the wallet immediately.
// A rejected debit (below minimum, insufficient balance) fails the
// whole creation; no request is stored.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, amount int64, bankAccountID uuid.UUID) (*PaymentRequest, error) {
	accounts, err := s.wallets.GetView(ctx, userID, wallet.EntryFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	var account *wallet.BankAccount
	for _, a := range accounts.BankAccounts {
		if a.ID == bankAccountID {
			account = a
			break
		}
	}
	if account == nil {
		return nil, ErrNoSuchBankAccount
	}

	requestID := uuid.New()

	// Funds leave the balance at submission time, not at approval.
	res, err := s.wallets.ApplyTransaction(ctx, userID, -amount, wallet.TransactionTypeWithdrawal,
		"Withdrawal to "+account.BankName+" ••"+last4(account.AccountNumber),
		wallet.Reference{Kind: wallet.RefPaymentRequest, ID: requestID},
		wallet.StatusCompleted)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pr := &PaymentRequest{
		ID:            requestID,
		UserID:        userID,
		Amount:        amount,
		AccountNumber: account.AccountNumber,
		BankCode:      account.BankCode,
		BankName:      account.BankName,
		HolderName:    account.HolderName,
		Status:        StatusPending,
		DebitEntryID:  res.Transaction.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Msg("payment request created")

	return pr, nil
}

// Transition applies one admin status change. Exactly one ledger effect
// per transition: rejection credits the refund; the other transitions
// only mirror status onto the original debit entry.
func (s *Service) Transition(ctx context.Context, requestID uuid.UUID, target Status, reason string) (*PaymentRequest, error) {
	switch target {
	case StatusApprovedProcessing, StatusRejected, StatusCompleted:
	default:
		return nil, ErrInvalidStatus
	}

	pr, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !pr.Status.CanTransition(target) {
		return nil, ErrIllegalTransition
	}

	switch target {
	case StatusRejected:
		if reason == "" {
			return nil, ErrMissingReason
		}
		// Refund is a new entry: the displayed history keeps both the
		// original debit and the credit, and the net effect is exactly
		// one refund.
		if _, err := s.wallets.ApplyTransaction(ctx, pr.UserID, pr.Amount, wallet.TransactionTypeCredit,
			"Refund: withdrawal rejected ("+reason+")",
			wallet.Reference{Kind: wallet.RefPaymentRequest, ID: pr.ID},
			wallet.StatusCompleted); err != nil {
			return nil, err
		}
		// Mirror the rejection onto the original debit for the audit
		// trail. rejected has no balance effect, so nothing re-applies.
		if _, err := s.wallets.UpdateEntryStatus(ctx, pr.UserID, pr.DebitEntryID, wallet.StatusRejected); err != nil {
			return nil, err
		}

	case StatusApprovedProcessing:
		if _, err := s.wallets.UpdateEntryStatus(ctx, pr.UserID, pr.DebitEntryID, wallet.StatusApprovedProcessing); err != nil {
			return nil, err
		}

	case StatusCompleted:
		// Funds already left at creation; the applied_to_balance guard
		// keeps this from debiting twice.
		if _, err := s.wallets.UpdateEntryStatus(ctx, pr.UserID, pr.DebitEntryID, wallet.StatusCompleted); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, pr.ID, target, reason); err != nil {
		return nil, err
	}
	pr.Status = target

	log.Info().
		Str("request_id", pr.ID.String()).
		Str("status", string(target)).
		Msg("payment request transitioned")

	if s.notifier != nil {
		s.notifier.Emit(pr.UserID, notification.KindPayoutStatus,
			statusMessage(target, pr.Amount, reason), pr.Amount, pr.ID, "/wallet/withdrawals")
	}
	return pr, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*PaymentRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*PaymentRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, status, limit, offset)
}

func statusMessage(target Status, amount int64, reason string) string {
	naira := "₦" + wallet.FormatNaira(amount)
	switch target {
	case StatusApprovedProcessing:
		return "Your withdrawal of " + naira + " is being processed"
	case StatusCompleted:
		return "Your withdrawal of " + naira + " has been paid out"
	case StatusRejected:
		return "Your withdrawal of " + naira + " was rejected: " + reason
	default:
		return "Your withdrawal status changed"
	}
}

func last4(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
