package notification

import (
	"github.com/google/uuid"

	"github.com/giftbay/giftbay-api/internal/domain/wallet"
)

// WalletEmitter adapts the notification service to the wallet's
// fire-and-forget emitter contract.
type WalletEmitter struct {
	svc *Service
}

func NewWalletEmitter(svc *Service) *WalletEmitter {
	return &WalletEmitter{svc: svc}
}

var _ wallet.NotificationEmitter = (*WalletEmitter)(nil)

func (e *WalletEmitter) Notify(userID uuid.UUID, amount int64, kind wallet.ReferenceKind, message string, referenceID uuid.UUID) {
	e.svc.Emit(userID, kindFor(kind), message, amount, referenceID, linkFor(kind))
}

func kindFor(kind wallet.ReferenceKind) Kind {
	switch kind {
	case wallet.RefPaymentRequest:
		return KindPayoutStatus
	case wallet.RefEthWithdrawal:
		return KindEthStatus
	case wallet.RefMarketItem:
		return KindMarketStatus
	case wallet.RefUser:
		return KindSignupBonus
	default:
		return KindWalletCredit
	}
}

func linkFor(kind wallet.ReferenceKind) string {
	switch kind {
	case wallet.RefPaymentRequest:
		return "/wallet/withdrawals"
	case wallet.RefEthWithdrawal:
		return "/wallet/eth"
	case wallet.RefMarketItem:
		return "/market/submissions"
	default:
		return "/wallet"
	}
}
