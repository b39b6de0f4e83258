package dashboard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Stats is the admin overview: queue depths, money totals and user
// counts. Individual counters are best effort; a failed count reports
// zero rather than failing the whole dashboard.
type Stats struct {
	UsersTotal  int `json:"users_total"`
	UsersBanned int `json:"users_banned"`
	UsersNew30d int `json:"users_new_30d"`

	PaymentRequestsPending int `json:"payment_requests_pending"`
	EthWithdrawalsPending  int `json:"eth_withdrawals_pending"`
	MarketItemsProcessing  int `json:"market_items_processing"`
	ReportsOpen            int `json:"reports_open"`

	// Kobo totals.
	WalletBalanceTotal int64 `json:"wallet_balance_total"`
	PaidOut30d         int64 `json:"paid_out_30d"`
	Credited30d        int64 `json:"credited_30d"`
}

// Service aggregates admin dashboard statistics.
type Service struct {
	db *sqlx.DB
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// GetStats collects the current overview numbers.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	_ = s.db.GetContext(ctx, &stats.UsersTotal,
		`SELECT COUNT(*) FROM users`)

	_ = s.db.GetContext(ctx, &stats.UsersBanned,
		`SELECT COUNT(*) FROM users WHERE is_banned = true`)

	_ = s.db.GetContext(ctx, &stats.UsersNew30d,
		`SELECT COUNT(*) FROM users WHERE created_at > $1`, thirtyDaysAgo)

	_ = s.db.GetContext(ctx, &stats.PaymentRequestsPending,
		`SELECT COUNT(*) FROM payment_requests
		 WHERE status IN ('pending', 'approved-processing')`)

	_ = s.db.GetContext(ctx, &stats.EthWithdrawalsPending,
		`SELECT COUNT(*) FROM eth_withdrawals WHERE status = 'pending'`)

	_ = s.db.GetContext(ctx, &stats.MarketItemsProcessing,
		`SELECT COUNT(*) FROM market_items WHERE status = 'PROCESSING'`)

	_ = s.db.GetContext(ctx, &stats.ReportsOpen,
		`SELECT COUNT(*) FROM reports WHERE status = 'open'`)

	_ = s.db.GetContext(ctx, &stats.WalletBalanceTotal,
		`SELECT COALESCE(SUM(balance), 0) FROM wallets`)

	// Completed withdrawal debits in the last 30 days.
	_ = s.db.GetContext(ctx, &stats.PaidOut30d,
		`SELECT COALESCE(SUM(-amount), 0) FROM wallet_transactions
		 WHERE type = 'withdrawal'
		   AND status IN ('completed', 'approved')
		   AND applied_to_balance = true
		   AND amount < 0
		   AND created_at > $1`, thirtyDaysAgo)

	// Card payouts and bonuses credited in the last 30 days.
	_ = s.db.GetContext(ctx, &stats.Credited30d,
		`SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
		 WHERE type = 'credit'
		   AND status IN ('completed', 'approved')
		   AND applied_to_balance = true
		   AND amount > 0
		   AND created_at > $1`, thirtyDaysAgo)

	return stats, nil
}
