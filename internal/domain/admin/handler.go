package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giftbay/giftbay-api/internal/domain/catalog"
	"github.com/giftbay/giftbay-api/internal/domain/dashboard"
	"github.com/giftbay/giftbay-api/internal/domain/ethwithdrawal"
	"github.com/giftbay/giftbay-api/internal/domain/marketitem"
	"github.com/giftbay/giftbay-api/internal/domain/paymentrequest"
	"github.com/giftbay/giftbay-api/internal/domain/report"
	"github.com/giftbay/giftbay-api/internal/domain/user"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/middleware"
)

// Handler is the admin surface: user management, manual wallet grants
// and the status transitions for all three request lifecycles.
type Handler struct {
	users           user.Repository
	wallets         *wallet.Service
	paymentRequests *paymentrequest.Service
	ethWithdrawals  *ethwithdrawal.Service
	marketItems     *marketitem.Service
	products        *catalog.Service
	reports         *report.Service
	stats           *dashboard.Service
}

func NewHandler(
	users user.Repository,
	wallets *wallet.Service,
	paymentRequests *paymentrequest.Service,
	ethWithdrawals *ethwithdrawal.Service,
	marketItems *marketitem.Service,
	products *catalog.Service,
	reports *report.Service,
	stats *dashboard.Service,
) *Handler {
	return &Handler{
		users:           users,
		wallets:         wallets,
		paymentRequests: paymentRequests,
		ethWithdrawals:  ethWithdrawals,
		marketItems:     marketItems,
		products:        products,
		reports:         reports,
		stats:           stats,
	}
}

// Routes returns the admin router. Every route requires an
// authenticated admin.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	r.Get("/dashboard", dashboard.NewHandler(h.stats).GetStats)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Post("/{id}/ban", h.BanUser)
		r.Post("/{id}/unban", h.UnbanUser)
		r.Post("/{id}/wallet/grant", h.GrantWalletAdjustment)
	})

	r.Route("/payment-requests", func(r chi.Router) {
		r.Get("/", h.ListPaymentRequests)
		r.Put("/{id}/status", h.TransitionPaymentRequest)
	})

	r.Route("/eth-withdrawals", func(r chi.Router) {
		r.Get("/", h.ListEthWithdrawals)
		r.Put("/{id}/status", h.TransitionEthWithdrawal)
	})

	r.Route("/market-items", func(r chi.Router) {
		r.Get("/", h.ListMarketItems)
		r.Put("/{id}/status", h.TransitionMarketItem)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Post("/{id}/resolve", h.ResolveReport)
	})

	return r
}
