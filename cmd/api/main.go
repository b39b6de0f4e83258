package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/giftbay/giftbay-api/internal/config"
	"github.com/giftbay/giftbay-api/internal/domain/admin"
	"github.com/giftbay/giftbay-api/internal/domain/auth"
	"github.com/giftbay/giftbay-api/internal/domain/catalog"
	"github.com/giftbay/giftbay-api/internal/domain/dashboard"
	"github.com/giftbay/giftbay-api/internal/domain/ethwithdrawal"
	"github.com/giftbay/giftbay-api/internal/domain/marketitem"
	"github.com/giftbay/giftbay-api/internal/domain/notification"
	"github.com/giftbay/giftbay-api/internal/domain/paymentrequest"
	"github.com/giftbay/giftbay-api/internal/domain/report"
	"github.com/giftbay/giftbay-api/internal/domain/user"
	"github.com/giftbay/giftbay-api/internal/domain/wallet"
	"github.com/giftbay/giftbay-api/internal/middleware"
	"github.com/giftbay/giftbay-api/internal/pkg/bankresolve"
	"github.com/giftbay/giftbay-api/internal/pkg/codes"
	"github.com/giftbay/giftbay-api/internal/pkg/database"
	"github.com/giftbay/giftbay-api/internal/pkg/email"
	"github.com/giftbay/giftbay-api/internal/pkg/imagequeue"
	"github.com/giftbay/giftbay-api/internal/pkg/jwt"
	"github.com/giftbay/giftbay-api/internal/pkg/logger"
	"github.com/giftbay/giftbay-api/internal/pkg/push"
	"github.com/giftbay/giftbay-api/internal/pkg/rates"
	pkgresponse "github.com/giftbay/giftbay-api/internal/pkg/response"
	"github.com/giftbay/giftbay-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting GiftBay API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// Object storage for card images; local disk when S3 is not
	// configured (dev)
	var objectStorage storage.ObjectStorage
	if cfg.S3AccessKey != "" {
		objectStorage, err = storage.NewS3Storage(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
	} else {
		objectStorage, err = storage.NewLocalStorage("./uploads", cfg.AppBaseURL+"/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		log.Warn().Msg("S3 not configured, storing uploads on local disk")
	}

	// External collaborators
	rateClient := rates.NewClient(rates.Config{
		BaseURL:  cfg.RateBaseURL,
		APIKey:   cfg.RateAPIKey,
		CacheTTL: cfg.RateCacheTTL,
	}, redis)

	bankResolver := bankresolve.NewClient(bankresolve.Config{
		BaseURL:   cfg.BankResolveBaseURL,
		SecretKey: cfg.BankResolveSecretKey,
	})

	var resetCodes codes.Store
	if redis != nil {
		resetCodes = codes.NewRedisStore(redis)
	} else {
		resetCodes = codes.NewMemoryStore()
	}

	var mailer *email.Service
	if cfg.SendGridAPIKey != "" {
		mailer = email.NewService(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, cfg.AppBaseURL)
		defer mailer.Close()
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	refreshRepo := auth.NewRefreshTokenRepository(db)
	notificationRepo := notification.NewRepository(db)
	paymentRequestRepo := paymentrequest.NewRepository(db)
	ethWithdrawalRepo := ethwithdrawal.NewRepository(db)
	marketItemRepo := marketitem.NewRepository(db)
	productRepo := catalog.NewRepository(db)
	reportRepo := report.NewRepository(db)

	// ---------- WebSocket hub ----------
	notificationHub := notification.NewHub(cfg.AllowedOrigins)

	// Device push, only when FCM is configured
	var pushNotifier *push.Notifier
	if cfg.FCMServerKey != "" && redis != nil {
		pushNotifier = push.NewNotifier(
			push.NewClient(push.Config{ServerKey: cfg.FCMServerKey, ProjectID: cfg.FCMProjectID}),
			push.NewTokenStore(redis),
		)
	}

	// ---------- Services ----------
	var pusher notification.Pusher
	if pushNotifier != nil {
		pusher = pushNotifier
	}
	notificationService := notification.NewService(notificationRepo, notificationHub, pusher)

	walletService := wallet.NewService(
		walletRepo,
		notification.NewWalletEmitter(notificationService),
		&bankResolverAdapter{client: bankResolver},
		cfg.MinWithdrawalKobo,
	)

	paymentRequestService := paymentrequest.NewService(paymentRequestRepo, walletService, notificationService)
	ethWithdrawalService := ethwithdrawal.NewService(ethWithdrawalRepo, walletService, rateClient, notificationService)
	productService := catalog.NewService(productRepo)
	marketItemService := marketitem.NewService(marketItemRepo, walletService, productService, notificationService)
	reportService := report.NewService(reportRepo, notificationService)

	var authMailer auth.Mailer
	if mailer != nil {
		authMailer = mailer
	}
	authService := auth.NewService(
		userRepo, jwtService, refreshRepo, resetCodes,
		walletService, authMailer, notificationService, cfg.SignupBonusKobo,
	)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	walletHandler := wallet.NewHandler(walletService)
	var deviceRegistry notification.DeviceRegistry
	if pushNotifier != nil {
		deviceRegistry = pushNotifier
	}
	notificationHandler := notification.NewHandler(notificationService, notificationHub, deviceRegistry)
	paymentRequestHandler := paymentrequest.NewHandler(paymentRequestService)
	ethWithdrawalHandler := ethwithdrawal.NewHandler(ethWithdrawalService)
	var imageQueue marketitem.ImageQueue
	if redis != nil {
		imageQueue = imagequeue.New(redis)
	}
	marketItemHandler := marketitem.NewHandler(marketItemService, objectStorage, imageQueue)
	catalogHandler := catalog.NewHandler(productService)
	reportHandler := report.NewHandler(reportService)
	adminHandler := admin.NewHandler(
		userRepo, walletService,
		paymentRequestService, ethWithdrawalService, marketItemService,
		productService, reportService, dashboard.NewService(db),
	)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		token := req.URL.Query().Get("token")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHub.ServeWS)).ServeHTTP(w, req)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware))
		r.Mount("/payment-requests", paymentRequestHandler.Routes(authMiddleware))
		r.Mount("/eth-withdrawals", ethWithdrawalHandler.Routes(authMiddleware))
		r.Mount("/market-items", marketItemHandler.Routes(authMiddleware))
		r.Mount("/products", catalogHandler.Routes())
		r.Mount("/reports", reportHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))

		r.Mount("/admin", adminHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// bankResolverAdapter bridges bankresolve.Client to the wallet
// service's resolver contract.
type bankResolverAdapter struct {
	client *bankresolve.Client
}

func (a *bankResolverAdapter) Resolve(ctx context.Context, accountNumber, bankCode string) (string, string, error) {
	account, err := a.client.Resolve(ctx, accountNumber, bankCode)
	if err != nil {
		return "", "", err
	}
	return account.HolderName, account.BankName, nil
}
