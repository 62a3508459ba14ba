package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crux-escrow/config"
	httpHandler "crux-escrow/internal/adapter/http/handler"
	ledgerAdapter "crux-escrow/internal/adapter/ledger"
	pgStorage "crux-escrow/internal/adapter/storage/postgres"
	redisStorage "crux-escrow/internal/adapter/storage/redis"
	"crux-escrow/internal/core/ports"
	"crux-escrow/internal/service"
	"crux-escrow/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("ledger_url", cfg.Ledger.URL).
		Msg("Starting CruX escrow service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize ledger gateway
	gw := ledgerAdapter.NewClient(cfg.Ledger, cfg.Wallets, log)

	// Initialize repositories and Redis stores
	notesRepo := pgStorage.NewBookkeepingRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	snapshotCache := redisStorage.NewSnapshotCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	condSvc := service.NewPreimageConditionService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	gate := service.NewEligibilityGate(gw.Now)

	// The payer side reconciles against local bookkeeping; the payee side
	// has none, so its reconciler runs ledger-only.
	payerReconciler := service.NewReconcileService(gw, notesRepo, encSvc, snapshotCache, cfg.Ledger.HistoryLimit, log)
	payeeReconciler := service.NewReconcileService(gw, nil, nil, snapshotCache, cfg.Ledger.HistoryLimit, log)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)
	buyerSvc := service.NewBuyerService(
		cfg.Wallets.Buyer.Address,
		gw,
		condSvc,
		encSvc,
		notesRepo,
		payerReconciler,
		gate,
		cfg.Ledger.FeeDrops,
		log,
	)
	sellerSvc := service.NewSellerService(cfg.Wallets.Seller.Address, gw, payeeReconciler, gate, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	ledgerHealth := ledgerAdapter.NewHealthCheck(gw)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		BuyerSvc:       buyerSvc,
		SellerSvc:      sellerSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, ledgerHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Release any armed eligibility timers before exit.
	gate.Stop()

	log.Info().Msg("Server exited")
}
