package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratebridge-backend/config"
	"ratebridge-backend/internal/delivery/http/middleware"
	v1 "ratebridge-backend/internal/delivery/http/v1"
	"ratebridge-backend/internal/infrastructure/cache"
	"ratebridge-backend/internal/infrastructure/shopify"
	"ratebridge-backend/internal/repository/postgres"
	"ratebridge-backend/internal/usecase"
	"ratebridge-backend/pkg/logger"
	"ratebridge-backend/pkg/storage"
	"ratebridge-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	// Initialize Repositories
	tariffRepo := postgres.NewTariffRepository(pgxPool)
	rateRepo := postgres.NewRateRepository(pgxPool)

	// Initialize Cache (In-Memory)
	// Default expiration 1m, cleanup every 5m
	memCache := cache.NewMemoryCache(time.Minute, 5*time.Minute)

	// Shopify Admin GraphQL client with throttle-aware retry
	shopifyClient := shopify.NewClient(
		cfg.ShopifyShopDomain,
		cfg.ShopifyAccessToken,
		cfg.ShopifyAPIVersion,
		shopify.WithRetryPolicy(cfg.ShopifyMaxRetries, cfg.ShopifyRetryBase, cfg.ShopifyRetryCap, cfg.ShopifyRetryJitter),
		shopify.WithBudgetGuard(cfg.ShopifyMinBudget, cfg.ShopifyBudgetPause),
	)

	// --- Modules Initialization ---

	// Rate Generation Module
	generator := usecase.NewRateGeneratorService(
		tariffRepo,
		rateRepo,
		memCache,
		cfg.CacheTariffTTL,
		cfg.DefaultMaxParcelWeight,
		cfg.DefaultMaxTotalWeight,
	)

	// Zone Matching Module
	resolver := usecase.NewContextResolver(shopifyClient)
	matcher := usecase.NewZoneMatcher(resolver, rateRepo, memCache, cfg.CacheZoneListTTL)
	ratesHandler := v1.NewRatesHandler(generator, matcher)

	// Deployment Orchestration Module
	progress := usecase.NewProgressTracker()
	abortFlag := usecase.NewAbortFlag()
	deployer := usecase.NewRateDeployer(shopifyClient, cfg.Currency)
	orchestrator := usecase.NewMultiZoneOrchestrator(
		resolver,
		generator,
		deployer,
		progress,
		abortFlag,
		cfg.DryRunZoneDelay,
	)

	// Run-report archive (optional)
	var archive *storage.R2Archive
	if cfg.R2BucketName != "" {
		archive, err = storage.NewR2Archive(
			context.Background(),
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 archive")
		}
	} else {
		log.Warn().Msg("R2 archive not configured; run reports will not be stored")
	}
	deployHandler := v1.NewDeployHandler(orchestrator, progress, abortFlag, archive)

	// Set up Router
	mux := http.NewServeMux()

	adminMiddleware := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Rate Generation
	mux.Handle("POST /api/v1/admin/rates/generate", adminMiddleware(ratesHandler.GenerateRates))
	mux.Handle("GET /api/v1/admin/zones/matches", adminMiddleware(ratesHandler.GetZoneMatches))

	// Deployment Orchestration
	mux.Handle("POST /api/v1/admin/deployments", adminMiddleware(deployHandler.TriggerDeployment))
	mux.Handle("GET /api/v1/admin/deployments/progress", adminMiddleware(deployHandler.GetProgress))
	mux.Handle("POST /api/v1/admin/deployments/abort", adminMiddleware(deployHandler.AbortDeployment))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	// 20 req/s, burst 40, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		20,            // requests per second
		40,            // burst
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown - stop rate limiter cleanup goroutine
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
