package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"coinwatch/internal/adapters/coingecko"
	"coinwatch/internal/adapters/config"
	"coinwatch/internal/adapters/email"
	"coinwatch/internal/adapters/errors/noop"
	"coinwatch/internal/adapters/errors/sentry"
	"coinwatch/internal/adapters/newsapi"
	"coinwatch/internal/adapters/postgres"
	"coinwatch/internal/adapters/redis"
	"coinwatch/internal/api"
	"coinwatch/internal/api/handlers"
	"coinwatch/internal/api/health"
	"coinwatch/internal/api/middleware"
	"coinwatch/internal/domain/alert"
	"coinwatch/internal/domain/watchlist"
	"coinwatch/internal/metrics"
	pgrepo "coinwatch/internal/repository/postgres"
	redisrepo "coinwatch/internal/repository/redis"
	authservice "coinwatch/internal/services/auth"
	"coinwatch/internal/services/marketdata"
	newsservice "coinwatch/internal/services/news"
	"coinwatch/internal/workers"
	alertsworker "coinwatch/internal/workers/alerts"
	"coinwatch/pkg/auth"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Info("Databases initialized")

	// Repositories
	watchlistRepo := pgrepo.NewWatchlistRepository(pgClient.DB())
	alertRepo := pgrepo.NewAlertRepository(pgClient.DB())
	userRepo := pgrepo.NewUserRepository(pgClient.DB())
	responseCache := redisrepo.NewResponseCache(redisClient.Client(), "coinwatch:coingecko", log)
	revocationList := redisrepo.NewRevocationList(redisClient.Client(), "coinwatch:auth")

	// Services
	tokenService := auth.NewJWTService(
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenIssuer,
		cfg.Auth.TokenDuration,
		revocationList,
	)
	authSvc := authservice.NewService(userRepo, tokenService, log)
	watchlistSvc := watchlist.NewService(watchlistRepo)
	alertSvc := alert.NewService(alertRepo)
	marketSvc := marketdata.NewService(
		coingecko.NewClient(cfg.CoinGecko),
		responseCache,
		cfg.CoinGecko.CacheTTL,
		cfg.CoinGecko.ChartCacheTTL,
		log,
	)
	newsSvc := newsservice.NewService(newsapi.NewClient(newsapi.Config{
		BaseURL: cfg.News.BaseURL,
		APIKey:  cfg.News.APIKey,
		Timeout: cfg.News.Timeout,
	}), log)
	emailClient := email.NewClient(cfg.Email)

	log.Info("Services initialized")

	// HTTP server
	authMW := middleware.NewAuth(authSvc, cfg.Auth.CookieName, log)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.Server.Port,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}, api.Handlers{
		Health:    health.New(log, pgClient.DB(), redisClient.Client(), cfg.App.Name, cfg.App.Version),
		CoinGecko: handlers.NewCoinGeckoHandler(marketSvc, log),
		News:      handlers.NewNewsHandler(newsSvc, log),
		Watchlist: handlers.NewWatchlistHandler(watchlistSvc, log),
		Alerts:    handlers.NewAlertsHandler(alertSvc, log),
		Auth: handlers.NewAuthHandler(
			authSvc,
			authMW,
			cfg.Auth.CookieName,
			cfg.Auth.CookieSecure,
			cfg.Auth.TokenDuration,
			log,
		),
		Send: handlers.NewSendHandler(emailClient, log),
	}, authMW, log)

	// Background workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(alertsworker.NewEvaluator(
		alertSvc,
		marketSvc,
		alertNotifier(emailClient, userRepo, log),
		cfg.Workers.AlertEvaluatorInterval,
		cfg.Workers.AlertEvaluatorEnabled,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, cfg, server, scheduler, errorTracker, log)
}

// alertNotifier picks email delivery when the provider is configured,
// otherwise triggered alerts are only logged.
func alertNotifier(client *email.Client, users *pgrepo.UserRepository, log *logger.Logger) alertsworker.Notifier {
	if client.Configured() {
		return alertsworker.NewEmailNotifier(client, users, log)
	}

	log.Warn("Email provider not configured, alert notifications will only be logged")
	return alertsworker.NewLogNotifier(log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for a shutdown signal and stops components gracefully
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	server *api.Server,
	scheduler *workers.Scheduler,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-ctx.Done():
		log.Info("Shutting down after fatal component error")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}

	if err := scheduler.Stop(); err != nil {
		log.Errorf("Worker scheduler stop failed: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
