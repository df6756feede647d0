package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbooks/finbooks/internal/application/usecase"
	"github.com/finbooks/finbooks/internal/domain/service"
	"github.com/finbooks/finbooks/internal/infrastructure/config"
	"github.com/finbooks/finbooks/internal/infrastructure/consumer"
	"github.com/finbooks/finbooks/internal/infrastructure/outbox"
	infraPG "github.com/finbooks/finbooks/internal/infrastructure/postgres"
	"github.com/finbooks/finbooks/internal/presentation/rest"
	"github.com/finbooks/finbooks/pkg/auth"
	"github.com/finbooks/finbooks/pkg/bus"
	"github.com/finbooks/finbooks/pkg/observability"
	pgpkg "github.com/finbooks/finbooks/pkg/postgres"
	"github.com/finbooks/finbooks/pkg/retry"
)

const serviceName = "gl-service"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg := config.Load()
	cfg.Validate()

	// Initialize logger
	logger := observability.InitLogger(observability.LogConfig{
		Service: serviceName,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	slog.SetDefault(logger)

	logger.Info("starting gl-service",
		"http_port", cfg.HTTPPort,
		"broker", brokerName(cfg),
	)

	// Initialize tracing
	shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Initialize metrics
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Initialize database
	pool, err := pgpkg.NewPool(ctx, pgpkg.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	dsn := pgpkg.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}.DSN()
	if err = pgpkg.RunMigrations(dsn, "internal/infrastructure/postgres/migrations"); err != nil {
		logger.Warn("migration warning", "error", err)
	}

	// Initialize the event bus. An empty NATS URL selects the in-memory bus,
	// which only makes sense when producers and consumers share the process.
	eventBus, err := newBus(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer func() { _ = eventBus.Close() }() //nolint:errcheck // best-effort bus shutdown

	// Wire dependencies (DI via constructors)
	outboxStore := infraPG.NewOutboxStore(pool)
	processedStore := infraPG.NewProcessedStore(pool)
	dlqStore := infraPG.NewDLQStore(pool)
	journalRepo := infraPG.NewJournalRepo(pool, outboxStore, processedStore)
	periodRepo := infraPG.NewPeriodRepo(pool, outboxStore)
	accountRepo := infraPG.NewAccountRepo(pool)
	balanceRepo := infraPG.NewBalanceRepo(pool)
	validator := service.NewPostingValidator()

	// Use cases
	postEntryUC := usecase.NewPostJournalEntry(journalRepo, validator)
	reverseEntryUC := usecase.NewReverseEntry(journalRepo)
	validateCloseUC := usecase.NewValidateClose(periodRepo)
	closePeriodUC := usecase.NewClosePeriod(periodRepo)
	closeStatusUC := usecase.NewGetCloseStatus(periodRepo)
	getAccountUC := usecase.NewGetAccount(accountRepo)
	getEntryUC := usecase.NewGetJournalEntry(journalRepo)
	listBalancesUC := usecase.NewListBalances(balanceRepo)

	retryCfg := retry.Config{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
	}

	// Consumers: one per inbound event type, each with its own idempotency
	// scope in processed_events.
	postingRunner := consumer.NewRunner(
		usecase.ConsumerPosting, "gl.events.posting.requested",
		eventBus, processedStore, dlqStore, postEntryUC.Handle, retryCfg, logger,
	)
	reversalRunner := consumer.NewRunner(
		usecase.ConsumerReversal, "gl.events.entry.reverse.requested",
		eventBus, processedStore, dlqStore, reverseEntryUC.Handle, retryCfg, logger,
	)

	// Outbox drain loop
	publisher := outbox.NewPublisher(outboxStore, eventBus, serviceName, outbox.Config{
		Interval:  cfg.Outbox.Interval,
		BatchSize: cfg.Outbox.BatchSize,
	}, logger)

	// Token validation (public key preferred, secret as fallback)
	authCfg := auth.Config{
		Issuer: cfg.Auth.Issuer,
		Secret: cfg.Auth.Secret,
	}
	if cfg.Auth.PublicKeyFile != "" {
		keyData, loadErr := auth.LoadKeyFromFile(cfg.Auth.PublicKeyFile)
		if loadErr != nil {
			logger.Error("failed to load auth public key file", "error", loadErr)
			os.Exit(1)
		}
		authCfg.PublicKeyPEM = string(keyData)
	}
	authValidator, err := auth.NewValidator(authCfg)
	if err != nil {
		logger.Error("failed to initialize token validation", "error", err)
		os.Exit(1)
	}

	// HTTP server
	apiMux := http.NewServeMux()
	periodHandler := rest.NewPeriodHandler(validateCloseUC, closePeriodUC, closeStatusUC, logger)
	periodHandler.RegisterRoutes(apiMux)
	ledgerHandler := rest.NewLedgerHandler(getAccountUC, getEntryUC, listBalancesUC, logger)
	ledgerHandler.RegisterRoutes(apiMux)
	api := auth.Middleware(authValidator)(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/periods/", api)
	mux.Handle("/accounts/", api)
	mux.Handle("/entries/", api)
	mux.Handle("GET /metrics", metricsHandler)
	healthHandler := rest.NewHealthHandler(pool, logger)
	healthHandler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start workers and the server
	errCh := make(chan error, 3)

	go func() {
		if err := postingRunner.Run(ctx); err != nil {
			errCh <- fmt.Errorf("posting consumer: %w", err)
		}
	}()
	go func() {
		if err := reversalRunner.Run(ctx); err != nil {
			errCh <- fmt.Errorf("reversal consumer: %w", err)
		}
	}()
	go func() {
		if err := publisher.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("outbox publisher: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// One final drain so committed outbox rows are not stranded until restart.
	if err := publisher.Drain(shutdownCtx); err != nil {
		logger.Warn("final outbox drain failed", "error", err)
	}
	logger.Info("gl-service stopped")
}

func newBus(cfg config.Config, logger *slog.Logger) (bus.Bus, error) {
	if cfg.NATS.URL == "" {
		logger.Warn("NATS_URL not set, using in-memory bus")
		return bus.NewMemoryBus(logger), nil
	}
	return bus.NewNATSBus(bus.NATSConfig{URL: cfg.NATS.URL, Name: serviceName})
}

func brokerName(cfg config.Config) string {
	if cfg.NATS.URL == "" {
		return "memory"
	}
	return "nats"
}
