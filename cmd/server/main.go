package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/mlmledger/internal/adapter/fulfillment"
	httpAdapter "github.com/iho/mlmledger/internal/adapter/http"
	"github.com/iho/mlmledger/internal/adapter/http/handler"
	"github.com/iho/mlmledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/mlmledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/mlmledger/internal/adapter/repository/redis"
	"github.com/iho/mlmledger/internal/infrastructure/auth"
	"github.com/iho/mlmledger/internal/infrastructure/config"
	"github.com/iho/mlmledger/internal/infrastructure/eventpublisher"
	"github.com/iho/mlmledger/internal/infrastructure/logger"
	"github.com/iho/mlmledger/internal/infrastructure/metrics"
	"github.com/iho/mlmledger/internal/infrastructure/postgres"
	"github.com/iho/mlmledger/internal/infrastructure/redis"
	"github.com/iho/mlmledger/internal/infrastructure/sweeper"
	"github.com/iho/mlmledger/internal/usecase"
)

const serviceName = "mlmledger"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrationsAutoApply {
		if err := postgres.NewMigrator(cfg.DatabaseURL, log).Up(); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	userRepo := postgresRepo.NewUserRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	orderRepo := postgresRepo.NewOrderRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	shareRepo := postgresRepo.NewRevenueShareRepository(pool)
	designationRepo := postgresRepo.NewDesignationRepository(pool)
	statsRepo := postgresRepo.NewLeadershipStatsRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, userRepo, balanceRepo, idGen, cfg.PlatformUserID, cfg.Currency)
	transactionUC := usecase.NewTransactionUseCase(usecase.TransactionDeps{
		TxManager:   txManager,
		Retrier:     retrier,
		UserRepo:    userRepo,
		AccountRepo: accountRepo,
		BalanceRepo: balanceRepo,
		TxRepo:      txRepo,
		JournalRepo: journalRepo,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Metrics:     m,
		Logger:      log,
		Currency:    cfg.Currency,
	})
	revenueUC, err := usecase.NewRevenueUseCase(usecase.RevenueDeps{
		TxManager:             txManager,
		Retrier:               retrier,
		UserRepo:              userRepo,
		TxRepo:                txRepo,
		ShareRepo:             shareRepo,
		OutboxRepo:            outboxRepo,
		Accounts:              accountUC,
		Transactions:          transactionUC,
		IDGen:                 idGen,
		Metrics:               m,
		Logger:                log,
		Percentages:           cfg.GenerationPercentages,
		PayFromCommissionPool: cfg.PayoutFromCommissionPool,
	})
	if err != nil {
		return fmt.Errorf("revenue use case: %w", err)
	}
	orchestratorUC := usecase.NewOrchestratorUseCase(usecase.OrchestratorDeps{
		TxManager:                txManager,
		Retrier:                  retrier,
		UserRepo:                 userRepo,
		OrderRepo:                orderRepo,
		PaymentRepo:              paymentRepo,
		ShareRepo:                shareRepo,
		TxRepo:                   txRepo,
		OutboxRepo:               outboxRepo,
		Accounts:                 accountUC,
		Transactions:             transactionUC,
		Revenue:                  revenueUC,
		Fulfillment:              newFulfillmentService(cfg, log),
		IDGen:                    idGen,
		Metrics:                  m,
		Logger:                   log,
		EagerPayoutMaxGeneration: cfg.EagerPayoutMaxGeneration,
		FulfillmentTimeout:       cfg.FulfillmentTimeout,
	})
	leadershipUC := usecase.NewLeadershipUseCase(usecase.LeadershipDeps{
		TxManager:          txManager,
		Retrier:            retrier,
		UserRepo:           userRepo,
		DesignationRepo:    designationRepo,
		StatsRepo:          statsRepo,
		OutboxRepo:         outboxRepo,
		IDGen:              idGen,
		Metrics:            m,
		Logger:             log,
		MinDirectReferrals: cfg.LeadershipMinDirectReferrals,
	})
	referralUC := usecase.NewReferralUseCase(txManager, retrier, userRepo, leadershipUC, log)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, balanceRepo, journalRepo, ledgerRepo)

	// Background workers
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Recorder:   m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPublishInterval,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if cfg.CommissionSweepInterval > 0 {
		sw := sweeper.New(sweeper.Config{
			Processor: orchestratorUC,
			Lock:      redisRepo.NewLock(redisClient),
			Recorder:  m,
			Logger:    log,
			Interval:  cfg.CommissionSweepInterval,
			BatchSize: cfg.CommissionSweepBatch,
		})
		go func() {
			if err := sw.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("commission sweeper stopped")
			}
		}()
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	rateLimiter.StartCleanup(ctx, time.Minute)

	healthHandler := handler.NewHealthHandler(
		handler.PingFunc(pool.Ping),
		handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		OrderHandler:       handler.NewOrderHandler(orchestratorUC),
		CommissionHandler:  handler.NewCommissionHandler(orchestratorUC, revenueUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		UserHandler:        handler.NewUserHandler(referralUC, leadershipUC),
		ReportHandler:      handler.NewReportHandler(orchestratorUC, reconciliationUC),
		HealthHandler:      healthHandler,

		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		RateLimiter:      rateLimiter,
		Logger:           log,

		TokenVerifier: newTokenVerifier(cfg),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// newTokenVerifier returns nil when authentication is disabled.
func newTokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if !cfg.AuthEnabled {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
}

func newFulfillmentService(cfg *config.Config, log zerolog.Logger) usecase.FulfillmentService {
	if cfg.FulfillmentURL == "" {
		log.Warn().Msg("FULFILLMENT_URL not set, orders are fulfilled immediately")
		return fulfillment.Noop{}
	}
	return fulfillment.NewClient(fulfillment.ClientConfig{
		BaseURL:    cfg.FulfillmentURL,
		Timeout:    cfg.FulfillmentTimeout,
		RetryCount: 2,
		Logger:     log,
	})
}
