package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/idgen"
	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/config"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/messaging"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	sqlrepository "github.com/gigmile/loan-ledger/internal/infrastructure/repository/mysql"
	redisrepository "github.com/gigmile/loan-ledger/internal/infrastructure/repository/redis"
	"github.com/gigmile/loan-ledger/internal/interface/http/handler"
	"github.com/gigmile/loan-ledger/internal/interface/http/router"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	penalty, err := domain.NewPenaltyPolicy(cfg.Ledger.PenaltyPerDay)
	if err != nil {
		logger.Fatal("invalid penalty rate", zap.Error(err), zap.String("value", cfg.Ledger.PenaltyPerDay))
	}
	cadence, err := domain.NewCadence(cfg.Ledger.BillingCadence, cfg.Ledger.InstallmentIntervalDay)
	if err != nil {
		logger.Fatal("invalid billing cadence", zap.Error(err), zap.String("value", cfg.Ledger.BillingCadence))
	}

	db, err := persistence.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	logger.Info("connected to database successfully", zap.String("driver", cfg.Database.Driver))

	// Redis is optional; without it loans are not cached, failed audit
	// appends are only logged and no events are published.
	var (
		cache          sqlrepository.LoanCache
		outbox         domain.AuditOutbox
		eventPublisher domain.EventPublisher
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis successfully")

		cache = redisrepository.NewRedisLoanCache(redisClient, cfg.Redis.LoanCacheTTL)
		outbox = redisrepository.NewRedisAuditOutbox(redisClient)
		eventPublisher = messaging.NewRedisEventPublisher(redisClient, logger)
		logger.Info("event publishing enabled")
	}

	store := sqlrepository.NewStore(db, cache, logger)

	ids := idgen.NewGenerator(cfg.Ledger.IDRetryBudget, logger)
	if err := ids.Bootstrap(ctx, store); err != nil {
		logger.Fatal("failed to bootstrap id sequences", zap.Error(err))
	}

	opts := service.LedgerOptions{
		Penalty:   &penalty,
		TxRetries: cfg.Ledger.TxRetries,
	}
	handlers := handler.NewHandlers(handler.Services{
		Loans:      service.NewLoanService(store, ids, cadence, opts, outbox, logger),
		Ledger:     service.NewLedgerService(store, ids, opts, outbox, eventPublisher, logger),
		Guarantors: service.NewGuarantorService(store, ids, opts, outbox, logger),
		Audit:      service.NewAuditService(store, logger),
	}, logger)
	r := router.NewRouter(handlers, logger)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server",
			zap.String("address", serverAddr),
			zap.String("billing_cadence", string(cadence.Kind)),
			zap.String("penalty_per_day", penalty.PerDay.String()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
