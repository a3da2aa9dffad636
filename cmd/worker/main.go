package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigmile/loan-ledger/internal/application/service"
	"github.com/gigmile/loan-ledger/internal/config"
	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/gigmile/loan-ledger/internal/infrastructure/messaging"
	"github.com/gigmile/loan-ledger/internal/infrastructure/persistence"
	sqlrepository "github.com/gigmile/loan-ledger/internal/infrastructure/repository/mysql"
	redisrepository "github.com/gigmile/loan-ledger/internal/infrastructure/repository/redis"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// The worker sends payment notifications and replays audit entries parked
// in the outbox.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	cfg := config.Load()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis successfully")

	db, err := persistence.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	cache := redisrepository.NewRedisLoanCache(redisClient, cfg.Redis.LoanCacheTTL)
	store := sqlrepository.NewStore(db, cache, logger)
	outbox := redisrepository.NewRedisAuditOutbox(redisClient)

	notificationService := service.NewNotificationService(store.Loans(), logger)
	relay := service.NewAuditRelay(store.Audit(), outbox, logger)

	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("worker-%s-%d", hostname, os.Getpid())
	eventSubscriber := messaging.NewRedisEventSubscriber(redisClient, logger, consumerName)

	subscriptions := map[string]domain.EventHandler{
		domain.EventTypePaymentRecorded: notificationService.HandlePaymentRecorded,
		domain.EventTypePaymentReverted: notificationService.HandlePaymentReverted,
	}
	for eventType, handle := range subscriptions {
		if err := eventSubscriber.Subscribe(ctx, eventType, handle); err != nil {
			logger.Fatal("failed to subscribe to events", zap.Error(err), zap.String("event_type", eventType))
		}
	}

	// Entries claimed by a drainer that died before acking.
	recovered, err := outbox.Recover(ctx)
	if err != nil {
		logger.Fatal("failed to recover audit outbox", zap.Error(err))
	}
	if recovered > 0 {
		logger.Warn("requeued unacknowledged audit entries", zap.Int("count", recovered))
	}

	logger.Info("worker started",
		zap.String("consumer", consumerName),
		zap.Duration("outbox_drain_interval", cfg.Worker.OutboxDrainInterval),
	)

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down worker...")
		cancel()
	}()

	go drainOutbox(ctx, relay, outbox, cfg.Worker, logger)

	// Start processing events
	if err := eventSubscriber.Start(ctx); err != nil {
		logger.Info("worker stopped", zap.Error(err))
	}

	logger.Info("worker exited")
}

func drainOutbox(ctx context.Context, relay *service.AuditRelay, outbox *redisrepository.RedisAuditOutbox, cfg config.WorkerConfig, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.OutboxDrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := relay.Drain(ctx, cfg.OutboxBatchSize)
			if err != nil && ctx.Err() == nil {
				logger.Error("audit outbox drain failed", zap.Error(err), zap.Int("replayed", n))
				continue
			}
			backlog, err := outbox.Len(ctx)
			if err != nil {
				logger.Warn("failed to read audit outbox backlog", zap.Error(err))
			}
			if n > 0 || backlog > 0 {
				logger.Info("audit outbox drained", zap.Int("replayed", n), zap.Int64("backlog", backlog))
			}
		}
	}
}
