package redisrepository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/go-redis/redis/v8"
)

const (
	auditPendingKey    = "audit:outbox:pending"
	auditProcessingKey = "audit:outbox:processing"
)

// RedisAuditOutbox parks audit entries whose post-commit append failed.
// Claimed entries move to a processing list so a crashed drainer does not
// lose them.
type RedisAuditOutbox struct {
	client *redis.Client
}

func NewRedisAuditOutbox(client *redis.Client) *RedisAuditOutbox {
	return &RedisAuditOutbox{
		client: client,
	}
}

func (r *RedisAuditOutbox) Push(ctx context.Context, entry *domain.AuditLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := r.client.RPush(ctx, auditPendingKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push audit entry: %w", err)
	}

	return nil
}

func (r *RedisAuditOutbox) Claim(ctx context.Context) (*domain.OutboxItem, error) {
	raw, err := r.client.LMove(ctx, auditPendingKey, auditProcessingKey, "LEFT", "RIGHT").Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim audit entry: %w", err)
	}

	var entry domain.AuditLog
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// Drop the poison entry from processing so it does not block the drain.
		r.client.LRem(ctx, auditProcessingKey, 1, raw)
		return nil, fmt.Errorf("failed to unmarshal audit entry: %w", err)
	}

	return &domain.OutboxItem{Entry: &entry, Receipt: raw}, nil
}

func (r *RedisAuditOutbox) Ack(ctx context.Context, item *domain.OutboxItem) error {
	if err := r.client.LRem(ctx, auditProcessingKey, 1, item.Receipt).Err(); err != nil {
		return fmt.Errorf("failed to ack audit entry: %w", err)
	}
	return nil
}

func (r *RedisAuditOutbox) Requeue(ctx context.Context, item *domain.OutboxItem) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, auditProcessingKey, 1, item.Receipt)
		pipe.RPush(ctx, auditPendingKey, item.Receipt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to requeue audit entry: %w", err)
	}
	return nil
}

// Len reports how many entries are waiting to be drained.
func (r *RedisAuditOutbox) Len(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, auditPendingKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read audit outbox length: %w", err)
	}
	return n, nil
}

// Recover returns entries left in processing by a drainer that died before
// acking them. Call it once at startup, before draining.
func (r *RedisAuditOutbox) Recover(ctx context.Context) (int, error) {
	recovered := 0
	for {
		err := r.client.LMove(ctx, auditProcessingKey, auditPendingKey, "RIGHT", "LEFT").Err()
		if err == redis.Nil {
			return recovered, nil
		}
		if err != nil {
			return recovered, fmt.Errorf("failed to recover audit entries: %w", err)
		}
		recovered++
	}
}
