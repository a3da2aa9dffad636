package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	streamPrefix    = "ledger:events:"
	streamMaxLength = 100000 // Keep last 100k events per stream
)

func streamKey(eventType string) string {
	return streamPrefix + eventType
}

// RedisEventPublisher appends ledger events to one Redis stream per event
// type.
type RedisEventPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisEventPublisher(client *redis.Client, logger *zap.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{
		client: client,
		logger: logger,
	}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	values, err := encodeEvent(event)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: streamKey(event.GetEventType()),
		MaxLen: streamMaxLength,
		Approx: true,
		Values: values,
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		p.logger.Error("failed to publish event",
			zap.Error(err),
			zap.String("event_type", event.GetEventType()),
			zap.String("event_id", event.GetEventID()),
			zap.String("loan_id", event.GetAggregateID()),
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
		zap.String("stream", args.Stream),
	)

	return nil
}

func encodeEvent(event domain.DomainEvent) (map[string]interface{}, error) {
	eventData, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return map[string]interface{}{
		"event_id":     event.GetEventID(),
		"event_type":   event.GetEventType(),
		"aggregate_id": event.GetAggregateID(),
		"occurred_at":  event.GetOccurredAt().Unix(),
		"data":         string(eventData),
	}, nil
}
