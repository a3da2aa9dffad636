package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gigmile/loan-ledger/internal/domain"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultGroupName = "ledger-notifiers"

// RedisEventSubscriber consumes ledger event streams through a consumer
// group. Handlers must be registered before Start.
type RedisEventSubscriber struct {
	client       *redis.Client
	logger       *zap.Logger
	handlers     map[string]domain.EventHandler
	consumerName string
	groupName    string
}

func NewRedisEventSubscriber(client *redis.Client, logger *zap.Logger, consumerName string) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client:       client,
		logger:       logger,
		handlers:     make(map[string]domain.EventHandler),
		consumerName: consumerName,
		groupName:    defaultGroupName,
	}
}

func (s *RedisEventSubscriber) Subscribe(ctx context.Context, eventType string, handler domain.EventHandler) error {
	s.handlers[eventType] = handler

	stream := streamKey(eventType)

	// Create consumer group if doesn't exist
	err := s.client.XGroupCreateMkStream(ctx, stream, s.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.logger.Info("subscribed to event",
		zap.String("event_type", eventType),
		zap.String("stream", stream),
		zap.String("group", s.groupName),
	)

	return nil
}

func (s *RedisEventSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting event subscriber",
		zap.String("consumer", s.consumerName),
		zap.String("group", s.groupName),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping event subscriber")
			return nil
		default:
			if err := s.processEvents(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("error processing events", zap.Error(err))
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (s *RedisEventSubscriber) processEvents(ctx context.Context) error {
	for eventType := range s.handlers {
		stream := streamKey(eventType)

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.groupName,
			Consumer: s.consumerName,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    1 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("failed to read from stream: %w", err)
		}

		for _, st := range streams {
			for _, message := range st.Messages {
				if err := s.handleMessage(ctx, eventType, message); err != nil {
					// Left pending for redelivery.
					s.logger.Error("failed to handle message",
						zap.Error(err),
						zap.String("message_id", message.ID),
						zap.String("stream", stream),
					)
					continue
				}

				s.client.XAck(ctx, stream, s.groupName, message.ID)
			}
		}
	}

	return nil
}

func (s *RedisEventSubscriber) handleMessage(ctx context.Context, eventType string, message redis.XMessage) error {
	handler, exists := s.handlers[eventType]
	if !exists {
		return fmt.Errorf("no handler for event type: %s", eventType)
	}

	eventData, ok := message.Values["data"].(string)
	if !ok {
		return fmt.Errorf("invalid event data format")
	}

	event, err := decodeEvent(eventType, eventData)
	if err != nil {
		return err
	}
	return handler(ctx, event)
}

func decodeEvent(eventType, data string) (domain.DomainEvent, error) {
	switch eventType {
	case domain.EventTypePaymentRecorded, domain.EventTypePaymentReverted:
		var e domain.PaymentEvent
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		if e.EventType != eventType {
			return nil, fmt.Errorf("event %s published on %s stream", e.EventType, eventType)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
