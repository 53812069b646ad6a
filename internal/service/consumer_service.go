package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/reconcile"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const WebhookTopic = "payment.webhooks"

// WebhookHandler reconciles a verified notification.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, res *gateway.WebhookResult) error
}

// RetryPolicy bounds how long a failing notification is retried before it is dropped.
// Dropped notifications are settled later by the poller and the stale sweep.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type IConsumerService interface {
	// Publish hands a verified notification to the consumer without waiting for reconciliation.
	Publish(res *gateway.WebhookResult) error
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	handler   WebhookHandler
	retry     middleware.Retry
	logger    logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, handler WebhookHandler, policy RetryPolicy, log logger.ILogger) IConsumerService {
	cs := &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		handler:   handler,
		logger:    log,
	}
	cs.retry = middleware.Retry{
		MaxRetries:      policy.MaxRetries,
		InitialInterval: policy.InitialInterval,
		MaxInterval:     policy.MaxInterval,
		Multiplier:      2,
		OnRetryHook: func(retryNum int, delay time.Duration) {
			cs.logger.Warn("WEBHOOK_CONSUMER", "Retrying webhook reconciliation", map[string]interface{}{
				"retry": retryNum,
				"delay": delay.String(),
			})
		},
	}
	return cs
}

func (cs *consumerService) Publish(res *gateway.WebhookResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return cs.pubSub.Publish(cs.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. Retries happen in place with backoff, never through Nack,
// because gochannel redelivers a nacked message immediately.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var res gateway.WebhookResult
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		cs.logger.Error("WEBHOOK_CONSUMER", "Failed to unmarshal webhook message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	msg.SetContext(ctx)
	handle := cs.retry.Middleware(func(m *message.Message) ([]*message.Message, error) {
		return nil, cs.handler.HandleWebhook(m.Context(), &res)
	})

	if _, err := handle(msg); err != nil {
		if errors.Is(err, reconcile.ErrUnknownPayment) {
			cs.logger.Warn("WEBHOOK_CONSUMER", "Dropped webhook for a payment that never appeared", map[string]interface{}{
				"message_id":  msg.UUID,
				"order_id":    res.OrderId,
				"external_id": res.ExternalId,
			})
			return
		}
		cs.logger.Error("WEBHOOK_CONSUMER", "Webhook reconciliation gave up, leaving payment to the poller", map[string]interface{}{
			"message_id":  msg.UUID,
			"order_id":    res.OrderId,
			"external_id": res.ExternalId,
			"error":       err.Error(),
		})
	}
}
