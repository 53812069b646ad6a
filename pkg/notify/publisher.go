package notify

import (
	"context"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/logger"
	pkgEvents "course-marketplace-be/pkg/events"
	pktNats "course-marketplace-be/pkg/nats"
)

const (
	EventPaymentCompleted = "PAYMENT_COMPLETED"
	EventPaymentFailed    = "PAYMENT_FAILED"
	EventPaymentCancelled = "PAYMENT_CANCELLED"
	EventPaymentRefunded  = "PAYMENT_REFUNDED"

	EventRefundRequested = "REFUND_REQUESTED"
	EventRefundApproved  = "REFUND_APPROVED"
	EventRefundRejected  = "REFUND_REJECTED"
	EventRefundFailed    = "REFUND_FAILED"

	EventPayoutRequested = "PAYOUT_REQUESTED"
)

// PaymentEventType names the event emitted when a payment lands in status.
func PaymentEventType(status entity.PaymentStatus) string {
	switch status {
	case entity.PaymentStatusCompleted:
		return EventPaymentCompleted
	case entity.PaymentStatusFailed:
		return EventPaymentFailed
	case entity.PaymentStatusCancelled:
		return EventPaymentCancelled
	case entity.PaymentStatusRefunded:
		return EventPaymentRefunded
	}
	return ""
}

// Publisher emits domain events. Publishing is fire-and-forget: failures are logged, never returned.
type Publisher interface {
	PublishPaymentStatus(ctx context.Context, payment *entity.PaymentRecord, source string)
	PublishRefund(ctx context.Context, eventType string, refund *entity.RefundRequest)
	PublishPayoutRequested(ctx context.Context, payout *entity.PayoutRequest)
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) PublishPaymentStatus(ctx context.Context, payment *entity.PaymentRecord, source string) {
	eventType := PaymentEventType(payment.Status)
	if eventType == "" {
		return
	}
	p.publish(ctx, eventType, PaymentPayload(payment, source))
}

func (p *NatsPublisher) PublishRefund(ctx context.Context, eventType string, refund *entity.RefundRequest) {
	p.publish(ctx, eventType, RefundPayload(refund))
}

func (p *NatsPublisher) PublishPayoutRequested(ctx context.Context, payout *entity.PayoutRequest) {
	now := time.Now()
	p.publish(ctx, EventPayoutRequested, map[string]interface{}{
		"payout_id":     payout.Id.String(),
		"instructor_id": payout.InstructorId.String(),
		"user_id":       payout.InstructorId.String(),
		"amount":        payout.Amount.StringFixed(2),
		"period":        payout.PeriodKey,
		"entity_type":   "payout",
		"entity_id":     payout.Id.String(),
		"occurred_at":   now,
	})
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func PaymentPayload(payment *entity.PaymentRecord, source string) map[string]interface{} {
	return map[string]interface{}{
		"payment_id":    payment.Id.String(),
		"user_id":       payment.UserId.String(),
		"course_id":     payment.CourseId.String(),
		"instructor_id": payment.InstructorId.String(),
		"status":        string(payment.Status),
		"amount":        payment.Amount.StringFixed(2),
		"currency":      payment.Currency,
		"source":        source,
		"entity_type":   "payment",
		"entity_id":     payment.Id.String(),
		"occurred_at":   time.Now(),
	}
}

func RefundPayload(refund *entity.RefundRequest) map[string]interface{} {
	return map[string]interface{}{
		"refund_id":   refund.Id.String(),
		"payment_id":  refund.PaymentId.String(),
		"user_id":     refund.UserId.String(),
		"status":      string(refund.Status),
		"amount":      refund.Amount.StringFixed(2),
		"reason":      refund.Reason,
		"notes":       refund.Notes,
		"entity_type": "refund",
		"entity_id":   refund.Id.String(),
		"occurred_at": time.Now(),
	}
}
