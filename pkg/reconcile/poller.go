package reconcile

import (
	"context"
	"errors"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

var errStillPending = errors.New("payment still pending")

type PollPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     int
}

// Poller drives a single payment to a terminal state for channels that never call back.
type Poller struct {
	engine *Engine
	policy PollPolicy
	logger logger.ILogger
}

func NewPoller(engine *Engine, policy PollPolicy, log logger.ILogger) *Poller {
	return &Poller{engine: engine, policy: policy, logger: log}
}

// Run polls until the payment is terminal, the attempt budget is spent or ctx ends.
// On budget exhaustion the last known record is returned with the error; the stale sweep takes over.
func (p *Poller) Run(ctx context.Context, paymentId uuid.UUID) (*entity.PaymentRecord, error) {
	var last *entity.PaymentRecord

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.policy.InitialInterval
	b.MaxInterval = p.policy.MaxInterval

	operation := func() (*entity.PaymentRecord, error) {
		res, err := p.engine.Poll(ctx, paymentId)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		last = res.Payment
		if !res.Payment.Status.IsTerminal() {
			return nil, errStillPending
		}
		return res.Payment, nil
	}

	payment, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		return last, err
	}
	return payment, nil
}

// Watch runs the poll loop in the background.
func (p *Poller) Watch(ctx context.Context, paymentId uuid.UUID) {
	go func() {
		payment, err := p.Run(ctx, paymentId)
		if err == nil {
			p.logger.Debug("POLLER", "Payment settled", map[string]interface{}{
				"payment_id": paymentId.String(),
				"status":     string(payment.Status),
			})
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		p.logger.Warn("POLLER", "Stopped polling unsettled payment", map[string]interface{}{
			"payment_id": paymentId.String(),
			"attempts":   p.policy.MaxAttempts,
			"error":      err.Error(),
		})
	}()
}
