package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceWebhook  Source = "webhook"
	SourcePoll     Source = "poll"
	SourceCheckout Source = "checkout"
	SourceAdmin    Source = "admin"
)

// Trigger is one observation of a payment's status from any channel.
// The record is located by PaymentId when set, otherwise by OrderId and then ExternalId.
type Trigger struct {
	Source     Source
	PaymentId  uuid.UUID
	OrderId    string
	ExternalId string
	Status     gateway.StandardStatus
	Payload    []byte
	Reason     string
}

type Outcome struct {
	Payment  *entity.PaymentRecord
	Previous entity.PaymentStatus
	// Applied is true only for the single caller that moved the record.
	Applied bool
	// Conflict is true when another writer won the race.
	Conflict bool
}

type PollResult struct {
	Payment *entity.PaymentRecord
	// Stale means the PSP could not be reached and Payment is the last known state.
	Stale     bool
	Throttled bool
}

// LedgerCrediter credits the instructor inside the reconciling transaction.
type LedgerCrediter interface {
	Credit(ctx context.Context, uow unitofwork.UnitOfWork, instructorId uuid.UUID, amount decimal.Decimal, paymentId uuid.UUID) error
}

type Engine struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    gateway.Gateway
	ledger     LedgerCrediter
	publisher  notify.Publisher
	guard      PollGuard
	logger     logger.ILogger
	now        func() time.Time
}

type Option func(*Engine)

func WithPollGuard(g PollGuard) Option {
	return func(e *Engine) { e.guard = g }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.Gateway,
	ledger LedgerCrediter,
	publisher notify.Publisher,
	log logger.ILogger,
	opts ...Option,
) *Engine {
	e := &Engine{
		uowFactory: uowFactory,
		gateway:    gw,
		ledger:     ledger,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile applies one observation. Exactly one concurrent caller can move a PENDING record;
// everyone else gets Applied=false and no side effects.
func (e *Engine) Reconcile(ctx context.Context, t Trigger) (*Outcome, error) {
	uow := e.uowFactory.NewUnitOfWork(ctx)

	payment, err := e.locate(ctx, uow.PaymentRepository(), t)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NotFound("PAYMENT_NOT_FOUND", "payment not found", entity.ErrPaymentNotFound)
	}

	out := &Outcome{Payment: payment, Previous: payment.Status}
	if payment.Status.IsTerminal() {
		return out, nil
	}

	next, changed := Transition(payment.Status, t.Status)
	if !changed {
		return out, nil
	}

	applied, err := e.apply(ctx, uow, payment, next, t)
	if err != nil {
		return nil, err
	}

	if !applied {
		e.logger.Info("RECONCILE", "Payment already reconciled by another writer", map[string]interface{}{
			"payment_id": payment.Id.String(),
			"source":     string(t.Source),
			"reported":   string(t.Status),
		})
		out.Conflict = true
		if current, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: payment.Id}); err == nil && current != nil {
			out.Payment = current
		}
		return out, nil
	}

	payment.Status = next
	out.Applied = true
	e.logger.Info("RECONCILE", "Payment transitioned", map[string]interface{}{
		"payment_id": payment.Id.String(),
		"from":       string(out.Previous),
		"to":         string(next),
		"source":     string(t.Source),
	})

	e.publisher.PublishPaymentStatus(ctx, payment, string(t.Source))
	return out, nil
}

func (e *Engine) locate(ctx context.Context, repo contract.PaymentRepository, t Trigger) (*entity.PaymentRecord, error) {
	if t.PaymentId != uuid.Nil {
		return repo.FindOne(ctx, specification.ByID{ID: t.PaymentId})
	}
	for _, ref := range []string{t.OrderId, t.ExternalId} {
		if ref == "" {
			continue
		}
		payment, err := repo.FindOne(ctx, specification.ByExternalReference{Reference: ref})
		if err != nil || payment != nil {
			return payment, err
		}
	}
	return nil, nil
}

// apply runs the conditional update and, for the winner, every downstream effect in one transaction.
func (e *Engine) apply(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.PaymentRecord, next entity.PaymentStatus, t Trigger) (bool, error) {
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	change := contract.StatusChange{Reason: t.Reason}
	if change.Reason == "" {
		change.Reason = fmt.Sprintf("%s reported %s", t.Source, t.Status)
	}
	payment.StatusReason = change.Reason
	if next == entity.PaymentStatusCompleted {
		completedAt := e.now()
		change.CompletedAt = &completedAt
		payment.CompletedAt = &completedAt
	}

	won, err := uow.PaymentRepository().CompareAndSetStatus(ctx, payment.Id, entity.PaymentStatusPending, next, change)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	if !won {
		return false, nil
	}

	if err := e.recordGatewayData(ctx, uow, payment, t); err != nil {
		return false, err
	}

	if next == entity.PaymentStatusCompleted {
		if err := e.grant(ctx, uow, payment); err != nil {
			return false, err
		}
	}

	if err := e.syncSubscription(ctx, uow, payment, next); err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return true, nil
}

func (e *Engine) recordGatewayData(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.PaymentRecord, t Trigger) error {
	var externalId *string
	if t.ExternalId != "" && (payment.ExternalPaymentId == nil || *payment.ExternalPaymentId == "") {
		externalId = &t.ExternalId
		payment.ExternalPaymentId = externalId
	}
	if externalId == nil && len(t.Payload) == 0 {
		return nil
	}
	if err := uow.PaymentRepository().UpdateGatewayData(ctx, payment.Id, externalId, nil, t.Payload); err != nil {
		return fmt.Errorf("failed to store gateway payload: %w", err)
	}
	return nil
}

// grant performs the COMPLETED side effects. Each is idempotent on its own unique key as well.
func (e *Engine) grant(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.PaymentRecord) error {
	if _, err := uow.EnrollmentRepository().Grant(ctx, &entity.CourseAccess{
		UserId:    payment.UserId,
		CourseId:  payment.CourseId,
		PaymentId: payment.Id,
		GrantedAt: e.now(),
	}); err != nil {
		return fmt.Errorf("failed to grant enrollment: %w", err)
	}

	if payment.InstructorAmount.IsPositive() {
		if err := e.ledger.Credit(ctx, uow, payment.InstructorId, payment.InstructorAmount, payment.Id); err != nil {
			return fmt.Errorf("failed to credit instructor: %w", err)
		}
	}

	if payment.CouponId != nil {
		if _, err := uow.CouponRepository().RecordUsage(ctx, &entity.CouponUsage{
			CouponId:  *payment.CouponId,
			UserId:    payment.UserId,
			PaymentId: payment.Id,
		}); err != nil {
			return fmt.Errorf("failed to record coupon usage: %w", err)
		}
	}
	return nil
}

func (e *Engine) syncSubscription(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.PaymentRecord, next entity.PaymentStatus) error {
	if payment.SubscriptionId == nil {
		return nil
	}

	var target entity.SubscriptionStatus
	switch next {
	case entity.PaymentStatusCompleted:
		target = entity.SubscriptionStatusAuthorized
	case entity.PaymentStatusFailed, entity.PaymentStatusCancelled:
		target = entity.SubscriptionStatusCancelled
	default:
		return nil
	}

	_, err := uow.SubscriptionRepository().CompareAndSetStatus(ctx, *payment.SubscriptionId,
		[]entity.SubscriptionStatus{entity.SubscriptionStatusPending}, target)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	return nil
}

// Poll answers a status query. Terminal records are served from the store without a PSP call;
// a PSP failure returns the stored state untouched.
func (e *Engine) Poll(ctx context.Context, paymentId uuid.UUID) (*PollResult, error) {
	uow := e.uowFactory.NewUnitOfWork(ctx)
	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NotFound("PAYMENT_NOT_FOUND", "payment not found", entity.ErrPaymentNotFound)
	}
	if payment.Status.IsTerminal() {
		return &PollResult{Payment: payment}, nil
	}

	if e.guard != nil {
		ok, err := e.guard.Acquire(ctx, paymentId)
		if err == nil && !ok {
			return &PollResult{Payment: payment, Throttled: true}, nil
		}
	}

	status, chargeId, err := e.lookup(ctx, payment)
	if err != nil {
		level := e.logger.Warn
		if errors.Is(err, gateway.ErrNotFound) {
			level = e.logger.Info
		}
		level("RECONCILE", "Gateway status lookup failed", map[string]interface{}{
			"payment_id": paymentId.String(),
			"error":      err.Error(),
		})
		return &PollResult{Payment: payment, Stale: true}, nil
	}

	out, err := e.Reconcile(ctx, Trigger{Source: SourcePoll, PaymentId: paymentId, ExternalId: chargeId, Status: status})
	if err != nil {
		return nil, err
	}
	return &PollResult{Payment: out.Payment}, nil
}

// lookup asks the PSP for the payment's status. A subscription payment with no charge on
// record is resolved through its subscription, which also yields the charge id.
func (e *Engine) lookup(ctx context.Context, payment *entity.PaymentRecord) (gateway.StandardStatus, string, error) {
	if payment.PaymentType == entity.PaymentTypeSubscription &&
		(payment.ExternalPaymentId == nil || *payment.ExternalPaymentId == "") &&
		payment.ExternalOrderId != nil {
		sub, err := e.gateway.GetSubscriptionStatus(ctx, *payment.ExternalOrderId)
		if err != nil {
			return gateway.StatusPending, "", err
		}
		return sub.Status, sub.ChargeId, nil
	}

	status, err := e.gateway.GetPaymentStatus(ctx, payment.GatewayReference())
	return status, "", err
}

// ErrUnknownPayment is returned for a notification whose payment is not stored yet. The
// checkout may still be committing, so the caller should retry for a while before dropping it.
var ErrUnknownPayment = errors.New("notification for a payment that is not stored")

// HandleWebhook reconciles a verified notification.
func (e *Engine) HandleWebhook(ctx context.Context, res *gateway.WebhookResult) error {
	_, err := e.Reconcile(ctx, Trigger{
		Source:     SourceWebhook,
		OrderId:    res.OrderId,
		ExternalId: res.ExternalId,
		Status:     res.Status,
		Payload:    res.Payload,
		Reason:     "webhook: " + res.ProviderStatus,
	})
	if apperror.Is(err, apperror.KindNotFound) {
		e.logger.Info("RECONCILE", "Webhook for unknown payment", map[string]interface{}{
			"order_id":    res.OrderId,
			"external_id": res.ExternalId,
		})
		return fmt.Errorf("%w: order %q", ErrUnknownPayment, res.OrderId)
	}
	return err
}

// AdminOverride settles a PENDING payment by hand through the same guarded path.
func (e *Engine) AdminOverride(ctx context.Context, paymentId uuid.UUID, status gateway.StandardStatus, reason string) (*Outcome, error) {
	switch status {
	case gateway.StatusApproved, gateway.StatusRejected, gateway.StatusCancelled:
	default:
		return nil, apperror.Validation("INVALID_OVERRIDE_STATUS", "override status must be APPROVED, REJECTED or CANCELLED")
	}

	out, err := e.Reconcile(ctx, Trigger{
		Source:    SourceAdmin,
		PaymentId: paymentId,
		Status:    status,
		Reason:    "admin override: " + reason,
	})
	if err != nil {
		return nil, err
	}
	if !out.Applied {
		return out, apperror.Ineligible("PAYMENT_NOT_PENDING", "payment is no longer pending")
	}
	return out, nil
}
