// Package refund runs the refund request lifecycle on top of completed payments.
package refund

import (
	"context"
	"fmt"
	"strings"
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
)

var errAlreadyRequested = apperror.Ineligible("REFUND_ALREADY_REQUESTED", "a refund for this payment already exists")

// Reverser takes back the instructor credit of a refunded payment inside the caller's transaction.
type Reverser interface {
	Reverse(ctx context.Context, uow unitofwork.UnitOfWork, paymentId uuid.UUID) error
}

const settleBatch = 50

type Workflow struct {
	uowFactory  unitofwork.RepositoryFactory
	gateway     gateway.Gateway
	ledger      Reverser
	publisher   notify.Publisher
	window      time.Duration
	settleAfter time.Duration
	logger      logger.ILogger
}

type Option func(*Workflow)

// WithSettleAfter sets how long a request may sit in APPROVED before SettleApproved retries it.
func WithSettleAfter(d time.Duration) Option {
	return func(w *Workflow) { w.settleAfter = d }
}

func NewWorkflow(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.Gateway,
	ledger Reverser,
	publisher notify.Publisher,
	window time.Duration,
	log logger.ILogger,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		uowFactory:  uowFactory,
		gateway:     gw,
		ledger:      ledger,
		publisher:   publisher,
		window:      window,
		settleAfter: 10 * time.Minute,
		logger:      log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Create opens a refund request. The window is inclusive: a payment made exactly
// window ago is still refundable.
func (w *Workflow) Create(ctx context.Context, userId, paymentId uuid.UUID, reason string, now time.Time) (*entity.RefundRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("REASON_REQUIRED", "refund reason is required")
	}

	uow := w.uowFactory.NewUnitOfWork(ctx)
	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return nil, err
	}
	if payment == nil || payment.UserId != userId {
		return nil, apperror.NotFound("PAYMENT_NOT_FOUND", "payment not found", entity.ErrPaymentNotFound)
	}
	if payment.Status != entity.PaymentStatusCompleted {
		return nil, apperror.Ineligible("PAYMENT_NOT_COMPLETED", "only completed payments can be refunded")
	}
	if now.Sub(payment.CreatedAt) > w.window {
		return nil, apperror.Ineligible("REFUND_WINDOW_EXPIRED",
			fmt.Sprintf("refunds must be requested within %d days of purchase", int(w.window.Hours()/24)))
	}

	existing, err := uow.RefundRepository().FindAll(ctx, specification.ByPaymentID{PaymentID: paymentId})
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Status.BlocksNewRequest() {
			return nil, errAlreadyRequested
		}
	}

	refund := &entity.RefundRequest{
		Id:          uuid.New(),
		PaymentId:   paymentId,
		UserId:      userId,
		Amount:      payment.Amount,
		Reason:      reason,
		Status:      entity.RefundStatusPending,
		RequestedAt: now,
	}
	inserted, err := uow.RefundRepository().Create(ctx, refund)
	if err != nil {
		return nil, fmt.Errorf("failed to create refund request: %w", err)
	}
	if !inserted {
		return nil, errAlreadyRequested
	}

	w.logger.Info("REFUND", "Refund requested", map[string]interface{}{
		"refund_id":  refund.Id.String(),
		"payment_id": paymentId.String(),
		"user_id":    userId.String(),
	})
	w.publisher.PublishRefund(ctx, notify.EventRefundRequested, refund)
	return refund, nil
}

func (w *Workflow) Cancel(ctx context.Context, userId, refundId uuid.UUID) (*entity.RefundRequest, error) {
	refund, err := w.load(ctx, refundId)
	if err != nil {
		return nil, err
	}
	if refund.UserId != userId {
		return nil, apperror.NotFound("REFUND_NOT_FOUND", "refund request not found", entity.ErrRefundNotFound)
	}
	return w.move(ctx, refund, entity.RefundStatusPending, entity.RefundStatusCancelled, refund.Notes, "")
}

func (w *Workflow) Reject(ctx context.Context, refundId uuid.UUID, notes string) (*entity.RefundRequest, error) {
	refund, err := w.load(ctx, refundId)
	if err != nil {
		return nil, err
	}
	return w.move(ctx, refund, entity.RefundStatusPending, entity.RefundStatusRejected, notes, notify.EventRefundRejected)
}

// Approve refunds the payment at the PSP and then, in one transaction, marks the payment
// REFUNDED, reverses the instructor credit, revokes access and closes the request.
// A PSP failure leaves the payment COMPLETED and the request FAILED. A local failure after
// the PSP accepted the refund leaves the request APPROVED for ResumeSettlement.
func (w *Workflow) Approve(ctx context.Context, refundId uuid.UUID, notes string) (*entity.RefundRequest, error) {
	refund, err := w.load(ctx, refundId)
	if err != nil {
		return nil, err
	}
	payment, err := w.payment(ctx, refund.PaymentId)
	if err != nil {
		return nil, err
	}

	refund, err = w.move(ctx, refund, entity.RefundStatusPending, entity.RefundStatusApproved, notes, notify.EventRefundApproved)
	if err != nil {
		return nil, err
	}
	return w.complete(ctx, refund, payment, refund.Notes, false)
}

// ResumeSettlement finishes an APPROVED request whose earlier attempt stopped between the
// PSP call and the local settlement.
func (w *Workflow) ResumeSettlement(ctx context.Context, refundId uuid.UUID) (*entity.RefundRequest, error) {
	refund, err := w.load(ctx, refundId)
	if err != nil {
		return nil, err
	}
	if refund.Status != entity.RefundStatusApproved {
		return nil, apperror.Ineligible("REFUND_NOT_APPROVED", "refund request is not awaiting settlement")
	}
	payment, err := w.payment(ctx, refund.PaymentId)
	if err != nil {
		return nil, err
	}
	return w.complete(ctx, refund, payment, refund.Notes, true)
}

// SettleApproved resumes every request that has been APPROVED for longer than settleAfter.
func (w *Workflow) SettleApproved(ctx context.Context, now time.Time) (int, error) {
	stuck, err := w.uowFactory.NewUnitOfWork(ctx).RefundRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.RefundStatusApproved)},
		specification.UpdatedBefore{Before: now.Add(-w.settleAfter)},
		specification.Pagination{Limit: settleBatch},
	)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, refund := range stuck {
		if _, err := w.ResumeSettlement(ctx, refund.Id); err != nil {
			w.logger.Warn("REFUND", "Settlement retry failed", map[string]interface{}{
				"refund_id": refund.Id.String(),
				"error":     err.Error(),
			})
			continue
		}
		settled++
	}
	return settled, nil
}

func (w *Workflow) complete(ctx context.Context, refund *entity.RefundRequest, payment *entity.PaymentRecord, notes string, resuming bool) (*entity.RefundRequest, error) {
	if err := w.refundAtGateway(ctx, refund, payment, resuming); err != nil {
		w.logger.Error("REFUND", "Gateway refund failed", map[string]interface{}{
			"refund_id":  refund.Id.String(),
			"payment_id": payment.Id.String(),
			"error":      err.Error(),
		})
		if _, moveErr := w.move(ctx, refund, entity.RefundStatusApproved, entity.RefundStatusFailed,
			appendNote(notes, "gateway: "+err.Error()), notify.EventRefundFailed); moveErr != nil {
			w.logger.Error("REFUND", "Failed to mark refund as failed", map[string]interface{}{
				"refund_id": refund.Id.String(),
				"error":     moveErr.Error(),
			})
		}
		return nil, apperror.Gateway("refund was not accepted by the payment provider", err)
	}

	processedAt := time.Now()
	if err := w.settle(ctx, refund, payment, notes, processedAt); err != nil {
		w.logger.Error("REFUND", "Refund accepted by gateway but not settled", map[string]interface{}{
			"refund_id":  refund.Id.String(),
			"payment_id": payment.Id.String(),
			"error":      err.Error(),
		})
		return nil, err
	}

	refund.Status = entity.RefundStatusProcessed
	refund.ProcessedAt = &processedAt
	payment.Status = entity.PaymentStatusRefunded

	w.logger.Info("REFUND", "Refund processed", map[string]interface{}{
		"refund_id":  refund.Id.String(),
		"payment_id": payment.Id.String(),
		"amount":     refund.Amount.StringFixed(2),
		"resumed":    resuming,
	})
	w.publisher.PublishPaymentStatus(ctx, payment, "refund")
	return refund, nil
}

// refundAtGateway asks the PSP to refund, keyed by the request id. A resumed attempt first
// checks whether the PSP already refunded the payment.
func (w *Workflow) refundAtGateway(ctx context.Context, refund *entity.RefundRequest, payment *entity.PaymentRecord, resuming bool) error {
	if resuming {
		status, err := w.gateway.GetPaymentStatus(ctx, payment.GatewayReference())
		if err == nil && status == gateway.StatusRefunded {
			return nil
		}
	}
	return w.gateway.RefundPayment(ctx, gateway.RefundRequest{
		Reference: payment.GatewayReference(),
		RefundKey: refund.Id.String(),
		Amount:    refund.Amount,
		Reason:    refund.Reason,
	})
}

func (w *Workflow) settle(ctx context.Context, refund *entity.RefundRequest, payment *entity.PaymentRecord, notes string, processedAt time.Time) error {
	uow := w.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	ok, err := uow.PaymentRepository().CompareAndSetStatus(ctx, payment.Id,
		entity.PaymentStatusCompleted, entity.PaymentStatusRefunded,
		contract.StatusChange{Reason: "refund " + refund.Id.String()})
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}
	if !ok {
		return apperror.Conflict("PAYMENT_NOT_COMPLETED", "payment is no longer completed", entity.ErrReconciliationConflict)
	}

	if err := w.ledger.Reverse(ctx, uow, payment.Id); err != nil {
		return fmt.Errorf("failed to reverse instructor credit: %w", err)
	}
	if err := uow.EnrollmentRepository().Revoke(ctx, payment.UserId, payment.CourseId); err != nil {
		return fmt.Errorf("failed to revoke course access: %w", err)
	}

	ok, err = uow.RefundRepository().CompareAndSetStatus(ctx, refund.Id,
		entity.RefundStatusApproved, entity.RefundStatusProcessed, notes, &processedAt)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Conflict("REFUND_NOT_APPROVED", "refund request changed concurrently", entity.ErrReconciliationConflict)
	}

	return uow.Commit()
}

func (w *Workflow) List(ctx context.Context, status string, page, size int) ([]*entity.RefundRequest, int64, error) {
	var filters []specification.Specification
	if status != "" {
		filters = append(filters, specification.ByStatus{Status: strings.ToUpper(status)})
	}
	return w.list(ctx, filters, page, size)
}

func (w *Workflow) ListForUser(ctx context.Context, userId uuid.UUID, page, size int) ([]*entity.RefundRequest, int64, error) {
	return w.list(ctx, []specification.Specification{specification.UserOwnedBy{UserID: userId}}, page, size)
}

func (w *Workflow) list(ctx context.Context, filters []specification.Specification, page, size int) ([]*entity.RefundRequest, int64, error) {
	repo := w.uowFactory.NewUnitOfWork(ctx).RefundRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}
	refunds, err := repo.FindAll(ctx, append(filters, specification.Page(page, size))...)
	if err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

func (w *Workflow) payment(ctx context.Context, paymentId uuid.UUID) (*entity.PaymentRecord, error) {
	payment, err := w.uowFactory.NewUnitOfWork(ctx).PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NotFound("PAYMENT_NOT_FOUND", "payment not found", entity.ErrPaymentNotFound)
	}
	return payment, nil
}

func (w *Workflow) load(ctx context.Context, refundId uuid.UUID) (*entity.RefundRequest, error) {
	refund, err := w.uowFactory.NewUnitOfWork(ctx).RefundRepository().FindOne(ctx, specification.ByID{ID: refundId})
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, apperror.NotFound("REFUND_NOT_FOUND", "refund request not found", entity.ErrRefundNotFound)
	}
	return refund, nil
}

// move performs a guarded status change and publishes eventType when it is non-empty.
func (w *Workflow) move(ctx context.Context, refund *entity.RefundRequest, from, to entity.RefundStatus, notes, eventType string) (*entity.RefundRequest, error) {
	var processedAt *time.Time
	if to == entity.RefundStatusRejected || to == entity.RefundStatusFailed || to == entity.RefundStatusCancelled {
		now := time.Now()
		processedAt = &now
	}

	ok, err := w.uowFactory.NewUnitOfWork(ctx).RefundRepository().CompareAndSetStatus(ctx, refund.Id, from, to, notes, processedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Ineligible("REFUND_NOT_"+string(from), fmt.Sprintf("refund request is not %s", strings.ToLower(string(from))))
	}

	refund.Status = to
	if notes != "" {
		refund.Notes = notes
	}
	refund.ProcessedAt = processedAt
	if eventType != "" {
		w.publisher.PublishRefund(ctx, eventType, refund)
	}
	return refund, nil
}

func appendNote(notes, extra string) string {
	if notes == "" {
		return extra
	}
	return notes + "\n" + extra
}
