package refund_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/testutil"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/gateway/gatewaytest"
	"course-marketplace-be/pkg/ledger"
	"course-marketplace-be/pkg/notify"
	"course-marketplace-be/pkg/reconcile"
	"course-marketplace-be/pkg/refund"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const window = 7 * 24 * time.Hour

type harness struct {
	factory  unitofwork.RepositoryFactory
	gateway  *gatewaytest.Fake
	recorder *notify.Recorder
	ledger   *ledger.Ledger
	engine   *reconcile.Engine
	workflow *refund.Workflow

	studentId    uuid.UUID
	instructorId uuid.UUID
	courseId     uuid.UUID
}

func newHarness(t *testing.T) *harness {
	return newHarnessOn(t, testutil.NewTestDB(t))
}

func newHarnessOn(t *testing.T, db *gorm.DB) *harness {
	factory := unitofwork.NewRepositoryFactory(db)
	recorder := notify.NewRecorder()
	fake := gatewaytest.New()
	l := ledger.NewLedger(factory, ledger.Policy{HoldingPeriod: 14 * 24 * time.Hour, PayoutMinimum: decimal.NewFromInt(50)},
		recorder, logger.NewNopLogger())

	h := &harness{
		factory:  factory,
		gateway:  fake,
		recorder: recorder,
		ledger:   l,
		engine:   reconcile.NewEngine(factory, fake, l, recorder, logger.NewNopLogger()),
		workflow: refund.NewWorkflow(factory, fake, l, recorder, window, logger.NewNopLogger()),
	}
	h.studentId = testutil.SeedUser(t, db, entity.UserRoleStudent)
	h.instructorId = testutil.SeedUser(t, db, entity.UserRoleInstructor)
	h.courseId = testutil.SeedCourse(t, db, h.instructorId, "100")
	return h
}

// completed creates a payment at createdAt and settles it through the engine.
func (h *harness) completed(t *testing.T, createdAt time.Time) *entity.PaymentRecord {
	t.Helper()
	ctx := context.Background()
	p := testutil.PendingPayment(h.studentId, h.courseId, h.instructorId)
	p.CreatedAt = createdAt
	require.NoError(t, h.factory.NewUnitOfWork(ctx).PaymentRepository().Create(ctx, p))

	out, err := h.engine.Reconcile(ctx, reconcile.Trigger{Source: reconcile.SourceWebhook, PaymentId: p.Id, Status: gateway.StatusApproved})
	require.NoError(t, err)
	require.True(t, out.Applied)
	return out.Payment
}

func (h *harness) payment(t *testing.T, id uuid.UUID) *entity.PaymentRecord {
	t.Helper()
	p, err := h.factory.NewUnitOfWork(context.Background()).PaymentRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	return p
}

func TestCreate_WindowBoundary(t *testing.T) {
	purchased := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		code string
	}{
		{"same day", purchased.Add(time.Hour), ""},
		{"exactly day 7", purchased.Add(7 * 24 * time.Hour), ""},
		{"day 8", purchased.Add(8 * 24 * time.Hour), "REFUND_WINDOW_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			p := h.completed(t, purchased)

			r, err := h.workflow.Create(context.Background(), h.studentId, p.Id, "not what I expected", tt.now)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, entity.RefundStatusPending, r.Status)
				testutil.Amount(t, "100", r.Amount)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindIneligible))
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestCreate_Eligibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))

	_, err := h.workflow.Create(ctx, h.studentId, p.Id, "  ", now)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = h.workflow.Create(ctx, uuid.New(), p.Id, "mine now", now)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	first, err := h.workflow.Create(ctx, h.studentId, p.Id, "duplicate content", now)
	require.NoError(t, err)
	_, err = h.workflow.Create(ctx, h.studentId, p.Id, "again", now)
	assert.Equal(t, "REFUND_ALREADY_REQUESTED", apperror.CodeOf(err))

	_, err = h.workflow.Cancel(ctx, h.studentId, first.Id)
	require.NoError(t, err)
	_, err = h.workflow.Create(ctx, h.studentId, p.Id, "changed my mind twice", now)
	assert.NoError(t, err)

	pending := testutil.PendingPayment(h.studentId, h.courseId, h.instructorId)
	require.NoError(t, h.factory.NewUnitOfWork(ctx).PaymentRepository().Create(ctx, pending))
	_, err = h.workflow.Create(ctx, h.studentId, pending.Id, "not paid yet", now)
	assert.Equal(t, "PAYMENT_NOT_COMPLETED", apperror.CodeOf(err))

	assert.Equal(t, 2, h.recorder.Count(notify.EventRefundRequested))
}

func TestApprove_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))

	r, err := h.workflow.Create(ctx, h.studentId, p.Id, "wrong course", now)
	require.NoError(t, err)

	processed, err := h.workflow.Approve(ctx, r.Id, "ok")
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusProcessed, processed.Status)
	assert.NotNil(t, processed.ProcessedAt)

	assert.Equal(t, entity.PaymentStatusRefunded, h.payment(t, p.Id).Status)

	refunds := h.gateway.Refunds()
	require.Len(t, refunds, 1)
	assert.Equal(t, r.Id.String(), refunds[0].RefundKey)

	balance, err := h.ledger.GetBalance(ctx, h.instructorId)
	require.NoError(t, err)
	testutil.Amount(t, "0", balance.PendingBalance)
	testutil.Amount(t, "0", balance.TotalEarnings)

	enrolled, err := h.factory.NewUnitOfWork(ctx).EnrollmentRepository().Exists(ctx, h.studentId, h.courseId)
	require.NoError(t, err)
	assert.False(t, enrolled)

	assert.Equal(t, 1, h.recorder.Count(notify.EventRefundApproved))
	assert.Equal(t, 1, h.recorder.Count(notify.EventPaymentRefunded))

	_, err = h.workflow.Approve(ctx, r.Id, "again")
	assert.Equal(t, "REFUND_NOT_PENDING", apperror.CodeOf(err))
	assert.Len(t, h.gateway.Refunds(), 1)
}

func TestApprove_GatewayFailureKeepsPaymentCompleted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))
	h.gateway.RefundErr = errors.New("refund rejected by issuer")

	r, err := h.workflow.Create(ctx, h.studentId, p.Id, "wrong course", now)
	require.NoError(t, err)

	_, err = h.workflow.Approve(ctx, r.Id, "")
	assert.True(t, apperror.Is(err, apperror.KindGateway))

	assert.Equal(t, entity.PaymentStatusCompleted, h.payment(t, p.Id).Status)
	stored, err := h.factory.NewUnitOfWork(ctx).RefundRepository().FindOne(ctx, specification.ByID{ID: r.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusFailed, stored.Status)
	assert.Contains(t, stored.Notes, "refund rejected by issuer")
	assert.Equal(t, 1, h.recorder.Count(notify.EventRefundFailed))

	balance, err := h.ledger.GetBalance(ctx, h.instructorId)
	require.NoError(t, err)
	testutil.Amount(t, "80", balance.PendingBalance)
}

func TestReject_AndList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))

	r, err := h.workflow.Create(ctx, h.studentId, p.Id, "wrong course", now)
	require.NoError(t, err)

	rejected, err := h.workflow.Reject(ctx, r.Id, "course was completed")
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusRejected, rejected.Status)
	assert.Equal(t, 1, h.recorder.Count(notify.EventRefundRejected))

	_, err = h.workflow.Cancel(ctx, h.studentId, r.Id)
	assert.True(t, apperror.Is(err, apperror.KindIneligible))

	items, total, err := h.workflow.List(ctx, "rejected", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "course was completed", items[0].Notes)

	mine, total, err := h.workflow.ListForUser(ctx, h.studentId, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, mine, 1)

	_, total, err = h.workflow.List(ctx, "pending", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreate_ConcurrentRequestsOpenOne(t *testing.T) {
	h := newHarnessOn(t, testutil.NewConcurrentTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.workflow.Create(ctx, h.studentId, p.Id, "double click", now)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, "REFUND_ALREADY_REQUESTED", apperror.CodeOf(err))
	}
	assert.Equal(t, 1, created)

	_, total, err := h.workflow.List(ctx, "pending", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRefundStore_OneOpenRequestPerPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))
	repo := h.factory.NewUnitOfWork(ctx).RefundRepository()

	request := func(status entity.RefundStatus) *entity.RefundRequest {
		return &entity.RefundRequest{
			Id:          uuid.New(),
			PaymentId:   p.Id,
			UserId:      h.studentId,
			Amount:      p.Amount,
			Reason:      "store level",
			Status:      status,
			RequestedAt: now,
		}
	}

	ok, err := repo.Create(ctx, request(entity.RefundStatusCancelled))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Create(ctx, request(entity.RefundStatusPending))
	require.NoError(t, err)
	assert.True(t, ok)

	for _, status := range []entity.RefundStatus{entity.RefundStatusPending, entity.RefundStatusApproved, entity.RefundStatusProcessed} {
		ok, err = repo.Create(ctx, request(status))
		require.NoError(t, err)
		assert.False(t, ok, string(status))
	}

	ok, err = repo.Create(ctx, request(entity.RefundStatusRejected))
	require.NoError(t, err)
	assert.True(t, ok)
}

// flakyReverser fails the first failures calls, then delegates.
type flakyReverser struct {
	inner    refund.Reverser
	mu       sync.Mutex
	failures int
}

func (f *flakyReverser) Reverse(ctx context.Context, uow unitofwork.UnitOfWork, paymentId uuid.UUID) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("ledger unavailable")
	}
	f.mu.Unlock()
	return f.inner.Reverse(ctx, uow, paymentId)
}

func TestApprove_LocalFailureIsSettledLater(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))
	wf := refund.NewWorkflow(h.factory, h.gateway, &flakyReverser{inner: h.ledger, failures: 1}, h.recorder, window,
		logger.NewNopLogger(), refund.WithSettleAfter(time.Minute))

	r, err := wf.Create(ctx, h.studentId, p.Id, "wrong course", now)
	require.NoError(t, err)

	_, err = wf.Approve(ctx, r.Id, "ok")
	require.Error(t, err)

	stored, err := h.factory.NewUnitOfWork(ctx).RefundRepository().FindOne(ctx, specification.ByID{ID: r.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusApproved, stored.Status)
	assert.Equal(t, entity.PaymentStatusCompleted, h.payment(t, p.Id).Status)
	require.Len(t, h.gateway.Refunds(), 1)

	n, err := wf.SettleApproved(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, n, "too recent to retry")

	n, err = wf.SettleApproved(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err = h.factory.NewUnitOfWork(ctx).RefundRepository().FindOne(ctx, specification.ByID{ID: r.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusProcessed, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Equal(t, entity.PaymentStatusRefunded, h.payment(t, p.Id).Status)
	assert.Len(t, h.gateway.Refunds(), 1)

	balance, err := h.ledger.GetBalance(ctx, h.instructorId)
	require.NoError(t, err)
	testutil.Amount(t, "0", balance.PendingBalance)

	enrolled, err := h.factory.NewUnitOfWork(ctx).EnrollmentRepository().Exists(ctx, h.studentId, h.courseId)
	require.NoError(t, err)
	assert.False(t, enrolled)
}

func TestResumeSettlement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	now := time.Now().UTC()
	p := h.completed(t, now.Add(-time.Hour))
	wf := refund.NewWorkflow(h.factory, h.gateway, &flakyReverser{inner: h.ledger, failures: 1}, h.recorder, window,
		logger.NewNopLogger())

	r, err := wf.Create(ctx, h.studentId, p.Id, "wrong course", now)
	require.NoError(t, err)

	_, err = wf.ResumeSettlement(ctx, r.Id)
	assert.Equal(t, "REFUND_NOT_APPROVED", apperror.CodeOf(err))

	_, err = wf.Approve(ctx, r.Id, "ok")
	require.Error(t, err)

	settled, err := wf.ResumeSettlement(ctx, r.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.RefundStatusProcessed, settled.Status)
	assert.Equal(t, entity.PaymentStatusRefunded, h.payment(t, p.Id).Status)
	assert.Len(t, h.gateway.Refunds(), 1)

	_, err = wf.ResumeSettlement(ctx, r.Id)
	assert.Equal(t, "REFUND_NOT_APPROVED", apperror.CodeOf(err))
}
