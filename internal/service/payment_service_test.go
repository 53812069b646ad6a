package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/implementation"
	"course-marketplace-be/internal/repository/memory"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/testutil"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/gateway/gatewaytest"
	"course-marketplace-be/pkg/ledger"
	"course-marketplace-be/pkg/notify"
	"course-marketplace-be/pkg/pricing"
	"course-marketplace-be/pkg/reconcile"
	"course-marketplace-be/pkg/vault"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingWatcher struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (w *recordingWatcher) Watch(ctx context.Context, paymentId uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids = append(w.ids, paymentId)
}

type paymentFixture struct {
	db       *gorm.DB
	factory  unitofwork.RepositoryFactory
	gateway  *gatewaytest.Fake
	recorder *notify.Recorder
	watcher  *recordingWatcher
	svc      *paymentService

	studentId    uuid.UUID
	instructorId uuid.UUID
	courseId     uuid.UUID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	db := testutil.NewTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	fake := gatewaytest.New()
	recorder := notify.NewRecorder()
	log := logger.NewNopLogger()

	l := ledger.NewLedger(factory, ledger.Policy{HoldingPeriod: 14 * 24 * time.Hour, PayoutMinimum: decimal.NewFromInt(50)}, recorder, log)
	engine := reconcile.NewEngine(factory, fake, l, recorder, log)
	watcher := &recordingWatcher{}
	courses := memory.NewCourseCache(implementation.NewCourseRepository(db), time.Minute)

	svc := NewPaymentService(factory, courses, fake, pricing.NewCalculator(decimal.NewFromInt(20)),
		engine, watcher, vault.NewVault(factory, fake, log), "IDR", log).(*paymentService)

	f := &paymentFixture{
		db:       db,
		factory:  factory,
		gateway:  fake,
		recorder: recorder,
		watcher:  watcher,
		svc:      svc,
	}
	f.studentId = testutil.SeedUser(t, db, entity.UserRoleStudent)
	f.instructorId = testutil.SeedUser(t, db, entity.UserRoleInstructor)
	f.courseId = testutil.SeedCourse(t, db, f.instructorId, "100")
	return f
}

func (f *paymentFixture) payment(t *testing.T, id uuid.UUID) *entity.PaymentRecord {
	t.Helper()
	p, err := f.factory.NewUnitOfWork(context.Background()).PaymentRepository().FindOne(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *paymentFixture) coupon(t *testing.T, code string, percent int64) {
	t.Helper()
	_, err := f.svc.CreateCoupon(context.Background(), &dto.CreateCouponRequest{
		Code:          code,
		DiscountType:  string(entity.DiscountTypePercentage),
		DiscountValue: decimal.NewFromInt(percent),
	})
	require.NoError(t, err)
}

func TestPaymentService_Quote(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.coupon(t, "launch10", 10)

	t.Run("valid coupon", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, f.studentId, f.courseId, " Launch10 ")
		require.NoError(t, err)

		assert.Equal(t, "LAUNCH10", q.CouponCode)
		require.NotNil(t, q.CouponValid)
		assert.True(t, *q.CouponValid)
		testutil.Amount(t, "100.00", q.OriginalPrice)
		testutil.Amount(t, "10.00", q.Discount)
		testutil.Amount(t, "90.00", q.Total)
		testutil.Amount(t, "18.00", q.PlatformFee)
		testutil.Amount(t, "72.00", q.InstructorAmount)
	})

	t.Run("unknown coupon is reported, not failed", func(t *testing.T) {
		q, err := f.svc.Quote(ctx, f.studentId, f.courseId, "NOPE")
		require.NoError(t, err)

		require.NotNil(t, q.CouponValid)
		assert.False(t, *q.CouponValid)
		assert.Equal(t, "coupon code does not exist", q.CouponMessage)
		testutil.Amount(t, "100.00", q.Total)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := f.svc.Quote(ctx, f.studentId, uuid.New(), "")
		assert.Equal(t, "COURSE_NOT_FOUND", apperror.CodeOf(err))
	})
}

func TestPaymentService_Checkout_PendingIsWatched(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.coupon(t, "half", 50)

	res, err := f.svc.Checkout(ctx, f.studentId, &dto.CheckoutRequest{
		CourseId:      f.courseId,
		PaymentMethod: string(entity.PaymentMethodPix),
		CouponCode:    "half",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.PaymentStatusPending), res.Status)
	assert.Equal(t, res.PaymentId.String(), res.OrderId)
	testutil.Amount(t, "50.00", res.Amount)
	assert.Equal(t, []uuid.UUID{res.PaymentId}, f.watcher.ids)

	stored := f.payment(t, res.PaymentId)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status)
	assert.Equal(t, f.instructorId, stored.InstructorId)
	require.NotNil(t, stored.CouponId)
	require.NotNil(t, stored.ExternalPaymentId)
	testutil.Amount(t, "50.00", stored.DiscountAmount)
	testutil.Amount(t, "10.00", stored.PlatformFeeAmount)
	testutil.Amount(t, "40.00", stored.InstructorAmount)
	assert.Zero(t, f.recorder.Count(notify.EventPaymentCompleted))
}

func TestPaymentService_Checkout_WholeRupiahAmounts(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	courseId := testutil.SeedCourse(t, f.db, f.instructorId, "149900.50")

	res, err := f.svc.Checkout(ctx, f.studentId, &dto.CheckoutRequest{
		CourseId:      courseId,
		PaymentMethod: string(entity.PaymentMethodPix),
	})
	require.NoError(t, err)

	stored := f.payment(t, res.PaymentId)
	testutil.Amount(t, "149901", stored.Amount)
	testutil.Amount(t, "29980", stored.PlatformFeeAmount)
	testutil.Amount(t, "119921", stored.InstructorAmount)
	assert.True(t, stored.Amount.Equal(stored.Amount.Round(0)), "stored %s is not what the gateway charges", stored.Amount)
}

func TestPaymentService_Checkout_ImmediateApproval(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.gateway.CreateStatus = gateway.StatusApproved

	req := &dto.CheckoutRequest{
		CourseId:      f.courseId,
		PaymentMethod: string(entity.PaymentMethodCreditCard),
		CardToken:     "tok_visa",
	}
	res, err := f.svc.Checkout(ctx, f.studentId, req)
	require.NoError(t, err)

	assert.Equal(t, string(entity.PaymentStatusCompleted), res.Status)
	assert.Empty(t, f.watcher.ids)
	assert.Equal(t, 1, f.recorder.Count(notify.EventPaymentCompleted))

	_, err = f.svc.Checkout(ctx, f.studentId, req)
	assert.Equal(t, "ALREADY_ENROLLED", apperror.CodeOf(err))
}

func TestPaymentService_Checkout_Rejections(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user func() uuid.UUID
		req  dto.CheckoutRequest
		code string
	}{
		{
			name: "card without token",
			user: func() uuid.UUID { return f.studentId },
			req:  dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "CREDIT_CARD"},
			code: "CARD_REQUIRED",
		},
		{
			name: "saved card of another user",
			user: func() uuid.UUID { return f.studentId },
			req:  dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "DEBIT_CARD", CardId: ptr(uuid.New())},
			code: "CARD_NOT_FOUND",
		},
		{
			name: "subscription paid by pix",
			user: func() uuid.UUID { return f.studentId },
			req:  dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "PIX", PaymentType: "SUBSCRIPTION"},
			code: "SUBSCRIPTION_REQUIRES_CARD",
		},
		{
			name: "instructor buying own course",
			user: func() uuid.UUID { return f.instructorId },
			req:  dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "PIX"},
			code: "OWN_COURSE",
		},
		{
			name: "invalid coupon",
			user: func() uuid.UUID { return f.studentId },
			req:  dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "PIX", CouponCode: "GHOST"},
			code: "COUPON_NOT_FOUND",
		},
		{
			name: "unknown user",
			user: uuid.New,
			req:  dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "PIX"},
			code: "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Checkout(ctx, tt.user(), &req)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}

	payments, err := f.factory.NewUnitOfWork(ctx).PaymentRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestPaymentService_Checkout_GatewayFailureStoresNothing(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.gateway.CreateErr = errors.New("connection reset")

	_, err := f.svc.Checkout(ctx, f.studentId, &dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "BOLETO"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindGateway))

	payments, err := f.factory.NewUnitOfWork(ctx).PaymentRepository().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestPaymentService_Subscription(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	req := &dto.CheckoutRequest{
		CourseId:      f.courseId,
		PaymentMethod: "CREDIT_CARD",
		PaymentType:   "SUBSCRIPTION",
		CardToken:     "tok_master",
	}
	res, err := f.svc.Checkout(ctx, f.studentId, req)
	require.NoError(t, err)
	require.NotNil(t, res.SubscriptionId)

	stored := f.payment(t, res.PaymentId)
	assert.Equal(t, entity.PaymentTypeSubscription, stored.PaymentType)
	assert.Equal(t, res.SubscriptionId, stored.SubscriptionId)
	assert.Equal(t, entity.PaymentStatusPending, stored.Status, "no access before the first charge")

	_, err = f.svc.Checkout(ctx, f.studentId, req)
	assert.Equal(t, "SUBSCRIPTION_ALREADY_ACTIVE", apperror.CodeOf(err))

	_, err = f.svc.CancelSubscription(ctx, uuid.New(), *res.SubscriptionId)
	assert.Equal(t, "SUBSCRIPTION_NOT_FOUND", apperror.CodeOf(err))

	sub, err := f.svc.CancelSubscription(ctx, f.studentId, *res.SubscriptionId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SubscriptionStatusCancelled), sub.Status)
	assert.Equal(t, []string{res.OrderId}, f.gateway.Cancelled())

	_, err = f.svc.CancelSubscription(ctx, f.studentId, *res.SubscriptionId)
	assert.Equal(t, "SUBSCRIPTION_NOT_ACTIVE", apperror.CodeOf(err))
}

func TestPaymentService_GetPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	res, err := f.svc.Checkout(ctx, f.studentId, &dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "PIX"})
	require.NoError(t, err)
	externalId := *f.payment(t, res.PaymentId).ExternalPaymentId

	_, err = f.svc.GetPayment(ctx, f.instructorId, res.PaymentId)
	assert.Equal(t, "PAYMENT_NOT_FOUND", apperror.CodeOf(err))

	f.gateway.StatusErr = errors.New("timeout")
	got, err := f.svc.GetPayment(ctx, f.studentId, res.PaymentId)
	require.NoError(t, err)
	assert.True(t, got.Stale)
	assert.Equal(t, string(entity.PaymentStatusPending), got.Status)

	f.gateway.StatusErr = nil
	f.gateway.SetStatus(externalId, gateway.StatusApproved)
	got, err = f.svc.GetPayment(ctx, f.studentId, res.PaymentId)
	require.NoError(t, err)
	assert.False(t, got.Stale)
	assert.Equal(t, string(entity.PaymentStatusCompleted), got.Status)

	list, err := f.svc.ListPayments(ctx, f.studentId, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.PaymentId, list[0].Id)
}

func TestPaymentService_AdminOverride(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	res, err := f.svc.Checkout(ctx, f.studentId, &dto.CheckoutRequest{CourseId: f.courseId, PaymentMethod: "BOLETO"})
	require.NoError(t, err)

	got, err := f.svc.AdminOverride(ctx, res.PaymentId, &dto.AdminOverrideRequest{Status: "REJECTED", Reason: "boleto never paid"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusFailed), got.Status)
	assert.Equal(t, "admin override: boleto never paid", got.StatusReason)

	_, err = f.svc.AdminOverride(ctx, res.PaymentId, &dto.AdminOverrideRequest{Status: "APPROVED", Reason: "changed my mind"})
	assert.Equal(t, "PAYMENT_NOT_PENDING", apperror.CodeOf(err))
}

func TestPaymentService_CreateCoupon(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateCoupon(ctx, &dto.CreateCouponRequest{
		Code:          " spring25 ",
		DiscountType:  "FLAT_RATE",
		DiscountValue: decimal.NewFromInt(25),
		MaxUses:       100,
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING25", c.Code)
	assert.True(t, c.IsActive)

	_, err = f.svc.CreateCoupon(ctx, &dto.CreateCouponRequest{Code: "SPRING25", DiscountType: "FLAT_RATE", DiscountValue: decimal.NewFromInt(5)})
	assert.Equal(t, "COUPON_CODE_TAKEN", apperror.CodeOf(err))

	_, err = f.svc.CreateCoupon(ctx, &dto.CreateCouponRequest{Code: "TOOMUCH", DiscountType: "PERCENTAGE", DiscountValue: decimal.NewFromInt(150)})
	assert.Equal(t, "INVALID_DISCOUNT", apperror.CodeOf(err))

	list, err := f.svc.ListCoupons(ctx, 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func ptr[T any](v T) *T { return &v }
