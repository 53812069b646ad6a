package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/testutil"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/gateway/gatewaytest"
	"course-marketplace-be/pkg/ledger"
	"course-marketplace-be/pkg/notify"
	"course-marketplace-be/pkg/reconcile"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyHandler struct {
	mu       sync.Mutex
	failures int
	seen     []string
}

func (h *flakyHandler) HandleWebhook(ctx context.Context, res *gateway.WebhookResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, res.OrderId)
	if h.failures != 0 {
		h.failures--
		return errors.New("database unavailable")
	}
	return nil
}

func (h *flakyHandler) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

var fastRetry = RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func startConsumer(t *testing.T, handler WebhookHandler) IConsumerService {
	t.Helper()
	return startConsumerWith(t, handler, fastRetry)
}

func startConsumerWith(t *testing.T, handler WebhookHandler, policy RetryPolicy) IConsumerService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	consumer := NewConsumerService(pubSub, WebhookTopic, handler, policy, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.Consume(ctx))
	return consumer
}

func TestConsumerService_RetriesTransientFailure(t *testing.T) {
	handler := &flakyHandler{failures: 1}
	consumer := startConsumer(t, handler)

	require.NoError(t, consumer.Publish(&gateway.WebhookResult{
		OrderId: "order-1",
		Status:  gateway.StatusApproved,
	}))

	assert.Eventually(t, func() bool { return handler.calls() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"order-1", "order-1"}, handler.seen)
}

func TestConsumerService_PersistentFailureIsBounded(t *testing.T) {
	handler := &flakyHandler{failures: -1}
	consumer := startConsumer(t, handler)

	require.NoError(t, consumer.Publish(&gateway.WebhookResult{OrderId: "order-2", Status: gateway.StatusApproved}))

	// first attempt plus MaxRetries, then the message is acked and dropped
	assert.Eventually(t, func() bool { return handler.calls() == 4 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 4, handler.calls())
}

func TestConsumerService_NextMessageRunsAfterGivingUp(t *testing.T) {
	handler := &flakyHandler{failures: 4}
	consumer := startConsumer(t, handler)

	require.NoError(t, consumer.Publish(&gateway.WebhookResult{OrderId: "stuck", Status: gateway.StatusApproved}))
	require.NoError(t, consumer.Publish(&gateway.WebhookResult{OrderId: "next", Status: gateway.StatusApproved}))

	assert.Eventually(t, func() bool { return handler.calls() == 5 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "next", handler.seen[4])
}

type countingHandler struct {
	inner WebhookHandler
	calls atomic.Int32
}

func (h *countingHandler) HandleWebhook(ctx context.Context, res *gateway.WebhookResult) error {
	h.calls.Add(1)
	return h.inner.HandleWebhook(ctx, res)
}

func TestConsumerService_WebhookBeforeCheckoutCommits(t *testing.T) {
	db := testutil.NewTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	recorder := notify.NewRecorder()
	log := logger.NewNopLogger()
	l := ledger.NewLedger(factory, ledger.Policy{HoldingPeriod: 14 * 24 * time.Hour, PayoutMinimum: decimal.NewFromInt(50)}, recorder, log)
	engine := reconcile.NewEngine(factory, gatewaytest.New(), l, recorder, log)

	studentId := testutil.SeedUser(t, db, entity.UserRoleStudent)
	instructorId := testutil.SeedUser(t, db, entity.UserRoleInstructor)
	courseId := testutil.SeedCourse(t, db, instructorId, "100")
	p := testutil.PendingPayment(studentId, courseId, instructorId)

	handler := &countingHandler{inner: engine}
	consumer := startConsumerWith(t, handler, RetryPolicy{MaxRetries: 10, InitialInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond})

	require.NoError(t, consumer.Publish(&gateway.WebhookResult{
		OrderId:        *p.ExternalOrderId,
		ExternalId:     "psp-late",
		Status:         gateway.StatusApproved,
		ProviderStatus: "settlement",
	}))
	assert.Eventually(t, func() bool { return handler.calls.Load() >= 1 }, 2*time.Second, time.Millisecond)

	ctx := context.Background()
	require.NoError(t, factory.NewUnitOfWork(ctx).PaymentRepository().Create(ctx, p))

	assert.Eventually(t, func() bool {
		stored, err := factory.NewUnitOfWork(ctx).PaymentRepository().FindOne(ctx, specification.ByID{ID: p.Id})
		return err == nil && stored != nil && stored.Status == entity.PaymentStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}
