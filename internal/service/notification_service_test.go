package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/testutil"
	"course-marketplace-be/pkg/events"
	"course-marketplace-be/pkg/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDelivery struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]dto.NotificationMessage
}

func (c *captureDelivery) Send(userID uuid.UUID, n dto.NotificationMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent == nil {
		c.sent = map[uuid.UUID][]dto.NotificationMessage{}
	}
	c.sent[userID] = append(c.sent[userID], n)
}

type captureMailer struct {
	to []string
}

func (m *captureMailer) SendNotification(toEmail, fullName string, n dto.NotificationMessage) error {
	m.to = append(m.to, toEmail)
	return nil
}

func TestBuildNotification(t *testing.T) {
	userID := uuid.New()
	payment := &entity.PaymentRecord{
		Id:       uuid.New(),
		UserId:   userID,
		Status:   entity.PaymentStatusCompleted,
		Amount:   decimal.RequireFromString("89.90"),
		Currency: "IDR",
	}
	event := events.BaseEvent{
		Type:       notify.EventPaymentCompleted,
		Data:       notify.PaymentPayload(payment, "webhook"),
		OccurredAt: time.Now(),
	}

	got, n, ok := BuildNotification(event)
	require.True(t, ok)
	assert.Equal(t, userID, got)
	assert.Equal(t, "Payment confirmed", n.Title)
	assert.Contains(t, n.Message, "IDR 89.90")

	_, _, ok = BuildNotification(events.BaseEvent{Type: "SOMETHING_ELSE", Data: map[string]interface{}{"user_id": userID.String()}})
	assert.False(t, ok)

	_, _, ok = BuildNotification(events.BaseEvent{Type: notify.EventPaymentFailed, Data: map[string]interface{}{}})
	assert.False(t, ok)
}

func TestNotificationService_HandleEvent(t *testing.T) {
	db := testutil.NewTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	userID := testutil.SeedUser(t, db, entity.UserRoleStudent)

	delivery := &captureDelivery{}
	mail := &captureMailer{}
	svc := NewNotificationService(nil, delivery, factory, mail, logger.NewNopLogger())

	refund := &entity.RefundRequest{Id: uuid.New(), UserId: userID, Amount: decimal.NewFromInt(100), Status: entity.RefundStatusRejected, Notes: "outside policy"}
	require.NoError(t, svc.HandleEvent(context.Background(), events.BaseEvent{
		Type: notify.EventRefundRejected,
		Data: notify.RefundPayload(refund),
	}))
	require.NoError(t, svc.HandleEvent(context.Background(), events.BaseEvent{
		Type: notify.EventRefundRequested,
		Data: notify.RefundPayload(refund),
	}))

	require.Len(t, delivery.sent[userID], 2)
	assert.Contains(t, delivery.sent[userID][0].Message, "outside policy")
	assert.Equal(t, []string{userID.String() + "@example.com"}, mail.to)
}
