package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/pkg/mailer"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/pkg/events"
	pktNats "course-marketplace-be/pkg/nats"
	"course-marketplace-be/pkg/notify"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification dto.NotificationMessage)
}

type notificationTemplate struct {
	title   string
	message *template.Template
	email   bool
}

func tmpl(text string) *template.Template {
	return template.Must(template.New("").Option("missingkey=zero").Parse(text))
}

var notificationTemplates = map[string]notificationTemplate{
	notify.EventPaymentCompleted: {"Payment confirmed", tmpl("Your payment of {{.currency}} {{.amount}} was confirmed. The course is now available in your library."), true},
	notify.EventPaymentFailed:    {"Payment failed", tmpl("Your payment of {{.currency}} {{.amount}} was declined. You can try again with another method."), true},
	notify.EventPaymentCancelled: {"Payment cancelled", tmpl("Your payment of {{.currency}} {{.amount}} was cancelled."), false},
	notify.EventPaymentRefunded:  {"Payment refunded", tmpl("Your payment of {{.currency}} {{.amount}} was refunded."), true},
	notify.EventRefundRequested:  {"Refund requested", tmpl("We received your refund request for {{.amount}}."), false},
	notify.EventRefundApproved:   {"Refund approved", tmpl("Your refund request for {{.amount}} was approved and is being processed."), false},
	notify.EventRefundRejected:   {"Refund rejected", tmpl("Your refund request for {{.amount}} was rejected.{{if .notes}} Notes: {{.notes}}{{end}}"), true},
	notify.EventRefundFailed:     {"Refund failed", tmpl("We could not process your refund for {{.amount}}. Our team has been notified."), true},
	notify.EventPayoutRequested:  {"Payout requested", tmpl("Your payout of {{.amount}} for {{.period}} was requested."), true},
}

type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	sub *pktNats.Subscriber,
	delivery NotificationDelivery,
	uowFactory unitofwork.RepositoryFactory,
	mailer mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		uowFactory: uowFactory,
		mailer:     mailer,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() error {
	if err := s.subscriber.Subscribe(pktNats.SubjectPrefix+">", "payment-notifier", s.HandleEvent); err != nil {
		return fmt.Errorf("failed to start notification subscriber: %w", err)
	}
	s.logger.Info("NotificationService", "Notification service started", map[string]interface{}{"subject": pktNats.SubjectPrefix + ">"})
	return nil
}

// HandleEvent pushes the event to the owner's sockets and, for events that matter
// outside the app, emails them. Email failures do not trigger redelivery.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	userID, notification, ok := BuildNotification(event)
	if !ok {
		return nil
	}

	s.delivery.Send(userID, notification)

	if s.mailer == nil || !notificationTemplates[event.EventType()].email {
		return nil
	}

	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.Email == "" {
		return nil
	}
	if err := s.mailer.SendNotification(user.Email, user.FullName, notification); err != nil {
		s.logger.Warn("NotificationService", "Email delivery failed", map[string]interface{}{
			"type":    event.EventType(),
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
	return nil
}

// BuildNotification renders a domain event for its owner. Unknown events and events
// without a user_id are skipped.
func BuildNotification(event events.Event) (uuid.UUID, dto.NotificationMessage, bool) {
	t, ok := notificationTemplates[event.EventType()]
	if !ok {
		return uuid.Nil, dto.NotificationMessage{}, false
	}

	payload := event.Payload()
	raw, _ := payload["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dto.NotificationMessage{}, false
	}

	var buf bytes.Buffer
	if err := t.message.Execute(&buf, payload); err != nil {
		buf.Reset()
		buf.WriteString(t.title)
	}

	createdAt := event.Timestamp()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return userID, dto.NotificationMessage{
		Id:        uuid.New(),
		Type:      event.EventType(),
		Title:     t.title,
		Message:   buf.String(),
		Data:      payload,
		CreatedAt: createdAt,
	}, true
}
