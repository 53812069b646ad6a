package controller

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/gateway/gatewaytest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConsumer struct {
	published  []*gateway.WebhookResult
	publishErr error
}

func (s *stubConsumer) Publish(res *gateway.WebhookResult) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, res)
	return nil
}

func (s *stubConsumer) Consume(ctx context.Context) error { return nil }

func newWebhookApp(consumer *stubConsumer) *fiber.App {
	app := fiber.New()
	ctrl := NewWebhookController(map[string]gateway.Gateway{"fake": gatewaytest.New()}, consumer, logger.NewNopLogger())
	ctrl.RegisterRoutes(app)
	return app
}

func TestWebhookController_Receive(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		body       string
		publishErr error
		wantStatus int
		wantQueued int
	}{
		{"verified", "fake", `{"order_id":"o-1","status":"APPROVED","signature":"ok"}`, nil, fiber.StatusOK, 1},
		{"unknown payment is still accepted", "fake", `{"order_id":"missing","status":"PENDING","signature":"ok"}`, nil, fiber.StatusOK, 1},
		{"malformed json", "fake", `{not json`, nil, fiber.StatusBadRequest, 0},
		{"bad signature", "fake", `{"order_id":"o-1","status":"APPROVED","signature":"forged"}`, nil, fiber.StatusUnauthorized, 0},
		{"unknown provider", "stripe", `{}`, nil, fiber.StatusNotFound, 0},
		{"queue down", "fake", `{"order_id":"o-1","status":"APPROVED","signature":"ok"}`, errors.New("closed"), fiber.StatusInternalServerError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumer := &stubConsumer{publishErr: tt.publishErr}
			app := newWebhookApp(consumer)

			req := httptest.NewRequest("POST", "/payments/webhook/"+tt.provider, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Len(t, consumer.published, tt.wantQueued)
		})
	}
}
