package controller

import (
	"errors"

	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/service"
	"course-marketplace-be/pkg/gateway"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Receive(ctx *fiber.Ctx) error
}

// webhookController verifies the notification synchronously and hands it to the
// reconciliation consumer. Anything verified is acknowledged with 200.
type webhookController struct {
	gateways map[string]gateway.Gateway
	consumer service.IConsumerService
	logger   logger.ILogger
}

func NewWebhookController(gateways map[string]gateway.Gateway, consumer service.IConsumerService, log logger.ILogger) IWebhookController {
	return &webhookController{gateways: gateways, consumer: consumer, logger: log}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	r.Post("/payments/webhook/:provider", c.Receive)
}

func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	gw, ok := c.gateways[provider]
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "unknown payment provider"))
	}

	res, err := gw.ProcessWebhook(ctx.UserContext(), ctx.Body())
	switch {
	case errors.Is(err, gateway.ErrInvalidSignature):
		c.logger.Warn("WEBHOOK", "Rejected webhook with bad signature", map[string]interface{}{
			"provider": provider,
			"ip":       ctx.IP(),
		})
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "invalid signature"))
	case err != nil:
		c.logger.Warn("WEBHOOK", "Rejected malformed webhook", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid webhook payload"))
	}

	c.logger.Info("WEBHOOK", "Webhook accepted", map[string]interface{}{
		"provider":        provider,
		"order_id":        res.OrderId,
		"external_id":     res.ExternalId,
		"provider_status": res.ProviderStatus,
	})

	if err := c.consumer.Publish(res); err != nil {
		c.logger.Error("WEBHOOK", "Failed to enqueue webhook", map[string]interface{}{
			"order_id": res.OrderId,
			"error":    err.Error(),
		})
		// the PSP retries on non-2xx
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "webhook not queued"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Webhook received", fiber.Map{"status": "accepted"}))
}
