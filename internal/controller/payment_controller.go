package controller

import (
	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Quote(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	GetPayment(ctx *fiber.Ctx) error
	ListPayments(ctx *fiber.Ctx) error
	CancelSubscription(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
	auth    fiber.Handler
}

func NewPaymentController(service service.IPaymentService, auth fiber.Handler) IPaymentController {
	return &paymentController{service: service, auth: auth}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	// auth is per route: the webhook shares the /payments prefix
	h := r.Group("/payments")
	h.Get("/", c.auth, c.ListPayments)
	h.Get("/quote", c.auth, c.Quote)
	h.Post("/checkout", c.auth, c.Checkout)
	h.Post("/subscriptions/:id/cancel", c.auth, c.CancelSubscription)
	h.Get("/:id", c.auth, c.GetPayment)
}

func (c *paymentController) Quote(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	courseIdStr := ctx.Query("course_id")
	if courseIdStr == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "course_id is required"))
	}
	courseId, err := uuid.Parse(courseIdStr)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid course_id format"))
	}

	res, err := c.service.Quote(ctx.UserContext(), userId, courseId, ctx.Query("coupon_code"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Price quote", res))
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Checkout(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *paymentController) GetPayment(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	paymentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	res, err := c.service.GetPayment(ctx.UserContext(), userId, paymentId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment status", res))
}

func (c *paymentController) ListPayments(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	page, size := ctx.QueryInt("page", 1), ctx.QueryInt("size", 20)
	res, err := c.service.ListPayments(ctx.UserContext(), userId, page, size)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payments", res))
}

func (c *paymentController) CancelSubscription(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	subscriptionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	res, err := c.service.CancelSubscription(ctx.UserContext(), userId, subscriptionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", res))
}
