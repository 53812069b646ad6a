package controller

import (
	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRefundController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	ListMine(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type refundController struct {
	service service.IRefundService
	auth    fiber.Handler
}

func NewRefundController(service service.IRefundService, auth fiber.Handler) IRefundController {
	return &refundController{service: service, auth: auth}
}

func (c *refundController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/refunds", c.auth)
	h.Post("/", c.Create)
	h.Get("/", c.ListMine)
	h.Post("/:id/cancel", c.Cancel)
}

func (c *refundController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Refund requested", res))
}

func (c *refundController) ListMine(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	page, size := ctx.QueryInt("page", 1), ctx.QueryInt("size", 20)
	items, total, err := c.service.ListMine(ctx.UserContext(), userId, page, size)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund requests", serverutils.PagedData[*dto.RefundResponse]{
		Items: items, Total: total, Page: page, Size: size,
	}))
}

func (c *refundController) Cancel(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	refundId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refund id")
	}

	res, err := c.service.Cancel(ctx.UserContext(), userId, refundId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund request cancelled", res))
}
