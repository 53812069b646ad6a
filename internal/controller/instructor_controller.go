package controller

import (
	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IInstructorController interface {
	RegisterRoutes(r fiber.Router)
	GetBalance(ctx *fiber.Ctx) error
	ListTransactions(ctx *fiber.Ctx) error
	UpsertPayoutProfile(ctx *fiber.Ctx) error
	RequestPayout(ctx *fiber.Ctx) error
}

type instructorController struct {
	service service.IInstructorService
	auth    fiber.Handler
}

func NewInstructorController(service service.IInstructorService, auth fiber.Handler) IInstructorController {
	return &instructorController{service: service, auth: auth}
}

func (c *instructorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/instructor", c.auth, serverutils.RequireRole(string(entity.UserRoleInstructor)))
	h.Get("/balance", c.GetBalance)
	h.Get("/transactions", c.ListTransactions)
	h.Put("/payout-profile", c.UpsertPayoutProfile)
	h.Post("/payouts", c.RequestPayout)
}

func (c *instructorController) GetBalance(ctx *fiber.Ctx) error {
	instructorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetBalance(ctx.UserContext(), instructorId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Balance", res))
}

func (c *instructorController) ListTransactions(ctx *fiber.Ctx) error {
	instructorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ListTransactions(ctx.UserContext(), instructorId, ctx.QueryInt("page", 1), ctx.QueryInt("size", 20))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Balance transactions", res))
}

func (c *instructorController) UpsertPayoutProfile(ctx *fiber.Ctx) error {
	instructorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.PayoutProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpsertPayoutProfile(ctx.UserContext(), instructorId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payout profile saved", res))
}

func (c *instructorController) RequestPayout(ctx *fiber.Ctx) error {
	instructorId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.PayoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.service.RequestPayout(ctx.UserContext(), instructorId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Payout requested", res))
}
