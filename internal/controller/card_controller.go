package controller

import (
	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICardController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	SetDefault(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type cardController struct {
	service service.ICardService
	auth    fiber.Handler
}

func NewCardController(service service.ICardService, auth fiber.Handler) ICardController {
	return &cardController{service: service, auth: auth}
}

func (c *cardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cards", c.auth)
	h.Get("/", c.List)
	h.Post("/", c.Save)
	h.Put("/:id/default", c.SetDefault)
	h.Delete("/:id", c.Delete)
}

func (c *cardController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Saved cards", res))
}

func (c *cardController) Save(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SaveCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Card saved", res))
}

func (c *cardController) SetDefault(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	cardId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid card id")
	}

	res, err := c.service.SetDefault(ctx.UserContext(), userId, cardId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Default card updated", res))
}

func (c *cardController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	cardId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid card id")
	}

	if err := c.service.Delete(ctx.UserContext(), userId, cardId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Card deleted", nil))
}
