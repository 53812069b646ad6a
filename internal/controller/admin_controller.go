package controller

import (
	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	ListRefunds(ctx *fiber.Ctx) error
	ApproveRefund(ctx *fiber.Ctx) error
	RejectRefund(ctx *fiber.Ctx) error
	SettleRefund(ctx *fiber.Ctx) error
	OverridePayment(ctx *fiber.Ctx) error
	CreateCoupon(ctx *fiber.Ctx) error
	ListCoupons(ctx *fiber.Ctx) error
	VerifyPayoutProfile(ctx *fiber.Ctx) error
}

type adminController struct {
	payments    service.IPaymentService
	refunds     service.IRefundService
	instructors service.IInstructorService
	auth        fiber.Handler
}

func NewAdminController(payments service.IPaymentService, refunds service.IRefundService, instructors service.IInstructorService, auth fiber.Handler) IAdminController {
	return &adminController{
		payments:    payments,
		refunds:     refunds,
		instructors: instructors,
		auth:        auth,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", c.auth, serverutils.RequireRole(string(entity.UserRoleAdmin)))

	h.Get("/refunds", c.ListRefunds)
	h.Post("/refunds/:id/approve", c.ApproveRefund)
	h.Post("/refunds/:id/reject", c.RejectRefund)
	h.Post("/refunds/:id/settle", c.SettleRefund)

	h.Post("/payments/:id/override", c.OverridePayment)

	h.Post("/coupons", c.CreateCoupon)
	h.Get("/coupons", c.ListCoupons)

	h.Post("/instructors/:id/payout-profile/verify", c.VerifyPayoutProfile)
}

func (c *adminController) ListRefunds(ctx *fiber.Ctx) error {
	page, size := ctx.QueryInt("page", 1), ctx.QueryInt("size", 20)
	items, total, err := c.refunds.List(ctx.UserContext(), ctx.Query("status"), page, size)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund requests", serverutils.PagedData[*dto.RefundResponse]{
		Items: items, Total: total, Page: page, Size: size,
	}))
}

func (c *adminController) ApproveRefund(ctx *fiber.Ctx) error {
	refundId, req, err := c.parseDecision(ctx)
	if err != nil {
		return err
	}
	res, err := c.refunds.Approve(ctx.UserContext(), refundId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund processed", res))
}

func (c *adminController) RejectRefund(ctx *fiber.Ctx) error {
	refundId, req, err := c.parseDecision(ctx)
	if err != nil {
		return err
	}
	res, err := c.refunds.Reject(ctx.UserContext(), refundId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund rejected", res))
}

func (c *adminController) SettleRefund(ctx *fiber.Ctx) error {
	refundId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refund id")
	}
	res, err := c.refunds.Settle(ctx.UserContext(), refundId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund settled", res))
}

func (c *adminController) parseDecision(ctx *fiber.Ctx) (uuid.UUID, *dto.AdminRefundDecisionRequest, error) {
	refundId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid refund id")
	}
	var req dto.AdminRefundDecisionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return uuid.Nil, nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	return refundId, &req, nil
}

func (c *adminController) OverridePayment(ctx *fiber.Ctx) error {
	paymentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	var req dto.AdminOverrideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.payments.AdminOverride(ctx.UserContext(), paymentId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment overridden", res))
}

func (c *adminController) CreateCoupon(ctx *fiber.Ctx) error {
	var req dto.CreateCouponRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.payments.CreateCoupon(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Coupon created", res))
}

func (c *adminController) ListCoupons(ctx *fiber.Ctx) error {
	res, err := c.payments.ListCoupons(ctx.UserContext(), ctx.QueryInt("page", 1), ctx.QueryInt("size", 20))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Coupons", res))
}

func (c *adminController) VerifyPayoutProfile(ctx *fiber.Ctx) error {
	instructorId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid instructor id")
	}
	res, err := c.instructors.VerifyPayoutProfile(ctx.UserContext(), instructorId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payout profile verified", res))
}
