package mapper

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"
)

type CouponMapper struct{}

func NewCouponMapper() *CouponMapper {
	return &CouponMapper{}
}

func (m *CouponMapper) ToEntity(c *model.Coupon) *entity.Coupon {
	if c == nil {
		return nil
	}
	return &entity.Coupon{
		Id:            c.Id,
		Code:          c.Code,
		DiscountType:  entity.DiscountType(c.DiscountType),
		DiscountValue: c.DiscountValue,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *CouponMapper) ToModel(c *entity.Coupon) *model.Coupon {
	if c == nil {
		return nil
	}
	return &model.Coupon{
		Id:            c.Id,
		Code:          entity.NormalizeCouponCode(c.Code),
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
