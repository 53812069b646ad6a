package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCouponRequest struct {
	Code          string          `json:"code" validate:"required,min=3,max=50"`
	DiscountType  string          `json:"discount_type" validate:"required,oneof=PERCENTAGE FLAT_RATE"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"required"`
	ValidFrom     *time.Time      `json:"valid_from,omitempty"`
	ValidUntil    *time.Time      `json:"valid_until,omitempty"`
	MaxUses       int             `json:"max_uses" validate:"min=0"`
}

type CouponResponse struct {
	Id            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     time.Time       `json:"valid_from"`
	ValidUntil    *time.Time      `json:"valid_until,omitempty"`
	MaxUses       int             `json:"max_uses"`
	UsedCount     int             `json:"used_count"`
	IsActive      bool            `json:"is_active"`
}
