package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFlatRate   DiscountType = "FLAT_RATE"
)

type Coupon struct {
	Id            uuid.UUID
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	ValidFrom     time.Time
	ValidUntil    *time.Time
	MaxUses       int // 0 = unlimited
	UsedCount     int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CouponUsage struct {
	Id        uuid.UUID
	CouponId  uuid.UUID
	UserId    uuid.UUID
	PaymentId uuid.UUID
	CreatedAt time.Time
}

// NormalizeCouponCode is applied on every write and lookup of a coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
