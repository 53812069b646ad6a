package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Coupon struct {
	Id            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code          string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	DiscountType  string          `gorm:"type:varchar(20);not null"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ValidFrom     time.Time       `gorm:"not null"`
	ValidUntil    *time.Time
	MaxUses       int       `gorm:"not null;default:0"`
	UsedCount     int       `gorm:"not null;default:0"`
	IsActive      bool      `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Coupon) TableName() string {
	return "coupons"
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}

type CouponUsage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CouponId  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_coupon_usage_coupon_user"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_coupon_usage_coupon_user"`
	PaymentId uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CouponUsage) TableName() string {
	return "coupon_usages"
}

func (c *CouponUsage) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
