package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentRecord rows are never deleted, so there is no DeletedAt column.
type PaymentRecord struct {
	Id                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserId            uuid.UUID       `gorm:"type:uuid;not null;index"`
	CourseId          uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstructorId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CouponId          *uuid.UUID      `gorm:"type:uuid"`
	SubscriptionId    *uuid.UUID      `gorm:"type:uuid;index"`
	ExternalPaymentId *string         `gorm:"type:varchar(255);index"`
	ExternalOrderId   *string         `gorm:"type:varchar(255);index"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OriginalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency          string          `gorm:"type:varchar(10);not null"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentType       string          `gorm:"type:varchar(20);not null"`
	PaymentMethod     string          `gorm:"type:varchar(20);not null"`
	PlatformFeeAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	InstructorAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GatewayProvider   string          `gorm:"type:varchar(50);not null"`
	GatewayPayload    datatypes.JSON
	StatusReason      string `gorm:"type:text"`
	CompletedAt       *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

func (p *PaymentRecord) BeforeCreate(tx *gorm.DB) error {
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	return nil
}

type SubscriptionRecord struct {
	Id                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserId                 uuid.UUID       `gorm:"type:uuid;not null;index:idx_subscription_user_course"`
	CourseId               uuid.UUID       `gorm:"type:uuid;not null;index:idx_subscription_user_course"`
	PaymentId              *uuid.UUID      `gorm:"type:uuid"`
	ExternalSubscriptionId *string         `gorm:"type:varchar(255);index"`
	Status                 string          `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Frequency              int             `gorm:"not null;default:1"`
	FrequencyType          string          `gorm:"type:varchar(10);not null;default:'month'"`
	Amount                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency               string          `gorm:"type:varchar(10);not null"`
	CreatedAt              time.Time       `gorm:"autoCreateTime"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime"`
}

func (SubscriptionRecord) TableName() string {
	return "subscription_records"
}

func (s *SubscriptionRecord) BeforeCreate(tx *gorm.DB) error {
	if s.Id == uuid.Nil {
		s.Id = uuid.New()
	}
	return nil
}
