package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RefundRequest struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason      string          `gorm:"type:text"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING'"` // PENDING, APPROVED, REJECTED, PROCESSED, FAILED, CANCELLED
	Notes       string          `gorm:"type:text"`
	RequestedAt time.Time       `gorm:"not null"`
	ProcessedAt *time.Time
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (RefundRequest) TableName() string {
	return "refund_requests"
}

func (r *RefundRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Id == uuid.Nil {
		r.Id = uuid.New()
	}
	return nil
}
