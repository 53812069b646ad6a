package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InstructorBalance struct {
	InstructorId     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PendingBalance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEarnings    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime"`
}

func (InstructorBalance) TableName() string {
	return "instructor_balances"
}

// BalanceTransaction is append-only. (payment_id, type) is unique so a payment
// is credited once and reversed once; payout debits carry no payment id.
type BalanceTransaction struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InstructorId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_balance_tx_payment_type"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentId    *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_balance_tx_payment_type"`
	PayoutId     *uuid.UUID      `gorm:"type:uuid"`
	Description  string          `gorm:"type:text"`
	MaturedAt    *time.Time      `gorm:"index"`
	CreatedAt    time.Time       `gorm:"not null;index"`
}

func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}

func (t *BalanceTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.Id == uuid.Nil {
		t.Id = uuid.New()
	}
	return nil
}

type PayoutProfile struct {
	InstructorId uuid.UUID `gorm:"type:uuid;primaryKey"`
	HolderName   string    `gorm:"type:varchar(255);not null"`
	PixKey       string    `gorm:"type:varchar(255)"`
	BankAccount  string    `gorm:"type:varchar(255)"`
	Verified     bool      `gorm:"not null;default:false"`
	VerifiedAt   *time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (PayoutProfile) TableName() string {
	return "payout_profiles"
}

type PayoutRequest struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InstructorId uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payout_instructor_period"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'REQUESTED'"`
	PeriodKey    string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_payout_instructor_period"`
	RequestedAt  time.Time       `gorm:"not null"`
}

func (PayoutRequest) TableName() string {
	return "payout_requests"
}

func (p *PayoutRequest) BeforeCreate(tx *gorm.DB) error {
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	return nil
}
