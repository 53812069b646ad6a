package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string
type PayoutStatus string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"

	PayoutStatusRequested PayoutStatus = "REQUESTED"
	PayoutStatusPaid      PayoutStatus = "PAID"
	PayoutStatusRejected  PayoutStatus = "REJECTED"
)

type InstructorBalance struct {
	InstructorId     uuid.UUID
	AvailableBalance decimal.Decimal
	PendingBalance   decimal.Decimal
	TotalEarnings    decimal.Decimal
	TotalWithdrawn   decimal.Decimal
	UpdatedAt        time.Time
}

type BalanceTransaction struct {
	Id           uuid.UUID
	InstructorId uuid.UUID
	Type         TransactionType
	Amount       decimal.Decimal
	PaymentId    *uuid.UUID
	PayoutId     *uuid.UUID
	Description  string
	MaturedAt    *time.Time
	CreatedAt    time.Time
}

type PayoutProfile struct {
	InstructorId uuid.UUID
	HolderName   string
	PixKey       string
	BankAccount  string
	Verified     bool
	VerifiedAt   *time.Time
	UpdatedAt    time.Time
}

type PayoutRequest struct {
	Id           uuid.UUID
	InstructorId uuid.UUID
	Amount       decimal.Decimal
	Status       PayoutStatus
	PeriodKey    string
	RequestedAt  time.Time
}

// PayoutPeriodKey buckets payouts by calendar month (UTC).
func PayoutPeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
