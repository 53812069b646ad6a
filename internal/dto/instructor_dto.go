package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	InstructorId     uuid.UUID       `json:"instructor_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	PendingBalance   decimal.Decimal `json:"pending_balance"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	TotalWithdrawn   decimal.Decimal `json:"total_withdrawn"`
}

type BalanceTransactionResponse struct {
	Id          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentId   *uuid.UUID      `json:"payment_id,omitempty"`
	PayoutId    *uuid.UUID      `json:"payout_id,omitempty"`
	Description string          `json:"description"`
	MaturedAt   *time.Time      `json:"matured_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PayoutProfileRequest struct {
	HolderName  string `json:"holder_name" validate:"required"`
	PixKey      string `json:"pix_key,omitempty"`
	BankAccount string `json:"bank_account,omitempty"`
}

type PayoutProfileResponse struct {
	InstructorId uuid.UUID  `json:"instructor_id"`
	HolderName   string     `json:"holder_name"`
	PixKey       string     `json:"pix_key,omitempty"`
	BankAccount  string     `json:"bank_account,omitempty"`
	Verified     bool       `json:"verified"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

type PayoutRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type PayoutResponse struct {
	Id          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PeriodKey   string          `json:"period_key"`
	RequestedAt time.Time       `json:"requested_at"`
}
