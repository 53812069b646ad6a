package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	CourseId      uuid.UUID  `json:"course_id" validate:"required"`
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=PIX CREDIT_CARD DEBIT_CARD BOLETO"`
	PaymentType   string     `json:"payment_type" validate:"omitempty,oneof=ONE_TIME SUBSCRIPTION"`
	CouponCode    string     `json:"coupon_code,omitempty" validate:"omitempty,max=50"`
	CardId        *uuid.UUID `json:"card_id,omitempty"`
	CardToken     string     `json:"card_token,omitempty"`

	// Subscription billing cycle, defaults to every 1 month.
	Frequency     int    `json:"frequency,omitempty" validate:"omitempty,min=1,max=12"`
	FrequencyType string `json:"frequency_type,omitempty" validate:"omitempty,oneof=day week month"`
}

type CheckoutResponse struct {
	PaymentId      uuid.UUID       `json:"payment_id"`
	SubscriptionId *uuid.UUID      `json:"subscription_id,omitempty"`
	OrderId        string          `json:"order_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

type QuoteResponse struct {
	CourseId         uuid.UUID       `json:"course_id"`
	CourseTitle      string          `json:"course_title"`
	Currency         string          `json:"currency"`
	OriginalPrice    decimal.Decimal `json:"original_price"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
	PlatformFee      decimal.Decimal `json:"platform_fee"`
	InstructorAmount decimal.Decimal `json:"instructor_amount"`
	CouponCode       string          `json:"coupon_code,omitempty"`
	CouponValid      *bool           `json:"coupon_valid,omitempty"`
	CouponMessage    string          `json:"coupon_message,omitempty"`
}

type PaymentResponse struct {
	Id                uuid.UUID       `json:"id"`
	CourseId          uuid.UUID       `json:"course_id"`
	SubscriptionId    *uuid.UUID      `json:"subscription_id,omitempty"`
	Status            string          `json:"status"`
	PaymentType       string          `json:"payment_type"`
	PaymentMethod     string          `json:"payment_method"`
	Amount            decimal.Decimal `json:"amount"`
	OriginalAmount    decimal.Decimal `json:"original_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Currency          string          `json:"currency"`
	GatewayProvider   string          `json:"gateway_provider"`
	ExternalPaymentId *string         `json:"external_payment_id,omitempty"`
	StatusReason      string          `json:"status_reason,omitempty"`
	Stale             bool            `json:"stale,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type AdminOverrideRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED CANCELLED"`
	Reason string `json:"reason" validate:"required,min=5"`
}

type SubscriptionResponse struct {
	Id            uuid.UUID `json:"id"`
	CourseId      uuid.UUID `json:"course_id"`
	Status        string    `json:"status"`
	Frequency     int       `json:"frequency"`
	FrequencyType string    `json:"frequency_type"`
}
