package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string
type PaymentType string
type PaymentMethod string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"

	PaymentTypeOneTime      PaymentType = "ONE_TIME"
	PaymentTypeSubscription PaymentType = "SUBSCRIPTION"

	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodBoleto     PaymentMethod = "BOLETO"
)

// IsTerminal reports whether reconciliation may still move the payment.
// COMPLETED is terminal for reconciliation; only the refund workflow moves it further.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodBoleto:
		return true
	}
	return false
}

func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

type PaymentRecord struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	CourseId          uuid.UUID
	InstructorId      uuid.UUID
	CouponId          *uuid.UUID
	SubscriptionId    *uuid.UUID
	ExternalPaymentId *string
	ExternalOrderId   *string
	Amount            decimal.Decimal
	OriginalAmount    decimal.Decimal
	DiscountAmount    decimal.Decimal
	Currency          string
	Status            PaymentStatus
	PaymentType       PaymentType
	PaymentMethod     PaymentMethod
	PlatformFeeAmount decimal.Decimal
	InstructorAmount  decimal.Decimal
	GatewayProvider   string
	GatewayPayload    []byte
	StatusReason      string
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GatewayReference is what the PSP knows the payment by.
// Before the PSP assigns an id, the order id is the only handle.
func (p *PaymentRecord) GatewayReference() string {
	if p.ExternalPaymentId != nil && *p.ExternalPaymentId != "" {
		return *p.ExternalPaymentId
	}
	if p.ExternalOrderId != nil {
		return *p.ExternalOrderId
	}
	return p.Id.String()
}
