package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// StandardStatus is the PSP-neutral status every provider maps into.
type StandardStatus string

const (
	StatusPending   StandardStatus = "PENDING"
	StatusApproved  StandardStatus = "APPROVED"
	StatusRejected  StandardStatus = "REJECTED"
	StatusCancelled StandardStatus = "CANCELLED"
	StatusRefunded  StandardStatus = "REFUNDED"
)

type Method string

const (
	MethodPix        Method = "PIX"
	MethodCreditCard Method = "CREDIT_CARD"
	MethodDebitCard  Method = "DEBIT_CARD"
	MethodBoleto     Method = "BOLETO"
)

var (
	ErrInvalidWebhook   = errors.New("gateway: malformed webhook payload")
	ErrInvalidSignature = errors.New("gateway: webhook signature mismatch")
	ErrNotFound         = errors.New("gateway: payment not found at provider")
)

type Payer struct {
	Email     string
	FirstName string
	LastName  string
}

type PaymentRequest struct {
	OrderId     string
	Amount      decimal.Decimal
	Currency    string
	Method      Method
	CardToken   string // required for card methods
	Description string
	ItemId      string
	Payer       Payer
}

type PaymentResult struct {
	ExternalId     string
	OrderId        string
	Status         StandardStatus
	ProviderStatus string
	Payload        []byte
}

type SubscriptionRequest struct {
	OrderId       string
	Reason        string
	Amount        decimal.Decimal
	Currency      string
	Frequency     int
	FrequencyType string
	CardToken     string
	StartAt       time.Time
	Payer         Payer
}

type SubscriptionResult struct {
	ExternalId     string
	Status         StandardStatus
	ProviderStatus string
	Payload        []byte
}

// SubscriptionStatus describes the first charge of a subscription. ChargeId is empty until
// the PSP has attempted that charge.
type SubscriptionStatus struct {
	Status   StandardStatus
	ChargeId string
}

type RefundRequest struct {
	Reference string
	RefundKey string
	Amount    decimal.Decimal
	Reason    string
}

// WebhookResult is a verified and normalized notification.
type WebhookResult struct {
	ExternalId     string
	OrderId        string
	Status         StandardStatus
	ProviderStatus string
	Payload        []byte
}

type CardDetails struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVV      string
}

// Gateway is the contract every PSP adapter implements.
type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResult, error)
	// GetPaymentStatus accepts the PSP payment id or, when none is known yet, the order id.
	GetPaymentStatus(ctx context.Context, reference string) (StandardStatus, error)
	// GetSubscriptionStatus reports APPROVED only once the first charge is captured.
	GetSubscriptionStatus(ctx context.Context, externalSubscriptionId string) (*SubscriptionStatus, error)
	ProcessWebhook(ctx context.Context, body []byte) (*WebhookResult, error)
	CancelSubscription(ctx context.Context, externalSubscriptionId string) error
	RefundPayment(ctx context.Context, req RefundRequest) error
}

// Tokenizer exchanges raw card data for a reusable PSP token.
type Tokenizer interface {
	TokenizeCard(ctx context.Context, card CardDetails) (string, error)
}
