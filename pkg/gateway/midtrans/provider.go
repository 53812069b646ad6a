package midtrans

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"course-marketplace-be/pkg/gateway"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

const ProviderName = "midtrans"

// Provider talks to the Midtrans Core API.
type Provider struct {
	client    coreapi.Client
	serverKey string
	clientKey string
}

func NewProvider(serverKey, clientKey string, isProduction bool) *Provider {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(serverKey, env)

	return &Provider{
		client:    client,
		serverKey: serverKey,
		clientKey: clientKey,
	}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chargeReq, err := buildChargeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, midErr := p.client.ChargeTransaction(chargeReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans charge failed: %s", midErr.GetMessage())
	}

	payload, _ := json.Marshal(resp)
	return &gateway.PaymentResult{
		ExternalId:     resp.TransactionID,
		OrderId:        req.OrderId,
		Status:         MapTransactionStatus(resp.TransactionStatus, resp.FraudStatus),
		ProviderStatus: resp.TransactionStatus,
		Payload:        payload,
	}, nil
}

func buildChargeRequest(req gateway.PaymentRequest) (*coreapi.ChargeReq, error) {
	chargeReq := &coreapi.ChargeReq{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderId,
			GrossAmt: req.Amount.Round(0).IntPart(),
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FName: req.Payer.FirstName,
			LName: req.Payer.LastName,
			Email: req.Payer.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.ItemId,
				Price: req.Amount.Round(0).IntPart(),
				Qty:   1,
				Name:  truncate(req.Description, 50),
			},
		},
	}

	switch req.Method {
	case gateway.MethodCreditCard, gateway.MethodDebitCard:
		if req.CardToken == "" {
			return nil, fmt.Errorf("midtrans: card token required for %s", req.Method)
		}
		chargeReq.PaymentType = coreapi.PaymentTypeCreditCard
		chargeReq.CreditCard = &coreapi.CreditCardDetails{
			TokenID:        req.CardToken,
			Authentication: true,
		}
	case gateway.MethodPix:
		chargeReq.PaymentType = coreapi.PaymentTypeQris
	case gateway.MethodBoleto:
		chargeReq.PaymentType = coreapi.PaymentTypeBankTransfer
		chargeReq.BankTransfer = &coreapi.BankTransferDetails{
			Bank: midtrans.BankBca,
		}
	default:
		return nil, fmt.Errorf("midtrans: unsupported payment method %q", req.Method)
	}
	return chargeReq, nil
}

func (p *Provider) CreateSubscription(ctx context.Context, req gateway.SubscriptionRequest) (*gateway.SubscriptionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.CardToken == "" {
		return nil, fmt.Errorf("midtrans: subscriptions require a saved card token")
	}

	subReq := &coreapi.SubscriptionReq{
		Name:        truncate(req.Reason, 40),
		Amount:      req.Amount.Round(0).IntPart(),
		Currency:    req.Currency,
		PaymentType: coreapi.PaymentTypeCreditCard,
		Token:       req.CardToken,
		Schedule: coreapi.ScheduleDetails{
			Interval:     req.Frequency,
			IntervalUnit: req.FrequencyType,
			StartTime:    req.StartAt.Format("2006-01-02 15:04:05 -0700"),
		},
	}

	resp, midErr := p.client.CreateSubscription(subReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans subscription failed: %s", midErr.GetMessage())
	}

	payload, _ := json.Marshal(resp)
	return &gateway.SubscriptionResult{
		ExternalId:     resp.ID,
		Status:         MapSubscriptionStatus(resp.Status),
		ProviderStatus: resp.Status,
		Payload:        payload,
	}, nil
}

func (p *Provider) GetPaymentStatus(ctx context.Context, reference string) (gateway.StandardStatus, error) {
	if err := ctx.Err(); err != nil {
		return gateway.StatusPending, err
	}

	resp, midErr := p.client.CheckTransaction(reference)
	if midErr != nil {
		if midErr.StatusCode == 404 {
			return gateway.StatusPending, gateway.ErrNotFound
		}
		return gateway.StatusPending, fmt.Errorf("midtrans status lookup failed: %s", midErr.GetMessage())
	}
	return MapTransactionStatus(resp.TransactionStatus, resp.FraudStatus), nil
}

func (p *Provider) GetSubscriptionStatus(ctx context.Context, externalSubscriptionId string) (*gateway.SubscriptionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, midErr := p.client.GetSubscription(externalSubscriptionId)
	if midErr != nil {
		if midErr.StatusCode == 404 {
			return nil, gateway.ErrNotFound
		}
		return nil, fmt.Errorf("midtrans subscription lookup failed: %s", midErr.GetMessage())
	}
	return resolveSubscription(resp, func(transactionId string) (gateway.StandardStatus, error) {
		return p.GetPaymentStatus(ctx, transactionId)
	})
}

func (p *Provider) CancelSubscription(ctx context.Context, externalSubscriptionId string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, midErr := p.client.DisableSubscription(externalSubscriptionId); midErr != nil {
		return fmt.Errorf("midtrans disable subscription failed: %s", midErr.GetMessage())
	}
	return nil
}

func (p *Provider) RefundPayment(ctx context.Context, req gateway.RefundRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, midErr := p.client.RefundTransaction(req.Reference, &coreapi.RefundReq{
		RefundKey: req.RefundKey,
		Amount:    req.Amount.Round(0).IntPart(),
		Reason:    req.Reason,
	})
	if midErr != nil {
		return fmt.Errorf("midtrans refund failed: %s", midErr.GetMessage())
	}
	return nil
}

func (p *Provider) TokenizeCard(ctx context.Context, card gateway.CardDetails) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, midErr := p.client.CardToken(card.Number, card.ExpMonth, card.ExpYear, card.CVV, p.clientKey)
	if midErr != nil {
		return "", fmt.Errorf("midtrans card token failed: %s", midErr.GetMessage())
	}
	if resp.TokenID == "" {
		return "", fmt.Errorf("midtrans card token rejected: %s", resp.StatusMessage)
	}
	return resp.TokenID, nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
