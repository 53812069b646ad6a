// Package gatewaytest provides an in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"course-marketplace-be/pkg/gateway"
)

type Fake struct {
	mu sync.Mutex

	CreateStatus gateway.StandardStatus
	CreateErr    error
	SubStatus    gateway.StandardStatus
	SubErr       error
	StatusErr    error
	RefundErr    error
	CancelErr    error
	TokenErr     error

	statuses  map[string]gateway.StandardStatus
	charges   map[string]string
	refunds   []gateway.RefundRequest
	cancelled []string

	StatusCalls atomic.Int32
	seq         atomic.Int32
}

func New() *Fake {
	return &Fake{
		CreateStatus: gateway.StatusPending,
		SubStatus:    gateway.StatusPending,
		statuses:     map[string]gateway.StandardStatus{},
		charges:      map[string]string{},
	}
}

func (f *Fake) Name() string { return "fake" }

// SetStatus sets what GetPaymentStatus reports for a reference.
func (f *Fake) SetStatus(reference string, status gateway.StandardStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[reference] = status
}

func (f *Fake) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentResult, error) {
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	externalId := fmt.Sprintf("fake-pay-%d", f.seq.Add(1))
	f.SetStatus(externalId, f.CreateStatus)
	payload, _ := json.Marshal(map[string]string{"id": externalId, "order_id": req.OrderId})
	return &gateway.PaymentResult{
		ExternalId:     externalId,
		OrderId:        req.OrderId,
		Status:         f.CreateStatus,
		ProviderStatus: string(f.CreateStatus),
		Payload:        payload,
	}, nil
}

func (f *Fake) CreateSubscription(ctx context.Context, req gateway.SubscriptionRequest) (*gateway.SubscriptionResult, error) {
	if f.SubErr != nil {
		return nil, f.SubErr
	}
	externalId := fmt.Sprintf("fake-sub-%d", f.seq.Add(1))
	f.SetStatus(externalId, f.SubStatus)
	return &gateway.SubscriptionResult{
		ExternalId:     externalId,
		Status:         f.SubStatus,
		ProviderStatus: string(f.SubStatus),
	}, nil
}

func (f *Fake) GetPaymentStatus(ctx context.Context, reference string) (gateway.StandardStatus, error) {
	f.StatusCalls.Add(1)
	if f.StatusErr != nil {
		return gateway.StatusPending, f.StatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	status, ok := f.statuses[reference]
	if !ok {
		return gateway.StatusPending, gateway.ErrNotFound
	}
	return status, nil
}

// SetSubscriptionCharge records the first charge of a subscription and its status.
func (f *Fake) SetSubscriptionCharge(subscriptionId, chargeId string, status gateway.StandardStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.charges[subscriptionId] = chargeId
	f.statuses[chargeId] = status
}

// GetSubscriptionStatus reports the first charge when one is set, otherwise PENDING for a
// known subscription.
func (f *Fake) GetSubscriptionStatus(ctx context.Context, externalSubscriptionId string) (*gateway.SubscriptionStatus, error) {
	f.StatusCalls.Add(1)
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.statuses[externalSubscriptionId]; !ok {
		return nil, gateway.ErrNotFound
	}
	chargeId, ok := f.charges[externalSubscriptionId]
	if !ok {
		return &gateway.SubscriptionStatus{Status: gateway.StatusPending}, nil
	}
	return &gateway.SubscriptionStatus{Status: f.statuses[chargeId], ChargeId: chargeId}, nil
}

// ProcessWebhook accepts {"order_id","external_id","status","signature":"ok"}.
func (f *Fake) ProcessWebhook(ctx context.Context, body []byte) (*gateway.WebhookResult, error) {
	var n struct {
		OrderId    string `json:"order_id"`
		ExternalId string `json:"external_id"`
		Status     string `json:"status"`
		Signature  string `json:"signature"`
	}
	if err := json.Unmarshal(body, &n); err != nil || (n.OrderId == "" && n.ExternalId == "") {
		return nil, gateway.ErrInvalidWebhook
	}
	if n.Signature != "ok" {
		return nil, gateway.ErrInvalidSignature
	}
	return &gateway.WebhookResult{
		ExternalId:     n.ExternalId,
		OrderId:        n.OrderId,
		Status:         gateway.StandardStatus(n.Status),
		ProviderStatus: n.Status,
		Payload:        body,
	}, nil
}

func (f *Fake) CancelSubscription(ctx context.Context, externalSubscriptionId string) error {
	if f.CancelErr != nil {
		return f.CancelErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, externalSubscriptionId)
	return nil
}

// RefundPayment records one refund per RefundKey and reports the reference as REFUNDED afterwards.
func (f *Fake) RefundPayment(ctx context.Context, req gateway.RefundRequest) error {
	if f.RefundErr != nil {
		return f.RefundErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.refunds {
		if r.RefundKey == req.RefundKey {
			return nil
		}
	}
	f.refunds = append(f.refunds, req)
	f.statuses[req.Reference] = gateway.StatusRefunded
	return nil
}

func (f *Fake) TokenizeCard(ctx context.Context, card gateway.CardDetails) (string, error) {
	if f.TokenErr != nil {
		return "", f.TokenErr
	}
	if len(card.Number) < 4 {
		return "", errors.New("fake: card number too short")
	}
	return fmt.Sprintf("tok-%s-%d", card.Number[len(card.Number)-4:], f.seq.Add(1)), nil
}

func (f *Fake) Refunds() []gateway.RefundRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.RefundRequest(nil), f.refunds...)
}

func (f *Fake) Cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}
