package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"

	"course-marketplace-be/pkg/gateway"
)

type notification struct {
	TransactionId     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
}

// ProcessWebhook verifies SHA512(order_id + status_code + gross_amount + server_key)
// before anything in the body is trusted.
func (p *Provider) ProcessWebhook(ctx context.Context, body []byte) (*gateway.WebhookResult, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, gateway.ErrInvalidWebhook
	}
	if n.OrderId == "" || n.TransactionStatus == "" {
		return nil, gateway.ErrInvalidWebhook
	}

	expected := Signature(n.OrderId, n.StatusCode, n.GrossAmount, p.serverKey)
	if n.SignatureKey == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) != 1 {
		return nil, gateway.ErrInvalidSignature
	}

	return &gateway.WebhookResult{
		ExternalId:     n.TransactionId,
		OrderId:        n.OrderId,
		Status:         MapTransactionStatus(n.TransactionStatus, n.FraudStatus),
		ProviderStatus: n.TransactionStatus,
		Payload:        body,
	}, nil
}

func Signature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
