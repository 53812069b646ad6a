package factory

import (
	"errors"
	"fmt"

	"course-marketplace-be/internal/config"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/gateway/midtrans"
)

var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

// NewGateway fails fast so a misconfigured deployment never boots.
func NewGateway(cfg config.PaymentConfig) (gateway.Gateway, error) {
	switch cfg.GatewayProvider {
	case midtrans.ProviderName:
		if cfg.Midtrans.ServerKey == "" {
			return nil, fmt.Errorf("%w: %s server key missing", ErrGatewayNotConfigured, cfg.GatewayProvider)
		}
		return midtrans.NewProvider(cfg.Midtrans.ServerKey, cfg.Midtrans.ClientKey, cfg.Midtrans.IsProduction), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrGatewayNotConfigured, cfg.GatewayProvider)
	}
}
