package factory

import (
	"testing"

	"course-marketplace-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGateway(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PaymentConfig
		wantErr bool
	}{
		{
			name: "midtrans configured",
			cfg: config.PaymentConfig{
				GatewayProvider: "midtrans",
				Midtrans:        config.MidtransConfig{ServerKey: "SB-Mid-server-x"},
			},
		},
		{
			name:    "midtrans without key",
			cfg:     config.PaymentConfig{GatewayProvider: "midtrans"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     config.PaymentConfig{GatewayProvider: "paypal"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := NewGateway(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrGatewayNotConfigured)
				assert.Nil(t, gw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "midtrans", gw.Name())
		})
	}
}
