package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	assert.Equal(t, KindIneligible, KindOf(Ineligible("REFUND_WINDOW_EXPIRED", "too late")))
	assert.Equal(t, KindGateway, KindOf(fmt.Errorf("wrap: %w", Gateway("psp down", base))))
	assert.Equal(t, KindInternal, KindOf(base))
	assert.Equal(t, "REFUND_WINDOW_EXPIRED", CodeOf(Ineligible("REFUND_WINDOW_EXPIRED", "too late")))
	assert.True(t, Is(Validation("BAD", "bad"), KindValidation))
}

func TestAppError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := NotFound("PAYMENT_NOT_FOUND", "payment not found", base)

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "PAYMENT_NOT_FOUND")
}
