package contract

import (
	"context"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
)

// StatusChange carries the columns written together with a status transition.
type StatusChange struct {
	Reason      string
	CompletedAt *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.PaymentRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentRecord, error)
	// UpdateGatewayData writes PSP identifiers and the raw payload. It never touches status.
	UpdateGatewayData(ctx context.Context, id uuid.UUID, externalPaymentId, externalOrderId *string, payload []byte) error
	// CompareAndSetStatus moves the record from expected to next only if it is still in expected.
	// It reports whether this caller performed the transition.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.PaymentStatus, change StatusChange) (bool, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.SubscriptionRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionRecord, error)
	UpdateExternal(ctx context.Context, id uuid.UUID, externalSubscriptionId string, paymentId *uuid.UUID) error
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected []entity.SubscriptionStatus, next entity.SubscriptionStatus) (bool, error)
}
