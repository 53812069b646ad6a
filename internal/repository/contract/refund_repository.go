package contract

import (
	"context"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RefundRepository interface {
	// Create reports false when the payment already has a PENDING, APPROVED or PROCESSED request.
	Create(ctx context.Context, refund *entity.RefundRequest) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.RefundStatus, notes string, processedAt *time.Time) (bool, error)
}
