package contract

import (
	"context"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Coupon, error)
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Coupon, error)
	Update(ctx context.Context, coupon *entity.Coupon) error
	HasUsage(ctx context.Context, couponId, userId uuid.UUID) (bool, error)
	// RecordUsage inserts the usage and bumps used_count. A repeated (coupon, user) pair is a no-op.
	RecordUsage(ctx context.Context, usage *entity.CouponUsage) (bool, error)
}
