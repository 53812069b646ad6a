package implementation

import (
	"context"
	"errors"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/mapper"
	"course-marketplace-be/internal/model"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/scope"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type couponRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CouponMapper
}

func NewCouponRepository(db *gorm.DB) contract.CouponRepository {
	return &couponRepositoryImpl{db: db, mapper: mapper.NewCouponMapper()}
}

func (r *couponRepositoryImpl) Create(ctx context.Context, coupon *entity.Coupon) error {
	m := r.mapper.ToModel(coupon)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	coupon.Id = m.Id
	coupon.Code = m.Code
	return nil
}

func (r *couponRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Coupon, error) {
	var m model.Coupon
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *couponRepositoryImpl) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	return r.FindOne(ctx, specification.Filter("code", entity.NormalizeCouponCode(code)))
}

func (r *couponRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Coupon, error) {
	var models []*model.Coupon
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	coupons := make([]*entity.Coupon, 0, len(models))
	for _, m := range models {
		coupons = append(coupons, r.mapper.ToEntity(m))
	}
	return coupons, nil
}

func (r *couponRepositoryImpl) Update(ctx context.Context, coupon *entity.Coupon) error {
	return r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ?", coupon.Id).
		Updates(map[string]interface{}{
			"discount_type":  string(coupon.DiscountType),
			"discount_value": coupon.DiscountValue,
			"valid_from":     coupon.ValidFrom,
			"valid_until":    coupon.ValidUntil,
			"max_uses":       coupon.MaxUses,
			"is_active":      coupon.IsActive,
		}).Error
}

func (r *couponRepositoryImpl) HasUsage(ctx context.Context, couponId, userId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponId, userId).
		Count(&count).Error
	return count > 0, err
}

func (r *couponRepositoryImpl) RecordUsage(ctx context.Context, usage *entity.CouponUsage) (bool, error) {
	m := &model.CouponUsage{
		Id:        usage.Id,
		CouponId:  usage.CouponId,
		UserId:    usage.UserId,
		PaymentId: usage.PaymentId,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ?", usage.CouponId).
		Update("used_count", gorm.Expr("used_count + 1")).Error
	return err == nil, err
}
