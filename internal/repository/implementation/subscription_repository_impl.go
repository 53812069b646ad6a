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
)

type subscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db, mapper: mapper.NewPaymentMapper()}
}

func (r *subscriptionRepositoryImpl) Create(ctx context.Context, sub *entity.SubscriptionRecord) error {
	m := r.mapper.SubscriptionToModel(sub)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	sub.Id = m.Id
	sub.CreatedAt = m.CreatedAt
	return nil
}

func (r *subscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionRecord, error) {
	var m model.SubscriptionRecord
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
	return r.mapper.SubscriptionToEntity(&m), nil
}

func (r *subscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionRecord, error) {
	var models []*model.SubscriptionRecord
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	subs := make([]*entity.SubscriptionRecord, 0, len(models))
	for _, m := range models {
		subs = append(subs, r.mapper.SubscriptionToEntity(m))
	}
	return subs, nil
}

func (r *subscriptionRepositoryImpl) UpdateExternal(ctx context.Context, id uuid.UUID, externalSubscriptionId string, paymentId *uuid.UUID) error {
	updates := map[string]interface{}{
		"external_subscription_id": externalSubscriptionId,
	}
	if paymentId != nil {
		updates["payment_id"] = *paymentId
	}
	return r.db.WithContext(ctx).Model(&model.SubscriptionRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *subscriptionRepositoryImpl) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected []entity.SubscriptionStatus, next entity.SubscriptionStatus) (bool, error) {
	statuses := make([]string, 0, len(expected))
	for _, s := range expected {
		statuses = append(statuses, string(s))
	}

	result := r.db.WithContext(ctx).Model(&model.SubscriptionRecord{}).
		Where("id = ? AND status IN ?", id, statuses).
		Update("status", string(next))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
