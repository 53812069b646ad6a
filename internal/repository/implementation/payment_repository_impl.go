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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type paymentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &paymentRepositoryImpl{db: db, mapper: mapper.NewPaymentMapper()}
}

func (r *paymentRepositoryImpl) Create(ctx context.Context, payment *entity.PaymentRecord) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	payment.Id = m.Id
	payment.CreatedAt = m.CreatedAt
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *paymentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentRecord, error) {
	var m model.PaymentRecord
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

func (r *paymentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentRecord, error) {
	var models []*model.PaymentRecord
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	payments := make([]*entity.PaymentRecord, 0, len(models))
	for _, m := range models {
		payments = append(payments, r.mapper.ToEntity(m))
	}
	return payments, nil
}

func (r *paymentRepositoryImpl) UpdateGatewayData(ctx context.Context, id uuid.UUID, externalPaymentId, externalOrderId *string, payload []byte) error {
	updates := map[string]interface{}{}
	if externalPaymentId != nil {
		updates["external_payment_id"] = *externalPaymentId
	}
	if externalOrderId != nil {
		updates["external_order_id"] = *externalOrderId
	}
	if len(payload) > 0 {
		updates["gateway_payload"] = datatypes.JSON(payload)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *paymentRepositoryImpl) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.PaymentStatus, change contract.StatusChange) (bool, error) {
	updates := map[string]interface{}{
		"status": string(next),
	}
	if change.Reason != "" {
		updates["status_reason"] = change.Reason
	}
	if change.CompletedAt != nil {
		updates["completed_at"] = *change.CompletedAt
	}

	result := r.db.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
