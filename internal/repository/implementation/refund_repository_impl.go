package implementation

import (
	"context"
	"errors"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/mapper"
	"course-marketplace-be/internal/model"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type refundRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RefundMapper
}

func NewRefundRepository(db *gorm.DB) contract.RefundRepository {
	return &refundRepositoryImpl{db: db, mapper: mapper.NewRefundMapper()}
}

// Create relies on idx_refund_requests_one_active to reject a second active request.
func (r *refundRepositoryImpl) Create(ctx context.Context, refund *entity.RefundRequest) (bool, error) {
	m := r.mapper.ToModel(refund)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	refund.Id = m.Id
	return result.RowsAffected == 1, nil
}

func (r *refundRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundRequest, error) {
	var m model.RefundRequest
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

func (r *refundRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundRequest, error) {
	var models []*model.RefundRequest
	query := r.db.WithContext(ctx).Order("requested_at DESC")
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	refunds := make([]*entity.RefundRequest, 0, len(models))
	for _, m := range models {
		refunds = append(refunds, r.mapper.ToEntity(m))
	}
	return refunds, nil
}

func (r *refundRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.RefundRequest{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *refundRepositoryImpl) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, next entity.RefundStatus, notes string, processedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status": string(next),
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if processedAt != nil {
		updates["processed_at"] = *processedAt
	}

	result := r.db.WithContext(ctx).Model(&model.RefundRequest{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
