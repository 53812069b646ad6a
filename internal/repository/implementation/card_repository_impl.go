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

type cardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CardMapper
}

func NewCardRepository(db *gorm.DB) contract.CardRepository {
	return &cardRepositoryImpl{db: db, mapper: mapper.NewCardMapper()}
}

func (r *cardRepositoryImpl) Create(ctx context.Context, card *entity.SavedCard) error {
	m := r.mapper.ToModel(card)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	card.Id = m.Id
	card.CreatedAt = m.CreatedAt
	return nil
}

func (r *cardRepositoryImpl) CreateIfSlotFree(ctx context.Context, card *entity.SavedCard) (bool, error) {
	m := r.mapper.ToModel(card)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	card.Id = m.Id
	card.CreatedAt = m.CreatedAt
	return result.RowsAffected == 1, nil
}

func (r *cardRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedCard, error) {
	var m model.SavedCard
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

func (r *cardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedCard, error) {
	var models []*model.SavedCard
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	cards := make([]*entity.SavedCard, 0, len(models))
	for _, m := range models {
		cards = append(cards, r.mapper.ToEntity(m))
	}
	return cards, nil
}

func (r *cardRepositoryImpl) ClearDefault(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.SavedCard{}).
		Where("user_id = ? AND is_default = ?", userId, true).
		Update("is_default", false).Error
}

func (r *cardRepositoryImpl) MarkDefault(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.SavedCard{}).
		Where("id = ?", id).
		Update("is_default", true).Error
}

func (r *cardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SavedCard{}, "id = ?", id).Error
}
