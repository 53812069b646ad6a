package contract

import (
	"context"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CardRepository interface {
	Create(ctx context.Context, card *entity.SavedCard) error
	// CreateIfSlotFree inserts the card unless it would be a second default for the user.
	CreateIfSlotFree(ctx context.Context, card *entity.SavedCard) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedCard, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedCard, error)
	ClearDefault(ctx context.Context, userId uuid.UUID) error
	MarkDefault(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
