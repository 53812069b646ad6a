package implementation

import (
	"context"
	"errors"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/mapper"
	"course-marketplace-be/internal/model"
	"course-marketplace-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type courseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CatalogMapper
}

func NewCourseRepository(db *gorm.DB) contract.CourseRepository {
	return &courseRepositoryImpl{db: db, mapper: mapper.NewCatalogMapper()}
}

func (r *courseRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var m model.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CourseToEntity(&m), nil
}

type userRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CatalogMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &userRepositoryImpl{db: db, mapper: mapper.NewCatalogMapper()}
}

func (r *userRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var m model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserToEntity(&m), nil
}

type enrollmentRepositoryImpl struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) contract.EnrollmentRepository {
	return &enrollmentRepositoryImpl{db: db}
}

func (r *enrollmentRepositoryImpl) Grant(ctx context.Context, access *entity.CourseAccess) (bool, error) {
	grantedAt := access.GrantedAt
	if grantedAt.IsZero() {
		grantedAt = time.Now()
	}
	m := &model.CourseAccess{
		Id:        access.Id,
		UserId:    access.UserId,
		CourseId:  access.CourseId,
		PaymentId: access.PaymentId,
		GrantedAt: grantedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *enrollmentRepositoryImpl) Exists(ctx context.Context, userId, courseId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CourseAccess{}).
		Where("user_id = ? AND course_id = ?", userId, courseId).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepositoryImpl) Revoke(ctx context.Context, userId, courseId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userId, courseId).
		Delete(&model.CourseAccess{}).Error
}
