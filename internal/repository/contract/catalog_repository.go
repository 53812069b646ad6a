package contract

import (
	"context"

	"course-marketplace-be/internal/entity"

	"github.com/google/uuid"
)

type CourseRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

type UserRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type EnrollmentRepository interface {
	// Grant is idempotent per (user, course) and reports whether a row was written.
	Grant(ctx context.Context, access *entity.CourseAccess) (bool, error)
	Exists(ctx context.Context, userId, courseId uuid.UUID) (bool, error)
	Revoke(ctx context.Context, userId, courseId uuid.UUID) error
}
