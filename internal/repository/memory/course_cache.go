package memory

import (
	"context"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CourseCache keeps recently priced courses in memory. Checkout and quote read the same
// course many times in a burst; price edits become visible after ttl.
type CourseCache struct {
	next  contract.CourseRepository
	cache *cache.Cache
}

func NewCourseCache(next contract.CourseRepository, ttl time.Duration) *CourseCache {
	return &CourseCache{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *CourseCache) FindById(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	if x, found := r.cache.Get(id.String()); found {
		course := *x.(*entity.Course)
		return &course, nil
	}

	course, err := r.next.FindById(ctx, id)
	if err != nil || course == nil {
		return course, err
	}

	stored := *course
	r.cache.Set(id.String(), &stored, cache.DefaultExpiration)
	return course, nil
}

func (r *CourseCache) Invalidate(id uuid.UUID) {
	r.cache.Delete(id.String())
}
