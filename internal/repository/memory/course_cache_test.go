package memory

import (
	"context"
	"testing"
	"time"

	"course-marketplace-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCourses struct {
	calls  int
	course *entity.Course
}

func (c *countingCourses) FindById(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	c.calls++
	if c.course == nil || c.course.Id != id {
		return nil, nil
	}
	copied := *c.course
	return &copied, nil
}

func TestCourseCache(t *testing.T) {
	id := uuid.New()
	source := &countingCourses{course: &entity.Course{Id: id, Title: "Go", Price: decimal.NewFromInt(100)}}
	c := NewCourseCache(source, time.Minute)
	ctx := context.Background()

	first, err := c.FindById(ctx, id)
	require.NoError(t, err)
	first.Price = decimal.Zero

	second, err := c.FindById(ctx, id)
	require.NoError(t, err)
	assert.True(t, second.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, source.calls)

	missing, err := c.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	c.Invalidate(id)
	_, err = c.FindById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls)
}
