package testutil

import (
	"testing"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Amount compares money at cent precision. SQLite hands sums back as floats.
func Amount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, decimal.RequireFromString(want).StringFixed(2), got.Round(2).StringFixed(2), msgAndArgs...)
}

func SeedUser(t *testing.T, db *gorm.DB, role entity.UserRole) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&model.User{
		Id:       id,
		Email:    id.String() + "@example.com",
		FullName: "Test " + string(role),
		Role:     string(role),
		IsActive: true,
	}).Error)
	return id
}

func SeedCourse(t *testing.T, db *gorm.DB, instructorId uuid.UUID, price string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&model.Course{
		Id:           id,
		Title:        "Go in Production",
		Price:        decimal.RequireFromString(price),
		Currency:     "IDR",
		InstructorId: instructorId,
	}).Error)
	return id
}

// PendingPayment builds a 100.00 one-time payment with an 80/20 split.
func PendingPayment(userId, courseId, instructorId uuid.UUID) *entity.PaymentRecord {
	id := uuid.New()
	orderId := id.String()
	return &entity.PaymentRecord{
		Id:                id,
		UserId:            userId,
		CourseId:          courseId,
		InstructorId:      instructorId,
		ExternalOrderId:   &orderId,
		Amount:            decimal.NewFromInt(100),
		OriginalAmount:    decimal.NewFromInt(100),
		DiscountAmount:    decimal.Zero,
		Currency:          "IDR",
		Status:            entity.PaymentStatusPending,
		PaymentType:       entity.PaymentTypeOneTime,
		PaymentMethod:     entity.PaymentMethodPix,
		PlatformFeeAmount: decimal.NewFromInt(20),
		InstructorAmount:  decimal.NewFromInt(80),
		GatewayProvider:   "fake",
	}
}
