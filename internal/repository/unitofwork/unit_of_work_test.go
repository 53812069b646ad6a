package unitofwork_test

import (
	"context"
	"testing"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment() *entity.PaymentRecord {
	return &entity.PaymentRecord{
		Id:                uuid.New(),
		UserId:            uuid.New(),
		CourseId:          uuid.New(),
		InstructorId:      uuid.New(),
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

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	db := testutil.NewTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	p := newPayment()
	require.NoError(t, uow.PaymentRepository().Create(ctx, p))
	require.NoError(t, uow.Rollback())

	found, err := factory.NewUnitOfWork(ctx).PaymentRepository().FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUnitOfWork_BeginTwiceFails(t *testing.T) {
	db := testutil.NewTestDB(t)
	uow := unitofwork.NewUnitOfWork(db)
	ctx := context.Background()

	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	assert.Error(t, uow.Begin(ctx))
}

func TestPaymentRepository_CompareAndSetStatusOnlyOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := unitofwork.NewUnitOfWork(db).PaymentRepository()
	ctx := context.Background()

	p := newPayment()
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.CompareAndSetStatus(ctx, p.Id, entity.PaymentStatusPending, entity.PaymentStatusCompleted, contractChange())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetStatus(ctx, p.Id, entity.PaymentStatusPending, entity.PaymentStatusFailed, contractChange())
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, found.Status)
}

func TestPaymentRepository_FindByExternalReference(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := unitofwork.NewUnitOfWork(db).PaymentRepository()
	ctx := context.Background()

	p := newPayment()
	orderId := p.Id.String()
	p.ExternalOrderId = &orderId
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindOne(ctx, specification.ByExternalReference{Reference: orderId})
	require.NoError(t, err)
	require.NotNil(t, found)

	extId := "psp-123"
	require.NoError(t, repo.UpdateGatewayData(ctx, p.Id, &extId, nil, []byte(`{"ok":true}`)))

	found, err = repo.FindOne(ctx, specification.ByExternalReference{Reference: extId})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.Id, found.Id)
	assert.JSONEq(t, `{"ok":true}`, string(found.GatewayPayload))
}
