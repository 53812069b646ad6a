package unitofwork_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real Postgres so the conditional update races across connections.
func TestPostgres_CompareAndSetStatusHasOneWinner(t *testing.T) {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false, database.DefaultPool)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	factory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()

	p := newPayment()
	require.NoError(t, factory.NewUnitOfWork(ctx).PaymentRepository().Create(ctx, p))
	t.Cleanup(func() { db.Exec("DELETE FROM payment_records WHERE id = ?", p.Id) })

	const racers = 8
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := factory.NewUnitOfWork(ctx)
			if err := uow.Begin(ctx); err != nil {
				return
			}
			defer uow.Rollback()

			ok, err := uow.PaymentRepository().CompareAndSetStatus(ctx, p.Id,
				entity.PaymentStatusPending, entity.PaymentStatusCompleted, contract.StatusChange{})
			if err != nil || !ok {
				return
			}
			if uow.Commit() == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	found, err := factory.NewUnitOfWork(ctx).PaymentRepository().FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, found.Status)
}
