package contract

import (
	"context"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceDelta is applied atomically in SQL; zero fields are left alone.
type BalanceDelta struct {
	Available decimal.Decimal
	Pending   decimal.Decimal
	Earnings  decimal.Decimal
	Withdrawn decimal.Decimal
}

type LedgerRepository interface {
	FindBalance(ctx context.Context, instructorId uuid.UUID) (*entity.InstructorBalance, error)
	ApplyDelta(ctx context.Context, instructorId uuid.UUID, delta BalanceDelta) error
	// Withdraw moves amount out of available only if enough is available.
	Withdraw(ctx context.Context, instructorId uuid.UUID, amount decimal.Decimal) (bool, error)

	// AppendTransaction reports false when (payment_id, type) already exists.
	AppendTransaction(ctx context.Context, tx *entity.BalanceTransaction) (bool, error)
	FindTransaction(ctx context.Context, specs ...specification.Specification) (*entity.BalanceTransaction, error)
	FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.BalanceTransaction, error)
	MarkMatured(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	FindProfile(ctx context.Context, instructorId uuid.UUID) (*entity.PayoutProfile, error)
	SaveProfile(ctx context.Context, profile *entity.PayoutProfile) error
	CreatePayout(ctx context.Context, payout *entity.PayoutRequest) error
	FindPayout(ctx context.Context, specs ...specification.Specification) (*entity.PayoutRequest, error)
}
