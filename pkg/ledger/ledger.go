// Package ledger keeps instructor earnings: credits land in the pending bucket, mature into
// the available bucket after the holding period and leave through monthly payouts.
package ledger

import (
	"context"
	"fmt"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/pkg/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Policy struct {
	HoldingPeriod time.Duration
	PayoutMinimum decimal.Decimal
}

type ProfileInput struct {
	HolderName  string
	PixKey      string
	BankAccount string
}

type Ledger struct {
	uowFactory unitofwork.RepositoryFactory
	policy     Policy
	publisher  notify.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewLedger(uowFactory unitofwork.RepositoryFactory, policy Policy, publisher notify.Publisher, log logger.ILogger) *Ledger {
	return &Ledger{
		uowFactory: uowFactory,
		policy:     policy,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
	}
}

// Credit records the instructor share of a completed payment. It runs inside the caller's
// transaction and is a no-op when the payment was already credited.
func (l *Ledger) Credit(ctx context.Context, uow unitofwork.UnitOfWork, instructorId uuid.UUID, amount decimal.Decimal, paymentId uuid.UUID) error {
	repo := uow.LedgerRepository()
	inserted, err := repo.AppendTransaction(ctx, &entity.BalanceTransaction{
		InstructorId: instructorId,
		Type:         entity.TransactionTypeCredit,
		Amount:       amount,
		PaymentId:    &paymentId,
		Description:  "Course sale",
		CreatedAt:    l.now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	return repo.ApplyDelta(ctx, instructorId, contract.BalanceDelta{
		Pending:  amount,
		Earnings: amount,
	})
}

// Reverse takes back the credit of a refunded payment. Money already paid out is not clawed back.
func (l *Ledger) Reverse(ctx context.Context, uow unitofwork.UnitOfWork, paymentId uuid.UUID) error {
	repo := uow.LedgerRepository()

	credit, err := repo.FindTransaction(ctx,
		specification.ByPaymentID{PaymentID: paymentId},
		specification.ByTransactionType{Type: string(entity.TransactionTypeCredit)},
	)
	if err != nil {
		return err
	}
	if credit == nil {
		return nil
	}

	debit, err := repo.FindTransaction(ctx,
		specification.ByPaymentID{PaymentID: paymentId},
		specification.ByTransactionType{Type: string(entity.TransactionTypeDebit)},
	)
	if err != nil {
		return err
	}
	if debit != nil {
		return nil
	}

	var delta contract.BalanceDelta
	now := l.now()

	// Claiming the maturation slot keeps the sweep from moving a reversed credit.
	claimed, err := repo.MarkMatured(ctx, credit.Id, now)
	if err != nil {
		return err
	}
	if claimed {
		delta.Pending = credit.Amount.Neg()
	} else {
		balance, err := repo.FindBalance(ctx, credit.InstructorId)
		if err != nil {
			return err
		}
		if balance == nil || balance.AvailableBalance.LessThan(credit.Amount) {
			l.logger.Warn("LEDGER", "Credit already withdrawn, reversal skipped", map[string]interface{}{
				"payment_id":    paymentId.String(),
				"instructor_id": credit.InstructorId.String(),
				"amount":        credit.Amount.StringFixed(2),
			})
			return nil
		}
		delta.Available = credit.Amount.Neg()
	}
	delta.Earnings = credit.Amount.Neg()

	if _, err := repo.AppendTransaction(ctx, &entity.BalanceTransaction{
		InstructorId: credit.InstructorId,
		Type:         entity.TransactionTypeDebit,
		Amount:       credit.Amount,
		PaymentId:    &paymentId,
		Description:  "Refund reversal",
		CreatedAt:    now,
	}); err != nil {
		return err
	}
	return repo.ApplyDelta(ctx, credit.InstructorId, delta)
}

// MatureCredits moves every credit older than the holding period from pending to available.
// Each credit moves exactly once, even with overlapping runs.
func (l *Ledger) MatureCredits(ctx context.Context, now time.Time) (int, error) {
	credits, err := l.uowFactory.NewUnitOfWork(ctx).LedgerRepository().FindTransactions(ctx,
		specification.ByTransactionType{Type: string(entity.TransactionTypeCredit)},
		specification.Unmatured{},
		specification.CreatedBefore{Before: now.Add(-l.policy.HoldingPeriod)},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to load maturing credits: %w", err)
	}

	matured := 0
	for _, credit := range credits {
		ok, err := l.mature(ctx, credit, now)
		if err != nil {
			l.logger.Error("LEDGER", "Failed to mature credit", map[string]interface{}{
				"transaction_id": credit.Id.String(),
				"error":          err.Error(),
			})
			continue
		}
		if ok {
			matured++
		}
	}

	if matured > 0 {
		l.logger.Info("LEDGER", "Credits matured", map[string]interface{}{"count": matured})
	}
	return matured, nil
}

func (l *Ledger) mature(ctx context.Context, credit *entity.BalanceTransaction, now time.Time) (bool, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	repo := uow.LedgerRepository()
	ok, err := repo.MarkMatured(ctx, credit.Id, now)
	if err != nil || !ok {
		return false, err
	}
	if err := repo.ApplyDelta(ctx, credit.InstructorId, contract.BalanceDelta{
		Pending:   credit.Amount.Neg(),
		Available: credit.Amount,
	}); err != nil {
		return false, err
	}
	return true, uow.Commit()
}

func (l *Ledger) RequestPayout(ctx context.Context, instructorId uuid.UUID, amount decimal.Decimal, now time.Time) (*entity.PayoutRequest, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("INVALID_AMOUNT", "payout amount must be positive")
	}
	if amount.LessThan(l.policy.PayoutMinimum) {
		return nil, apperror.Ineligible("PAYOUT_BELOW_MINIMUM",
			fmt.Sprintf("minimum payout is %s", l.policy.PayoutMinimum.StringFixed(2)))
	}

	uow := l.uowFactory.NewUnitOfWork(ctx)
	repo := uow.LedgerRepository()

	profile, err := repo.FindProfile(ctx, instructorId)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Verified {
		return nil, apperror.Ineligible("PAYOUT_PROFILE_UNVERIFIED", "a verified payout profile is required")
	}

	periodKey := entity.PayoutPeriodKey(now)
	existing, err := repo.FindPayout(ctx,
		specification.ByInstructorID{InstructorID: instructorId},
		specification.Filter("period_key", periodKey),
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Ineligible("PAYOUT_ALREADY_REQUESTED", "only one payout can be requested per month")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()
	repo = uow.LedgerRepository()

	ok, err := repo.Withdraw(ctx, instructorId, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Ineligible("INSUFFICIENT_BALANCE", "amount exceeds available balance")
	}

	payout := &entity.PayoutRequest{
		Id:           uuid.New(),
		InstructorId: instructorId,
		Amount:       amount,
		Status:       entity.PayoutStatusRequested,
		PeriodKey:    periodKey,
		RequestedAt:  now,
	}
	if err := repo.CreatePayout(ctx, payout); err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	if _, err := repo.AppendTransaction(ctx, &entity.BalanceTransaction{
		InstructorId: instructorId,
		Type:         entity.TransactionTypeDebit,
		Amount:       amount,
		PayoutId:     &payout.Id,
		Description:  "Payout " + periodKey,
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	l.publisher.PublishPayoutRequested(ctx, payout)
	return payout, nil
}

// GetBalance returns a zero balance for instructors who have not sold anything yet.
func (l *Ledger) GetBalance(ctx context.Context, instructorId uuid.UUID) (*entity.InstructorBalance, error) {
	balance, err := l.uowFactory.NewUnitOfWork(ctx).LedgerRepository().FindBalance(ctx, instructorId)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return &entity.InstructorBalance{InstructorId: instructorId}, nil
	}
	return balance, nil
}

func (l *Ledger) ListTransactions(ctx context.Context, instructorId uuid.UUID, page, size int) ([]*entity.BalanceTransaction, error) {
	return l.uowFactory.NewUnitOfWork(ctx).LedgerRepository().FindTransactions(ctx,
		specification.ByInstructorID{InstructorID: instructorId},
		specification.Page(page, size),
	)
}

// UpsertPayoutProfile saves payout details. Any change drops the verified flag.
func (l *Ledger) UpsertPayoutProfile(ctx context.Context, instructorId uuid.UUID, input ProfileInput) (*entity.PayoutProfile, error) {
	if input.PixKey == "" && input.BankAccount == "" {
		return nil, apperror.Validation("PAYOUT_DESTINATION_REQUIRED", "pix key or bank account is required")
	}

	repo := l.uowFactory.NewUnitOfWork(ctx).LedgerRepository()
	profile, err := repo.FindProfile(ctx, instructorId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.PayoutProfile{InstructorId: instructorId}
	}

	if profile.HolderName != input.HolderName || profile.PixKey != input.PixKey || profile.BankAccount != input.BankAccount {
		profile.Verified = false
		profile.VerifiedAt = nil
	}
	profile.HolderName = input.HolderName
	profile.PixKey = input.PixKey
	profile.BankAccount = input.BankAccount

	if err := repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *Ledger) VerifyPayoutProfile(ctx context.Context, instructorId uuid.UUID) (*entity.PayoutProfile, error) {
	repo := l.uowFactory.NewUnitOfWork(ctx).LedgerRepository()
	profile, err := repo.FindProfile(ctx, instructorId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("PAYOUT_PROFILE_NOT_FOUND", "payout profile not found", entity.ErrPayoutProfileMissing)
	}

	verifiedAt := l.now()
	profile.Verified = true
	profile.VerifiedAt = &verifiedAt
	if err := repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
