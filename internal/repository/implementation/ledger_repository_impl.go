package implementation

import (
	"context"
	"errors"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/mapper"
	"course-marketplace-be/internal/model"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/scope"
	"course-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LedgerMapper
}

func NewLedgerRepository(db *gorm.DB) contract.LedgerRepository {
	return &ledgerRepositoryImpl{db: db, mapper: mapper.NewLedgerMapper()}
}

func (r *ledgerRepositoryImpl) FindBalance(ctx context.Context, instructorId uuid.UUID) (*entity.InstructorBalance, error) {
	var m model.InstructorBalance
	if err := r.db.WithContext(ctx).Where("instructor_id = ?", instructorId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.BalanceToEntity(&m), nil
}

func (r *ledgerRepositoryImpl) ensureBalance(ctx context.Context, instructorId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.InstructorBalance{
			InstructorId:     instructorId,
			AvailableBalance: decimal.Zero,
			PendingBalance:   decimal.Zero,
			TotalEarnings:    decimal.Zero,
			TotalWithdrawn:   decimal.Zero,
		}).Error
}

func (r *ledgerRepositoryImpl) ApplyDelta(ctx context.Context, instructorId uuid.UUID, delta contract.BalanceDelta) error {
	if err := r.ensureBalance(ctx, instructorId); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if !delta.Available.IsZero() {
		updates["available_balance"] = gorm.Expr("available_balance + ?", delta.Available)
	}
	if !delta.Pending.IsZero() {
		updates["pending_balance"] = gorm.Expr("pending_balance + ?", delta.Pending)
	}
	if !delta.Earnings.IsZero() {
		updates["total_earnings"] = gorm.Expr("total_earnings + ?", delta.Earnings)
	}
	if !delta.Withdrawn.IsZero() {
		updates["total_withdrawn"] = gorm.Expr("total_withdrawn + ?", delta.Withdrawn)
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&model.InstructorBalance{}).
		Where("instructor_id = ?", instructorId).
		Updates(updates).Error
}

func (r *ledgerRepositoryImpl) Withdraw(ctx context.Context, instructorId uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.InstructorBalance{}).
		Where("instructor_id = ? AND available_balance >= ?", instructorId, amount).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance - ?", amount),
			"total_withdrawn":   gorm.Expr("total_withdrawn + ?", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *ledgerRepositoryImpl) AppendTransaction(ctx context.Context, tx *entity.BalanceTransaction) (bool, error) {
	m := r.mapper.TransactionToModel(tx)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	tx.Id = m.Id
	tx.CreatedAt = m.CreatedAt
	return result.RowsAffected == 1, nil
}

func (r *ledgerRepositoryImpl) FindTransaction(ctx context.Context, specs ...specification.Specification) (*entity.BalanceTransaction, error) {
	var m model.BalanceTransaction
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TransactionToEntity(&m), nil
}

func (r *ledgerRepositoryImpl) FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.BalanceTransaction, error) {
	var models []*model.BalanceTransaction
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	txs := make([]*entity.BalanceTransaction, 0, len(models))
	for _, m := range models {
		txs = append(txs, r.mapper.TransactionToEntity(m))
	}
	return txs, nil
}

func (r *ledgerRepositoryImpl) MarkMatured(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.BalanceTransaction{}).
		Where("id = ? AND matured_at IS NULL", id).
		Update("matured_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *ledgerRepositoryImpl) FindProfile(ctx context.Context, instructorId uuid.UUID) (*entity.PayoutProfile, error) {
	var m model.PayoutProfile
	if err := r.db.WithContext(ctx).Where("instructor_id = ?", instructorId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ProfileToEntity(&m), nil
}

func (r *ledgerRepositoryImpl) SaveProfile(ctx context.Context, profile *entity.PayoutProfile) error {
	m := &model.PayoutProfile{
		InstructorId: profile.InstructorId,
		HolderName:   profile.HolderName,
		PixKey:       profile.PixKey,
		BankAccount:  profile.BankAccount,
		Verified:     profile.Verified,
		VerifiedAt:   profile.VerifiedAt,
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ledgerRepositoryImpl) CreatePayout(ctx context.Context, payout *entity.PayoutRequest) error {
	m := &model.PayoutRequest{
		Id:           payout.Id,
		InstructorId: payout.InstructorId,
		Amount:       payout.Amount,
		Status:       string(payout.Status),
		PeriodKey:    payout.PeriodKey,
		RequestedAt:  payout.RequestedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	payout.Id = m.Id
	return nil
}

func (r *ledgerRepositoryImpl) FindPayout(ctx context.Context, specs ...specification.Specification) (*entity.PayoutRequest, error) {
	var m model.PayoutRequest
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PayoutToEntity(&m), nil
}
