package mapper

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"
)

type LedgerMapper struct{}

func NewLedgerMapper() *LedgerMapper {
	return &LedgerMapper{}
}

func (m *LedgerMapper) BalanceToEntity(b *model.InstructorBalance) *entity.InstructorBalance {
	if b == nil {
		return nil
	}
	return &entity.InstructorBalance{
		InstructorId:     b.InstructorId,
		AvailableBalance: b.AvailableBalance,
		PendingBalance:   b.PendingBalance,
		TotalEarnings:    b.TotalEarnings,
		TotalWithdrawn:   b.TotalWithdrawn,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (m *LedgerMapper) TransactionToEntity(t *model.BalanceTransaction) *entity.BalanceTransaction {
	if t == nil {
		return nil
	}
	return &entity.BalanceTransaction{
		Id:           t.Id,
		InstructorId: t.InstructorId,
		Type:         entity.TransactionType(t.Type),
		Amount:       t.Amount,
		PaymentId:    t.PaymentId,
		PayoutId:     t.PayoutId,
		Description:  t.Description,
		MaturedAt:    t.MaturedAt,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *LedgerMapper) TransactionToModel(t *entity.BalanceTransaction) *model.BalanceTransaction {
	if t == nil {
		return nil
	}
	return &model.BalanceTransaction{
		Id:           t.Id,
		InstructorId: t.InstructorId,
		Type:         string(t.Type),
		Amount:       t.Amount,
		PaymentId:    t.PaymentId,
		PayoutId:     t.PayoutId,
		Description:  t.Description,
		MaturedAt:    t.MaturedAt,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *LedgerMapper) ProfileToEntity(p *model.PayoutProfile) *entity.PayoutProfile {
	if p == nil {
		return nil
	}
	return &entity.PayoutProfile{
		InstructorId: p.InstructorId,
		HolderName:   p.HolderName,
		PixKey:       p.PixKey,
		BankAccount:  p.BankAccount,
		Verified:     p.Verified,
		VerifiedAt:   p.VerifiedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (m *LedgerMapper) PayoutToEntity(p *model.PayoutRequest) *entity.PayoutRequest {
	if p == nil {
		return nil
	}
	return &entity.PayoutRequest{
		Id:           p.Id,
		InstructorId: p.InstructorId,
		Amount:       p.Amount,
		Status:       entity.PayoutStatus(p.Status),
		PeriodKey:    p.PeriodKey,
		RequestedAt:  p.RequestedAt,
	}
}
