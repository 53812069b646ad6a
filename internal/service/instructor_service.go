package service

import (
	"context"
	"time"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/pkg/ledger"

	"github.com/google/uuid"
)

type IInstructorService interface {
	GetBalance(ctx context.Context, instructorId uuid.UUID) (*dto.BalanceResponse, error)
	ListTransactions(ctx context.Context, instructorId uuid.UUID, page, size int) ([]*dto.BalanceTransactionResponse, error)
	UpsertPayoutProfile(ctx context.Context, instructorId uuid.UUID, req *dto.PayoutProfileRequest) (*dto.PayoutProfileResponse, error)
	RequestPayout(ctx context.Context, instructorId uuid.UUID, req *dto.PayoutRequest) (*dto.PayoutResponse, error)

	VerifyPayoutProfile(ctx context.Context, instructorId uuid.UUID) (*dto.PayoutProfileResponse, error)
}

type instructorService struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

func NewInstructorService(l *ledger.Ledger) IInstructorService {
	return &instructorService{ledger: l, now: time.Now}
}

func (s *instructorService) GetBalance(ctx context.Context, instructorId uuid.UUID) (*dto.BalanceResponse, error) {
	b, err := s.ledger.GetBalance(ctx, instructorId)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		InstructorId:     instructorId,
		AvailableBalance: b.AvailableBalance,
		PendingBalance:   b.PendingBalance,
		TotalEarnings:    b.TotalEarnings,
		TotalWithdrawn:   b.TotalWithdrawn,
	}, nil
}

func (s *instructorService) ListTransactions(ctx context.Context, instructorId uuid.UUID, page, size int) ([]*dto.BalanceTransactionResponse, error) {
	txs, err := s.ledger.ListTransactions(ctx, instructorId, page, size)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.BalanceTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		res = append(res, &dto.BalanceTransactionResponse{
			Id:          tx.Id,
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			PaymentId:   tx.PaymentId,
			PayoutId:    tx.PayoutId,
			Description: tx.Description,
			MaturedAt:   tx.MaturedAt,
			CreatedAt:   tx.CreatedAt,
		})
	}
	return res, nil
}

func (s *instructorService) UpsertPayoutProfile(ctx context.Context, instructorId uuid.UUID, req *dto.PayoutProfileRequest) (*dto.PayoutProfileResponse, error) {
	p, err := s.ledger.UpsertPayoutProfile(ctx, instructorId, ledger.ProfileInput{
		HolderName:  req.HolderName,
		PixKey:      req.PixKey,
		BankAccount: req.BankAccount,
	})
	if err != nil {
		return nil, err
	}
	return toPayoutProfileResponse(p), nil
}

func (s *instructorService) RequestPayout(ctx context.Context, instructorId uuid.UUID, req *dto.PayoutRequest) (*dto.PayoutResponse, error) {
	p, err := s.ledger.RequestPayout(ctx, instructorId, req.Amount, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.PayoutResponse{
		Id:          p.Id,
		Amount:      p.Amount,
		Status:      string(p.Status),
		PeriodKey:   p.PeriodKey,
		RequestedAt: p.RequestedAt,
	}, nil
}

func (s *instructorService) VerifyPayoutProfile(ctx context.Context, instructorId uuid.UUID) (*dto.PayoutProfileResponse, error) {
	p, err := s.ledger.VerifyPayoutProfile(ctx, instructorId)
	if err != nil {
		return nil, err
	}
	return toPayoutProfileResponse(p), nil
}

func toPayoutProfileResponse(p *entity.PayoutProfile) *dto.PayoutProfileResponse {
	return &dto.PayoutProfileResponse{
		InstructorId: p.InstructorId,
		HolderName:   p.HolderName,
		PixKey:       p.PixKey,
		BankAccount:  p.BankAccount,
		Verified:     p.Verified,
		VerifiedAt:   p.VerifiedAt,
	}
}
