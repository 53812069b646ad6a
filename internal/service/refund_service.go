package service

import (
	"context"
	"time"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/pkg/refund"

	"github.com/google/uuid"
)

type IRefundService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateRefundRequest) (*dto.RefundResponse, error)
	Cancel(ctx context.Context, userId, refundId uuid.UUID) (*dto.RefundResponse, error)
	ListMine(ctx context.Context, userId uuid.UUID, page, size int) ([]*dto.RefundResponse, int64, error)

	List(ctx context.Context, status string, page, size int) ([]*dto.RefundResponse, int64, error)
	Approve(ctx context.Context, refundId uuid.UUID, req *dto.AdminRefundDecisionRequest) (*dto.RefundResponse, error)
	Reject(ctx context.Context, refundId uuid.UUID, req *dto.AdminRefundDecisionRequest) (*dto.RefundResponse, error)
	Settle(ctx context.Context, refundId uuid.UUID) (*dto.RefundResponse, error)
}

type refundService struct {
	workflow *refund.Workflow
	now      func() time.Time
}

func NewRefundService(workflow *refund.Workflow) IRefundService {
	return &refundService{workflow: workflow, now: time.Now}
}

func (s *refundService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateRefundRequest) (*dto.RefundResponse, error) {
	r, err := s.workflow.Create(ctx, userId, req.PaymentId, req.Reason, s.now())
	if err != nil {
		return nil, err
	}
	return toRefundResponse(r), nil
}

func (s *refundService) Cancel(ctx context.Context, userId, refundId uuid.UUID) (*dto.RefundResponse, error) {
	r, err := s.workflow.Cancel(ctx, userId, refundId)
	if err != nil {
		return nil, err
	}
	return toRefundResponse(r), nil
}

func (s *refundService) ListMine(ctx context.Context, userId uuid.UUID, page, size int) ([]*dto.RefundResponse, int64, error) {
	items, total, err := s.workflow.ListForUser(ctx, userId, page, size)
	if err != nil {
		return nil, 0, err
	}
	return toRefundResponses(items), total, nil
}

func (s *refundService) List(ctx context.Context, status string, page, size int) ([]*dto.RefundResponse, int64, error) {
	items, total, err := s.workflow.List(ctx, status, page, size)
	if err != nil {
		return nil, 0, err
	}
	return toRefundResponses(items), total, nil
}

func (s *refundService) Approve(ctx context.Context, refundId uuid.UUID, req *dto.AdminRefundDecisionRequest) (*dto.RefundResponse, error) {
	r, err := s.workflow.Approve(ctx, refundId, req.AdminNotes)
	if err != nil {
		return nil, err
	}
	return toRefundResponse(r), nil
}

func (s *refundService) Reject(ctx context.Context, refundId uuid.UUID, req *dto.AdminRefundDecisionRequest) (*dto.RefundResponse, error) {
	r, err := s.workflow.Reject(ctx, refundId, req.AdminNotes)
	if err != nil {
		return nil, err
	}
	return toRefundResponse(r), nil
}

func (s *refundService) Settle(ctx context.Context, refundId uuid.UUID) (*dto.RefundResponse, error) {
	r, err := s.workflow.ResumeSettlement(ctx, refundId)
	if err != nil {
		return nil, err
	}
	return toRefundResponse(r), nil
}

func toRefundResponses(items []*entity.RefundRequest) []*dto.RefundResponse {
	res := make([]*dto.RefundResponse, 0, len(items))
	for _, r := range items {
		res = append(res, toRefundResponse(r))
	}
	return res
}

func toRefundResponse(r *entity.RefundRequest) *dto.RefundResponse {
	return &dto.RefundResponse{
		Id:          r.Id,
		PaymentId:   r.PaymentId,
		UserId:      r.UserId,
		Amount:      r.Amount,
		Reason:      r.Reason,
		Status:      string(r.Status),
		AdminNotes:  r.Notes,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
	}
}
