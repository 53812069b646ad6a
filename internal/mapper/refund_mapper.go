package mapper

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"
)

type RefundMapper struct{}

func NewRefundMapper() *RefundMapper {
	return &RefundMapper{}
}

func (m *RefundMapper) ToEntity(r *model.RefundRequest) *entity.RefundRequest {
	if r == nil {
		return nil
	}
	return &entity.RefundRequest{
		Id:          r.Id,
		PaymentId:   r.PaymentId,
		UserId:      r.UserId,
		Amount:      r.Amount,
		Reason:      r.Reason,
		Status:      entity.RefundStatus(r.Status),
		Notes:       r.Notes,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m *RefundMapper) ToModel(r *entity.RefundRequest) *model.RefundRequest {
	if r == nil {
		return nil
	}
	return &model.RefundRequest{
		Id:          r.Id,
		PaymentId:   r.PaymentId,
		UserId:      r.UserId,
		Amount:      r.Amount,
		Reason:      r.Reason,
		Status:      string(r.Status),
		Notes:       r.Notes,
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
