package mapper

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"

	"gorm.io/datatypes"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToEntity(p *model.PaymentRecord) *entity.PaymentRecord {
	if p == nil {
		return nil
	}
	return &entity.PaymentRecord{
		Id:                p.Id,
		UserId:            p.UserId,
		CourseId:          p.CourseId,
		InstructorId:      p.InstructorId,
		CouponId:          p.CouponId,
		SubscriptionId:    p.SubscriptionId,
		ExternalPaymentId: p.ExternalPaymentId,
		ExternalOrderId:   p.ExternalOrderId,
		Amount:            p.Amount,
		OriginalAmount:    p.OriginalAmount,
		DiscountAmount:    p.DiscountAmount,
		Currency:          p.Currency,
		Status:            entity.PaymentStatus(p.Status),
		PaymentType:       entity.PaymentType(p.PaymentType),
		PaymentMethod:     entity.PaymentMethod(p.PaymentMethod),
		PlatformFeeAmount: p.PlatformFeeAmount,
		InstructorAmount:  p.InstructorAmount,
		GatewayProvider:   p.GatewayProvider,
		GatewayPayload:    []byte(p.GatewayPayload),
		StatusReason:      p.StatusReason,
		CompletedAt:       p.CompletedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *PaymentMapper) ToModel(p *entity.PaymentRecord) *model.PaymentRecord {
	if p == nil {
		return nil
	}
	var payload datatypes.JSON
	if len(p.GatewayPayload) > 0 {
		payload = datatypes.JSON(p.GatewayPayload)
	}
	return &model.PaymentRecord{
		Id:                p.Id,
		UserId:            p.UserId,
		CourseId:          p.CourseId,
		InstructorId:      p.InstructorId,
		CouponId:          p.CouponId,
		SubscriptionId:    p.SubscriptionId,
		ExternalPaymentId: p.ExternalPaymentId,
		ExternalOrderId:   p.ExternalOrderId,
		Amount:            p.Amount,
		OriginalAmount:    p.OriginalAmount,
		DiscountAmount:    p.DiscountAmount,
		Currency:          p.Currency,
		Status:            string(p.Status),
		PaymentType:       string(p.PaymentType),
		PaymentMethod:     string(p.PaymentMethod),
		PlatformFeeAmount: p.PlatformFeeAmount,
		InstructorAmount:  p.InstructorAmount,
		GatewayProvider:   p.GatewayProvider,
		GatewayPayload:    payload,
		StatusReason:      p.StatusReason,
		CompletedAt:       p.CompletedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (m *PaymentMapper) SubscriptionToEntity(s *model.SubscriptionRecord) *entity.SubscriptionRecord {
	if s == nil {
		return nil
	}
	return &entity.SubscriptionRecord{
		Id:                     s.Id,
		UserId:                 s.UserId,
		CourseId:               s.CourseId,
		PaymentId:              s.PaymentId,
		ExternalSubscriptionId: s.ExternalSubscriptionId,
		Status:                 entity.SubscriptionStatus(s.Status),
		Frequency:              s.Frequency,
		FrequencyType:          entity.FrequencyType(s.FrequencyType),
		Amount:                 s.Amount,
		Currency:               s.Currency,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}

func (m *PaymentMapper) SubscriptionToModel(s *entity.SubscriptionRecord) *model.SubscriptionRecord {
	if s == nil {
		return nil
	}
	return &model.SubscriptionRecord{
		Id:                     s.Id,
		UserId:                 s.UserId,
		CourseId:               s.CourseId,
		PaymentId:              s.PaymentId,
		ExternalSubscriptionId: s.ExternalSubscriptionId,
		Status:                 string(s.Status),
		Frequency:              s.Frequency,
		FrequencyType:          string(s.FrequencyType),
		Amount:                 s.Amount,
		Currency:               s.Currency,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}
