package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateRefundRequest struct {
	PaymentId uuid.UUID `json:"payment_id" validate:"required"`
	Reason    string    `json:"reason" validate:"required,min=10"`
}

type RefundResponse struct {
	Id          uuid.UUID       `json:"id"`
	PaymentId   uuid.UUID       `json:"payment_id"`
	UserId      uuid.UUID       `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	AdminNotes  string          `json:"admin_notes,omitempty"`
	RequestedAt time.Time       `json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

type AdminRefundDecisionRequest struct {
	AdminNotes string `json:"admin_notes,omitempty"`
}
