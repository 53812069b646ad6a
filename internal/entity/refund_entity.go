package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundStatus represents the status of a refund request
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusApproved  RefundStatus = "APPROVED"
	RefundStatusRejected  RefundStatus = "REJECTED"
	RefundStatusProcessed RefundStatus = "PROCESSED"
	RefundStatusFailed    RefundStatus = "FAILED"
	RefundStatusCancelled RefundStatus = "CANCELLED"
)

// BlocksNewRequest reports whether a request in this state prevents another one for the same payment.
func (s RefundStatus) BlocksNewRequest() bool {
	switch s {
	case RefundStatusPending, RefundStatusApproved, RefundStatusProcessed:
		return true
	}
	return false
}

type RefundRequest struct {
	Id          uuid.UUID
	PaymentId   uuid.UUID
	UserId      uuid.UUID
	Amount      decimal.Decimal
	Reason      string
	Status      RefundStatus
	Notes       string
	RequestedAt time.Time
	ProcessedAt *time.Time
	UpdatedAt   time.Time
}
