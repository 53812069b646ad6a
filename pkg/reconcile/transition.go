package reconcile

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/pkg/gateway"
)

// Transition is the payment state machine. It is pure and total: any pair it does not
// recognize yields (current, false), never an error.
//
// PENDING -> COMPLETED | FAILED | CANCELLED on APPROVED | REJECTED | CANCELLED.
// COMPLETED -> REFUNDED on REFUNDED, which only the refund workflow applies.
func Transition(current entity.PaymentStatus, reported gateway.StandardStatus) (entity.PaymentStatus, bool) {
	switch current {
	case entity.PaymentStatusPending:
		switch reported {
		case gateway.StatusApproved:
			return entity.PaymentStatusCompleted, true
		case gateway.StatusRejected:
			return entity.PaymentStatusFailed, true
		case gateway.StatusCancelled:
			return entity.PaymentStatusCancelled, true
		}
	case entity.PaymentStatusCompleted:
		if reported == gateway.StatusRefunded {
			return entity.PaymentStatusRefunded, true
		}
	}
	return current, false
}
