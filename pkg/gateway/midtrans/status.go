package midtrans

import (
	"course-marketplace-be/pkg/gateway"

	"github.com/midtrans/midtrans-go/coreapi"
)

// MapTransactionStatus is total: anything unrecognized stays PENDING so a later
// notification or poll can still settle the payment.
func MapTransactionStatus(transactionStatus, fraudStatus string) gateway.StandardStatus {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return gateway.StatusPending
		}
		return gateway.StatusApproved
	case "settlement":
		return gateway.StatusApproved
	case "pending", "authorize":
		return gateway.StatusPending
	case "deny", "failure":
		return gateway.StatusRejected
	case "cancel", "expire":
		return gateway.StatusCancelled
	case "refund", "partial_refund", "chargeback", "partial_chargeback":
		return gateway.StatusRefunded
	default:
		return gateway.StatusPending
	}
}

// MapSubscriptionStatus maps the schedule state of a subscription with no charge yet.
// An active schedule has not taken money, so it stays PENDING.
func MapSubscriptionStatus(status string) gateway.StandardStatus {
	switch status {
	case "disabled":
		return gateway.StatusCancelled
	default:
		return gateway.StatusPending
	}
}

// resolveSubscription settles a subscription on its first charge. Without one the
// schedule state decides, which never yields APPROVED.
func resolveSubscription(resp *coreapi.StatusSubscriptionResponse, checkCharge func(transactionId string) (gateway.StandardStatus, error)) (*gateway.SubscriptionStatus, error) {
	if len(resp.TransactionId) == 0 {
		return &gateway.SubscriptionStatus{Status: MapSubscriptionStatus(resp.Status)}, nil
	}
	chargeId := resp.TransactionId[0]
	status, err := checkCharge(chargeId)
	if err != nil {
		return nil, err
	}
	return &gateway.SubscriptionStatus{Status: status, ChargeId: chargeId}, nil
}
