package entity

import "errors"

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrRefundNotFound       = errors.New("refund request not found")
	ErrCardNotFound         = errors.New("saved card not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrPayoutProfileMissing = errors.New("payout profile not found")

	// ErrReconciliationConflict means another writer already moved the record out of PENDING.
	ErrReconciliationConflict = errors.New("payment already reconciled by another writer")
)
