package pricing

import (
	"time"

	"course-marketplace-be/internal/entity"
)

type CouponReason string

const (
	CouponOK              CouponReason = ""
	CouponNotFound        CouponReason = "not_found"
	CouponInactive        CouponReason = "inactive"
	CouponNotStarted      CouponReason = "not_started"
	CouponExpired         CouponReason = "expired"
	CouponUsageExhausted  CouponReason = "usage_limit_reached"
	CouponAlreadyRedeemed CouponReason = "already_redeemed"
)

// CouponCheck is an explicit validation result; an invalid coupon is not an error.
type CouponCheck struct {
	Valid  bool
	Reason CouponReason
}

func (c CouponCheck) Message() string {
	switch c.Reason {
	case CouponNotFound:
		return "coupon code does not exist"
	case CouponInactive:
		return "coupon is no longer active"
	case CouponNotStarted:
		return "coupon is not valid yet"
	case CouponExpired:
		return "coupon has expired"
	case CouponUsageExhausted:
		return "coupon usage limit reached"
	case CouponAlreadyRedeemed:
		return "coupon already used by this account"
	}
	return ""
}

func ValidateCoupon(coupon *entity.Coupon, alreadyRedeemed bool, now time.Time) CouponCheck {
	switch {
	case coupon == nil:
		return CouponCheck{Reason: CouponNotFound}
	case !coupon.IsActive:
		return CouponCheck{Reason: CouponInactive}
	case now.Before(coupon.ValidFrom):
		return CouponCheck{Reason: CouponNotStarted}
	case coupon.ValidUntil != nil && now.After(*coupon.ValidUntil):
		return CouponCheck{Reason: CouponExpired}
	case coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses:
		return CouponCheck{Reason: CouponUsageExhausted}
	case alreadyRedeemed:
		return CouponCheck{Reason: CouponAlreadyRedeemed}
	}
	return CouponCheck{Valid: true}
}
