package pricing

import (
	"testing"
	"time"

	"course-marketplace-be/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func coupon(kind entity.DiscountType, value string) *entity.Coupon {
	return &entity.Coupon{DiscountType: kind, DiscountValue: d(value), IsActive: true}
}

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator(decimal.NewFromInt(20))

	tests := []struct {
		name           string
		price          string
		coupon         *entity.Coupon
		wantDiscount   string
		wantDiscounted string
		wantFee        string
		wantInstructor string
	}{
		{"no coupon", "100.00", nil, "0", "100", "20", "80"},
		{"ten percent", "100.00", coupon(entity.DiscountTypePercentage, "10"), "10", "90", "18", "72"},
		{"flat fifteen", "100.00", coupon(entity.DiscountTypeFlatRate, "15"), "15", "85", "17", "68"},
		{"flat above price", "100.00", coupon(entity.DiscountTypeFlatRate, "150"), "100", "0", "0", "0"},
		{"hundred percent", "49.90", coupon(entity.DiscountTypePercentage, "100"), "49.9", "0", "0", "0"},
		{"over hundred percent clamps", "49.90", coupon(entity.DiscountTypePercentage, "130"), "49.9", "0", "0", "0"},
		{"half-up rounding", "33.33", coupon(entity.DiscountTypePercentage, "10"), "3.33", "30", "6", "24"},
		{"fee rounding", "10.05", nil, "0", "10.05", "2.01", "8.04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := calc.Calculate(d(tt.price), tt.coupon, "USD")

			assert.True(t, d(tt.wantDiscount).Equal(b.Discount), "discount %s", b.Discount)
			assert.True(t, d(tt.wantDiscounted).Equal(b.DiscountedPrice), "discounted %s", b.DiscountedPrice)
			assert.True(t, d(tt.wantFee).Equal(b.PlatformFee), "fee %s", b.PlatformFee)
			assert.True(t, d(tt.wantInstructor).Equal(b.InstructorAmount), "instructor %s", b.InstructorAmount)
		})
	}
}

func TestCalculator_SumInvariant(t *testing.T) {
	calc := NewCalculator(d("17.5"))
	prices := []string{"0.01", "0.99", "1.00", "12.34", "99.99", "149.95", "1000.00", "12345.67"}
	coupons := []*entity.Coupon{
		nil,
		coupon(entity.DiscountTypePercentage, "7"),
		coupon(entity.DiscountTypePercentage, "33.3"),
		coupon(entity.DiscountTypeFlatRate, "5.55"),
	}

	for _, currency := range []string{"USD", "IDR"} {
		for _, p := range prices {
			for _, c := range coupons {
				b := calc.Calculate(d(p), c, currency)
				assert.True(t, b.PlatformFee.Add(b.InstructorAmount).Equal(b.DiscountedPrice), "%s %s", currency, p)
				assert.True(t, b.Discount.Add(b.DiscountedPrice).Equal(b.OriginalPrice), "%s %s", currency, p)
				assert.False(t, b.DiscountedPrice.IsNegative())
				assert.False(t, b.InstructorAmount.IsNegative())
			}
		}
	}
}

func TestCalculator_ZeroDecimalCurrency(t *testing.T) {
	calc := NewCalculator(decimal.NewFromInt(20))

	tests := []struct {
		name           string
		price          string
		coupon         *entity.Coupon
		wantOriginal   string
		wantDiscounted string
		wantFee        string
		wantInstructor string
	}{
		{"fractional list price", "149900.50", nil, "149901", "149901", "29980", "119921"},
		{"percentage coupon", "149900", coupon(entity.DiscountTypePercentage, "15"), "149900", "127415", "25483", "101932"},
		{"odd fee", "99999", nil, "99999", "99999", "20000", "79999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := calc.Calculate(d(tt.price), tt.coupon, "idr")

			assert.True(t, d(tt.wantOriginal).Equal(b.OriginalPrice), "original %s", b.OriginalPrice)
			assert.True(t, d(tt.wantDiscounted).Equal(b.Total()), "total %s", b.Total())
			assert.True(t, d(tt.wantFee).Equal(b.PlatformFee), "fee %s", b.PlatformFee)
			assert.True(t, d(tt.wantInstructor).Equal(b.InstructorAmount), "instructor %s", b.InstructorAmount)
			// what the PSP charges is exactly what is stored
			assert.True(t, b.Total().Equal(b.Total().Round(0)))
			assert.True(t, b.PlatformFee.Add(b.InstructorAmount).Equal(b.Total()))
		})
	}
}

func TestPlaces(t *testing.T) {
	assert.EqualValues(t, 0, Places("IDR"))
	assert.EqualValues(t, 0, Places("jpy"))
	assert.EqualValues(t, 2, Places("USD"))
	assert.EqualValues(t, 2, Places("BRL"))
	assert.EqualValues(t, 2, Places(""))
}

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	valid := func() *entity.Coupon {
		return &entity.Coupon{IsActive: true, ValidFrom: past, ValidUntil: &future, MaxUses: 10, UsedCount: 3}
	}

	tests := []struct {
		name     string
		coupon   func() *entity.Coupon
		redeemed bool
		want     CouponReason
	}{
		{"valid", valid, false, CouponOK},
		{"missing", func() *entity.Coupon { return nil }, false, CouponNotFound},
		{"inactive", func() *entity.Coupon { c := valid(); c.IsActive = false; return c }, false, CouponInactive},
		{"not started", func() *entity.Coupon { c := valid(); c.ValidFrom = future; return c }, false, CouponNotStarted},
		{"expired", func() *entity.Coupon { c := valid(); c.ValidUntil = &past; return c }, false, CouponExpired},
		{"exhausted", func() *entity.Coupon { c := valid(); c.UsedCount = 10; return c }, false, CouponUsageExhausted},
		{"unlimited", func() *entity.Coupon { c := valid(); c.MaxUses = 0; c.UsedCount = 999; return c }, false, CouponOK},
		{"no expiry", func() *entity.Coupon { c := valid(); c.ValidUntil = nil; return c }, false, CouponOK},
		{"already redeemed", valid, true, CouponAlreadyRedeemed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := ValidateCoupon(tt.coupon(), tt.redeemed, now)
			assert.Equal(t, tt.want, check.Reason)
			assert.Equal(t, tt.want == CouponOK, check.Valid)
		})
	}
}
