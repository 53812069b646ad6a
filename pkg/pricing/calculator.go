package pricing

import (
	"strings"

	"course-marketplace-be/internal/entity"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// zeroDecimal lists ISO 4217 currencies the PSPs charge in whole units.
var zeroDecimal = map[string]bool{
	"IDR": true, "JPY": true, "KRW": true, "VND": true, "CLP": true, "ISK": true, "UGX": true,
}

// Places is the number of decimal places amounts in currency are stored and charged with.
func Places(currency string) int32 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// Breakdown is the immutable result of a price calculation.
// OriginalPrice = Discount + DiscountedPrice and DiscountedPrice = PlatformFee + InstructorAmount hold exactly.
type Breakdown struct {
	OriginalPrice    decimal.Decimal
	Discount         decimal.Decimal
	DiscountedPrice  decimal.Decimal
	PlatformFee      decimal.Decimal
	InstructorAmount decimal.Decimal
}

// Total is what the buyer is charged.
func (b Breakdown) Total() decimal.Decimal {
	return b.DiscountedPrice
}

type Calculator struct {
	feePercent decimal.Decimal
}

func NewCalculator(platformFeePercent decimal.Decimal) *Calculator {
	return &Calculator{feePercent: platformFeePercent}
}

func (c *Calculator) FeePercent() decimal.Decimal {
	return c.feePercent
}

// Calculate applies an optional coupon and splits the result between platform and instructor.
// Intermediate values keep full precision; amounts are rounded half-up once, to the places
// the currency is charged in.
func (c *Calculator) Calculate(originalPrice decimal.Decimal, coupon *entity.Coupon, currency string) Breakdown {
	places := Places(currency)

	if originalPrice.IsNegative() {
		originalPrice = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = discountFor(originalPrice, coupon)
	}

	discounted := originalPrice.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	fee := discounted.Mul(c.feePercent).Div(hundred)

	discountedRounded := discounted.Round(places)
	feeRounded := fee.Round(places)
	originalRounded := originalPrice.Round(places)

	return Breakdown{
		OriginalPrice:    originalRounded,
		Discount:         originalRounded.Sub(discountedRounded),
		DiscountedPrice:  discountedRounded,
		PlatformFee:      feeRounded,
		InstructorAmount: discountedRounded.Sub(feeRounded),
	}
}

func discountFor(price decimal.Decimal, coupon *entity.Coupon) decimal.Decimal {
	value := coupon.DiscountValue
	if value.IsNegative() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case entity.DiscountTypePercentage:
		discount = price.Mul(value).Div(hundred)
	case entity.DiscountTypeFlatRate:
		discount = value
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(price) {
		return price
	}
	return discount
}
