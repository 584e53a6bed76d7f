package pricing

import (
	"github.com/shopspring/decimal"
)

// All amounts are whole currency units. Rounding is half away from zero
// throughout so 15.5 becomes 16 and -15.5 becomes -16.

// DiscountPercent returns the percentage saved when current is below original,
// capped to [0, 100]. A non-positive original yields 0.
func DiscountPercent(original, current int) int {
	if original <= 0 || current >= original {
		return 0
	}
	if current <= 0 {
		return 100
	}
	diff := decimal.NewFromInt(int64(original - current))
	pct := diff.Div(decimal.NewFromInt(int64(original))).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// PercentOff returns percent% of amount, rounded.
func PercentOff(amount, percent int) int {
	if amount == 0 || percent == 0 {
		return 0
	}
	cut := decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100))
	return int(cut.Round(0).IntPart())
}

// DiscountedPrice returns amount with percent% removed, rounded.
func DiscountedPrice(amount, percent int) int {
	if percent <= 0 {
		return amount
	}
	price := decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromInt(100).Sub(decimal.NewFromInt(int64(percent)))).
		Div(decimal.NewFromInt(100))
	return int(price.Round(0).IntPart())
}

// Installment returns a single installment of amount split n ways, rounded.
// n <= 0 returns the full amount.
func Installment(amount, n int) int {
	if n <= 0 {
		return amount
	}
	part := decimal.NewFromInt(int64(amount)).Div(decimal.NewFromInt(int64(n)))
	return int(part.Round(0).IntPart())
}
