package common

import (
	"github.com/shopspring/decimal"
)

// maxDecimalPlaces bounds DecimalPlaces when an increment has no finite
// representation below it.
const maxDecimalPlaces = 18

// AmountToPrecision truncates an amount to the given number of decimal places.
func AmountToPrecision(amount decimal.Decimal, places int32) string {
	return amount.Truncate(places).String()
}

// PriceToPrecision rounds a price half away from zero.
func PriceToPrecision(price decimal.Decimal, places int32) string {
	return price.Round(places).String()
}

// CostToPrecision rounds a cost with the price precision of the market.
func CostToPrecision(cost decimal.Decimal, places int32) string {
	return cost.Round(places).String()
}

// CostToPrecisionDecimal is CostToPrecision without the string round trip.
func CostToPrecisionDecimal(cost decimal.Decimal, places int32) decimal.Decimal {
	return cost.Round(places)
}

// MinFromPrecision returns 10^-places, the smallest step representable with
// the given number of decimal places.
func MinFromPrecision(places int32) decimal.Decimal {
	return decimal.New(1, -places)
}

// DecimalPlaces returns the number of decimal places of an increment such as
// "0.00000001". It reports false for empty, unparseable or non-positive input.
func DecimalPlaces(increment string) (int32, bool) {
	if increment == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(increment)
	if err != nil || !d.IsPositive() {
		return 0, false
	}

	for p := int32(0); p <= maxDecimalPlaces; p++ {
		if d.Round(p).Equal(d) {
			return p, true
		}
	}

	return maxDecimalPlaces, true
}
