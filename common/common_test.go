package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrecisionHelpers(t *testing.T) {
	assert.Equal(t, "1.2345", AmountToPrecision(d("1.23459"), 4))
	assert.Equal(t, "1.2346", PriceToPrecision(d("1.23459"), 4))
	assert.Equal(t, "20", CostToPrecision(d("10").Mul(d("2")), 8))
	assert.Equal(t, "0.33333333", CostToPrecision(d("1").Div(d("3")), 8))
	assert.True(t, CostToPrecisionDecimal(d("10").Mul(d("2")), 8).Equal(d("20.00000000")))
}

func TestMinFromPrecision(t *testing.T) {
	assert.True(t, MinFromPrecision(4).Equal(d("0.0001")))
	assert.True(t, MinFromPrecision(8).Equal(d("0.00000001")))
	assert.True(t, MinFromPrecision(0).Equal(d("1")))
}

func TestDecimalPlaces(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		ok     bool
	}{
		{"0.00000001", 8, true},
		{"0.0010", 3, true},
		{"1", 0, true},
		{"10", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"0", 0, false},
	}

	for _, c := range cases {
		places, ok := DecimalPlaces(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.places, places, c.in)
	}
}

func TestSafeCurrencyCode(t *testing.T) {
	assert.Equal(t, "BCH", SafeCurrencyCode("BCH"))
	assert.Equal(t, "BCH", SafeCurrencyCode("bch"))
	assert.Equal(t, "BTC", SafeCurrencyCode("XBT"))
	assert.Equal(t, "SPICE", SafeCurrencyCode(" spice "))
	assert.Equal(t, "", SafeCurrencyCode(""))
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, []string{"id"}, ExtractParams("products/{id}/book"))
	assert.Empty(t, ExtractParams("products"))

	params := map[string]any{"id": "SPICE-BCH", "limit": 5}
	assert.Equal(t, "products/SPICE-BCH/book", ImplodeParams("products/{id}/book", params))
	assert.Equal(t, "orders/{id}", ImplodeParams("orders/{id}", map[string]any{}))
}

func TestOmit(t *testing.T) {
	params := map[string]any{"id": "1", "page": 1}

	omitted := Omit(params, "id")
	assert.Equal(t, map[string]any{"page": 1}, omitted)
	assert.Contains(t, params, "id")
}

func TestUrlEncode_SortsKeys(t *testing.T) {
	q := UrlEncode(map[string]any{
		"page":   1,
		"limit":  100,
		"market": "SPICE-BCH",
		"amount": d("0.5"),
	})

	assert.Equal(t, "amount=0.5&limit=100&market=SPICE-BCH&page=1", q)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "0.1", Stringify(0.1))
	assert.Equal(t, "7", Stringify(int64(7)))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "1.5", Stringify(d("1.50")))
	assert.Equal(t, "", Stringify(nil))
}
