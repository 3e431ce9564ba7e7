package exchange

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, null.StringFrom("abc"), safeString(json.RawMessage(`"abc"`)))
	assert.Equal(t, null.StringFrom("1788259447"), safeString(json.RawMessage(`1788259447`)))
	assert.False(t, safeString(json.RawMessage(`null`)).Valid)
	assert.False(t, safeString(nil).Valid)
}

func TestSafeInteger(t *testing.T) {
	assert.Equal(t, null.Int64From(8), safeInteger(json.RawMessage(`8`)))
	assert.Equal(t, null.Int64From(8), safeInteger(json.RawMessage(`"8"`)))
	assert.Equal(t, null.Int64From(1600000000000), safeInteger(json.RawMessage(`1600000000000`)))
	assert.False(t, safeInteger(json.RawMessage(`"eight"`)).Valid)
}

func TestSafeTimestamp(t *testing.T) {
	assert.Equal(t, null.Int64From(1537270135000), safeTimestamp(json.RawMessage(`1537270135`)))
	assert.Equal(t, null.Int64From(1537270135500), safeTimestamp(json.RawMessage(`"1537270135.5"`)))
	assert.Equal(t, null.Int64From(1527690567891), safeTimestamp(json.RawMessage(`"2018-05-30T14:29:27.891Z"`)))
	assert.False(t, safeTimestamp(json.RawMessage(`"yesterday"`)).Valid)
	assert.False(t, safeTimestamp(nil).Valid)
}

func TestUnwrapData(t *testing.T) {
	assert.JSONEq(t, `[1,2]`, string(unwrapData(json.RawMessage(`{"data":[1,2]}`))))
	assert.JSONEq(t, `[1,2]`, string(unwrapData(json.RawMessage(`[1,2]`))))
	assert.JSONEq(t, `{"balances":{}}`, string(unwrapData(json.RawMessage(`{"balances":{}}`))))
	assert.JSONEq(t, `{"data":null}`, string(unwrapData(json.RawMessage(`{"data":null}`))))
}

func TestSortFilterBySinceLimit(t *testing.T) {
	ts := func(v int64) null.Int64 { return null.Int64From(v) }
	items := []int64{30, 10, 20, 40}

	out := sortFilterBySinceLimit(append([]int64{}, items...), ts, null.Int64{}, 0)
	assert.Equal(t, []int64{10, 20, 30, 40}, out)

	out = sortFilterBySinceLimit(append([]int64{}, items...), ts, null.Int64From(20), 0)
	assert.Equal(t, []int64{20, 30, 40}, out)

	out = sortFilterBySinceLimit(append([]int64{}, items...), ts, null.Int64From(20), 2)
	assert.Equal(t, []int64{20, 30}, out)
}
