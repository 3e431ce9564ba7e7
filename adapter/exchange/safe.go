package exchange

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

var thousand = decimal.NewFromInt(1000)

// safeString reads a raw JSON string or number as text.
func safeString(raw json.RawMessage) null.String {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return null.String{}
	}

	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return null.String{}
		}
		return null.StringFrom(v)
	}

	return null.StringFrom(s)
}

// safeInteger reads a raw JSON number or numeric string, dropping fractions.
func safeInteger(raw json.RawMessage) null.Int64 {
	s := safeString(raw)
	if !s.Valid {
		return null.Int64{}
	}

	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return null.Int64{}
	}

	return null.Int64From(d.IntPart())
}

// safeTimestamp reads epoch seconds (number or numeric string) or an RFC 3339
// string and returns epoch milliseconds.
func safeTimestamp(raw json.RawMessage) null.Int64 {
	s := safeString(raw)
	if !s.Valid || s.String == "" {
		return null.Int64{}
	}

	if d, err := decimal.NewFromString(s.String); err == nil {
		return null.Int64From(d.Mul(thousand).IntPart())
	}

	if t, err := time.Parse(time.RFC3339Nano, s.String); err == nil {
		return null.Int64From(t.UnixMilli())
	}

	return null.Int64{}
}

// unwrapData returns the "data" member of an object envelope, or raw itself
// when there is none.
func unwrapData(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return raw
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || string(data) == "null" {
		return raw
	}

	return envelope.Data
}

func firstValid(values ...decimal.NullDecimal) decimal.NullDecimal {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return decimal.NullDecimal{}
}

func validDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// sortFilterBySinceLimit orders items by timestamp, keeps those at or after
// since and truncates to limit. A zero limit means no limit.
func sortFilterBySinceLimit[T any](items []T, timestamp func(T) null.Int64, since null.Int64, limit int) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return timestamp(items[i]).Int64 < timestamp(items[j]).Int64
	})

	if since.Valid {
		filtered := items[:0]
		for _, it := range items {
			ts := timestamp(it)
			if ts.Valid && ts.Int64 >= since.Int64 {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items
}
