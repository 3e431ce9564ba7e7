package common

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

var pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)

// ExtractParams lists the placeholder names of a path template such as
// "products/{id}/book".
func ExtractParams(path string) []string {
	matches := pathParamRe.FindAllStringSubmatch(path, -1)

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}

	return names
}

// ImplodeParams substitutes placeholders of a path template with values from
// params. Placeholders without a value are left untouched.
func ImplodeParams(path string, params map[string]any) string {
	return pathParamRe.ReplaceAllStringFunc(path, func(m string) string {
		v, ok := params[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return Stringify(v)
	})
}

// Omit returns a copy of params without the given keys.
func Omit(params map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// UrlEncode encodes params as a query string with keys in ascending order.
func UrlEncode(params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, Stringify(v))
	}
	return values.Encode()
}

// Stringify renders a request parameter the way the exchange expects it on
// the wire.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
