package common

import "strings"

// CommonCurrencies maps legacy or exchange specific tickers to the codes the
// rest of the library uses.
var CommonCurrencies = map[string]string{
	"XBT":    "BTC",
	"BCC":    "BCH",
	"BCHABC": "BCH",
	"BCHSV":  "BSV",
	"DRK":    "DASH",
}

// SafeCurrencyCode normalises an exchange currency id into a canonical code.
// Ids without a known alias fall back to their upper-cased form.
func SafeCurrencyCode(currencyId string) string {
	id := strings.ToUpper(strings.TrimSpace(currencyId))
	if id == "" {
		return ""
	}

	if code, ok := CommonCurrencies[id]; ok {
		return code
	}

	return id
}
