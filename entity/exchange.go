package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ApiPublic  = "public"
	ApiPrivate = "private"
)

// Endpoint is one entry of an exchange's REST catalogue.
type Endpoint struct {
	Api    string `json:"api"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

type FeeSchedule struct {
	Percentage bool            `json:"percentage"`
	Maker      decimal.Decimal `json:"maker"`
	Taker      decimal.Decimal `json:"taker"`
}

type ExchangeInfo struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Countries  []string          `json:"countries"`
	RateLimit  time.Duration     `json:"rate_limit"`
	Has        map[string]bool   `json:"has"`
	Timeframes map[string]string `json:"timeframes"`
	Urls       map[string]string `json:"urls"`
	Api        []Endpoint        `json:"api"`
	Fees       FeeSchedule       `json:"fees"`
	Precision  MarketPrecision   `json:"precision"`
}
