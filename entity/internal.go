package entity

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
	OrderTypeIoc    = "ioc"

	OrderStatusOpen     = "open"
	OrderStatusClosed   = "closed"
	OrderStatusCanceled = "canceled"

	TransactionTypeWithdrawal = "withdrawal"
)

type MinMax struct {
	Min decimal.NullDecimal `json:"min"`
	Max decimal.NullDecimal `json:"max"`
}

type MarketPrecision struct {
	Amount int32 `json:"amount"`
	Price  int32 `json:"price"`
}

type MarketLimits struct {
	Amount MinMax `json:"amount"`
	Price  MinMax `json:"price"`
}

type Market struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	BaseID    string          `json:"base_id"`
	QuoteID   string          `json:"quote_id"`
	Active    bool            `json:"active"`
	Maker     decimal.Decimal `json:"maker"`
	Taker     decimal.Decimal `json:"taker"`
	Precision MarketPrecision `json:"precision"`
	Limits    MarketLimits    `json:"limits"`

	Info json.RawMessage `json:"info,omitempty"`
}

type PriceLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// OrderBook holds bids sorted by price descending and asks ascending.
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp null.Int64   `json:"timestamp"`
	Datetime  null.String  `json:"datetime"`
}

// Candle is an OHLCV row. Timestamp is in epoch milliseconds.
type Candle struct {
	Timestamp int64           `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// MarshalJSON encodes the candle as [timestamp, open, high, low, close, volume].
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume})
}

type Fee struct {
	Currency string              `json:"currency"`
	Cost     decimal.NullDecimal `json:"cost"`
}

type Trade struct {
	ID           string              `json:"id"`
	Order        null.String         `json:"order"`
	Timestamp    null.Int64          `json:"timestamp"`
	Datetime     null.String         `json:"datetime"`
	Symbol       string              `json:"symbol"`
	Type         null.String         `json:"type"`
	Side         string              `json:"side"`
	TakerOrMaker null.String         `json:"taker_or_maker"`
	Price        decimal.NullDecimal `json:"price"`
	Amount       decimal.NullDecimal `json:"amount"`
	Cost         decimal.NullDecimal `json:"cost"`
	Fee          *Fee                `json:"fee"`

	Info json.RawMessage `json:"info,omitempty"`
}

// Ticker fields the exchange does not report stay invalid rather than zero.
type Ticker struct {
	Symbol        string              `json:"symbol"`
	Timestamp     null.Int64          `json:"timestamp"`
	Datetime      null.String         `json:"datetime"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	Bid           decimal.NullDecimal `json:"bid"`
	BidVolume     decimal.NullDecimal `json:"bid_volume"`
	Ask           decimal.NullDecimal `json:"ask"`
	AskVolume     decimal.NullDecimal `json:"ask_volume"`
	Vwap          decimal.NullDecimal `json:"vwap"`
	Open          decimal.NullDecimal `json:"open"`
	Close         decimal.NullDecimal `json:"close"`
	Last          decimal.NullDecimal `json:"last"`
	PreviousClose decimal.NullDecimal `json:"previous_close"`
	Change        decimal.NullDecimal `json:"change"`
	Percentage    decimal.NullDecimal `json:"percentage"`
	Average       decimal.NullDecimal `json:"average"`
	BaseVolume    decimal.NullDecimal `json:"base_volume"`
	QuoteVolume   decimal.NullDecimal `json:"quote_volume"`

	Info json.RawMessage `json:"info,omitempty"`
}

type Balance struct {
	Free  decimal.NullDecimal `json:"free"`
	Used  decimal.NullDecimal `json:"used"`
	Total decimal.NullDecimal `json:"total"`
}

// Balances is keyed by canonical currency code.
type Balances struct {
	Currencies map[string]Balance `json:"currencies"`

	Info json.RawMessage `json:"info,omitempty"`
}

type Order struct {
	ID                 string              `json:"id"`
	Timestamp          null.Int64          `json:"timestamp"`
	Datetime           null.String         `json:"datetime"`
	LastTradeTimestamp null.Int64          `json:"last_trade_timestamp"`
	Status             string              `json:"status"`
	Symbol             string              `json:"symbol"`
	Type               string              `json:"type"`
	Side               string              `json:"side"`
	Price              decimal.NullDecimal `json:"price"`
	Cost               decimal.NullDecimal `json:"cost"`
	Average            decimal.NullDecimal `json:"average"`
	Amount             decimal.NullDecimal `json:"amount"`
	Filled             decimal.NullDecimal `json:"filled"`
	Remaining          decimal.NullDecimal `json:"remaining"`
	Fee                Fee                 `json:"fee"`

	Info json.RawMessage `json:"info,omitempty"`
}

type Transaction struct {
	ID        string              `json:"id"`
	TxID      null.String         `json:"txid"`
	Timestamp null.Int64          `json:"timestamp"`
	Datetime  null.String         `json:"datetime"`
	Address   string              `json:"address"`
	Tag       null.String         `json:"tag"`
	Type      string              `json:"type"`
	Amount    decimal.NullDecimal `json:"amount"`
	Currency  string              `json:"currency"`
	Status    null.String         `json:"status"`

	Info json.RawMessage `json:"info,omitempty"`
}

// Iso8601 renders an epoch-millisecond timestamp in UTC, or null when absent.
func Iso8601(ms null.Int64) null.String {
	if !ms.Valid {
		return null.String{}
	}
	return null.StringFrom(time.UnixMilli(ms.Int64).UTC().Format("2006-01-02T15:04:05.000Z"))
}
