package entity

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Raw Cryptophyl payloads. Ids and times arrive as either numbers or strings,
// so they are kept raw and read through the adapter's safe helpers.

type CryptophylResponse[T any] struct {
	Data T `json:"data"`
}

type CryptophylPage[T any] struct {
	Data  []T `json:"data"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type CryptophylProduct struct {
	Id                json.RawMessage     `json:"id"`
	PrimaryCurrency   string              `json:"primary_currency"`
	SecondaryCurrency string              `json:"secondary_currency"`
	MakerFeeRate      decimal.NullDecimal `json:"maker_fee_rate"`
	TakerFeeRate      decimal.NullDecimal `json:"taker_fee_rate"`
	PriceIncrement    decimal.NullDecimal `json:"price_increment"`
	QuantityIncrement decimal.NullDecimal `json:"quantity_increment"`
	TradingDecimal    json.RawMessage     `json:"trading_decimal"`
	PricingDecimal    json.RawMessage     `json:"pricing_decimal"`
	MinAmount         decimal.NullDecimal `json:"min_amount"`
}

// CryptophylBookLevel is [price, amount] with an optional trailing order count.
type CryptophylBookLevel []decimal.Decimal

type CryptophylBook struct {
	Bids []CryptophylBookLevel `json:"bids"`
	Asks []CryptophylBookLevel `json:"asks"`
}

// CryptophylCandle is (time, close, high, low, open, volume) with time in
// epoch seconds.
type CryptophylCandle []decimal.Decimal

type CryptophylTicker struct {
	High   decimal.NullDecimal `json:"high"`
	Low    decimal.NullDecimal `json:"low"`
	Buy    decimal.NullDecimal `json:"buy"`
	Sell   decimal.NullDecimal `json:"sell"`
	Last   decimal.NullDecimal `json:"last"`
	Vol    decimal.NullDecimal `json:"vol"`
	Volume decimal.NullDecimal `json:"volume"`
}

type CryptophylTickerData struct {
	Date   json.RawMessage `json:"date"`
	Ticker json.RawMessage `json:"ticker"`
}

type CryptophylTrade struct {
	Id         json.RawMessage     `json:"id"`
	OrderId    json.RawMessage     `json:"order_id"`
	CreateTime json.RawMessage     `json:"create_time"`
	DateMs     json.RawMessage     `json:"date_ms"`
	Price      decimal.NullDecimal `json:"price"`
	Amount     decimal.NullDecimal `json:"amount"`
	DealMoney  decimal.NullDecimal `json:"deal_money"`
	Fee        decimal.NullDecimal `json:"fee"`
	FeeAsset   string              `json:"fee_asset"`
	Market     string              `json:"market"`
	Role       string              `json:"role"`
	Type       string              `json:"type"`
	Side       string              `json:"side"`
}

// CryptophylOrder covers both order shapes: the detailed one returned by
// orders/{id} (amount, market, order_type, type as side) and the compact one
// returned by order placement and listing (quantity, product_id, side).
type CryptophylOrder struct {
	Id                json.RawMessage     `json:"id"`
	Time              json.RawMessage     `json:"time"`
	CreateTime        json.RawMessage     `json:"create_time"`
	Price             decimal.NullDecimal `json:"price"`
	Quantity          decimal.NullDecimal `json:"quantity"`
	Amount            decimal.NullDecimal `json:"amount"`
	RemainingQuantity decimal.NullDecimal `json:"remaining_quantity"`
	Left              decimal.NullDecimal `json:"left"`
	DealAmount        decimal.NullDecimal `json:"deal_amount"`
	DealMoney         decimal.NullDecimal `json:"deal_money"`
	DealFee           decimal.NullDecimal `json:"deal_fee"`
	AvgPrice          decimal.NullDecimal `json:"avg_price"`
	FeeAsset          string              `json:"fee_asset"`
	ProductId         string              `json:"product_id"`
	Market            string              `json:"market"`
	Status            string              `json:"status"`
	OrderType         string              `json:"order_type"`
	Type              string              `json:"type"`
	Side              string              `json:"side"`
}

// CryptophylBalanceEntry is the object form of a balance entry.
type CryptophylBalanceEntry struct {
	Available decimal.NullDecimal `json:"available"`
	Frozen    decimal.NullDecimal `json:"frozen"`
}

type CryptophylSelf struct {
	Id             json.RawMessage            `json:"id"`
	Name           string                     `json:"name"`
	Email          string                     `json:"email"`
	Balances       map[string]json.RawMessage `json:"balances"`
	LockedBalances map[string]json.RawMessage `json:"locked_balances"`
}

type CryptophylWithdrawal struct {
	Id            json.RawMessage     `json:"id"`
	Address       string              `json:"address"`
	Amount        decimal.NullDecimal `json:"amount"`
	Currency      string              `json:"currency"`
	Time          json.RawMessage     `json:"time"`
	TransactionId string              `json:"transaction_id"`
	Status        string              `json:"status"`
}
