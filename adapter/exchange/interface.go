package exchange

import (
	"context"

	"github.com/nilswx/ccxt/entity"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

// Request is a fully signed outbound request.
type Request struct {
	Method  string
	Url     string
	Headers map[string]string
	Body    string
}

// Signer is the part of an adapter the dispatcher needs: building requests
// and classifying exchange-level errors in response bodies.
type Signer interface {
	Sign(path, api, method string, params map[string]any) (Request, error)
	HandleErrors(statusCode int, body []byte) error
}

type ProviderAdapter interface {
	Signer

	Describe() entity.ExchangeInfo

	LoadMarkets(ctx context.Context, reload bool) (map[string]entity.Market, error)
	FetchMarkets(ctx context.Context) ([]entity.Market, error)
	Market(symbol string) (entity.Market, error)

	FetchOrderBook(ctx context.Context, symbol string, limit int) (entity.OrderBook, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, since null.Int64, limit int) ([]entity.Candle, error)
	FetchTrades(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Trade, error)
	FetchTicker(ctx context.Context, symbol string) (entity.Ticker, error)

	FetchBalance(ctx context.Context) (entity.Balances, error)
	CreateOrder(ctx context.Context, symbol, orderType, side string, amount decimal.Decimal, price decimal.NullDecimal) (entity.Order, error)
	CancelOrder(ctx context.Context, id string) (map[string]any, error)
	FetchOrder(ctx context.Context, id string) (entity.Order, error)
	FetchOpenOrders(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Order, error)
	FetchMyTrades(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Trade, error)
	Withdraw(ctx context.Context, code string, amount decimal.Decimal, address string, tag null.String) (entity.Transaction, error)

	// CachedOrder looks up an order placed through this adapter instance.
	CachedOrder(id string) (entity.Order, bool)
}
