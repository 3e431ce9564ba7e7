package exchange

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/nilswx/ccxt/common"
	"github.com/nilswx/ccxt/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	cryptophylId      = "cryptophyl"
	cryptophylBaseUrl = "https://api.cryptophyl.com"

	defaultPrecision = 8
	defaultTimeframe = "5m"
	defaultPageLimit = 100
)

var (
	publicGetProducts          = entity.Endpoint{Api: entity.ApiPublic, Method: http.MethodGet, Path: "products"}
	publicGetProductsIdBook    = entity.Endpoint{Api: entity.ApiPublic, Method: http.MethodGet, Path: "products/{id}/book"}
	publicGetProductsIdCandles = entity.Endpoint{Api: entity.ApiPublic, Method: http.MethodGet, Path: "products/{id}/candles"}
	publicGetProductsIdTrades  = entity.Endpoint{Api: entity.ApiPublic, Method: http.MethodGet, Path: "products/{id}/trades"}
	publicGetProductsIdTicker  = entity.Endpoint{Api: entity.ApiPublic, Method: http.MethodGet, Path: "products/{id}/ticker"}
	publicGetProductsIdStats   = entity.Endpoint{Api: entity.ApiPublic, Method: http.MethodGet, Path: "products/{id}/stats"}

	privateGetUsersSelf    = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodGet, Path: "users/self"}
	privateGetOrders       = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodGet, Path: "orders"}
	privateGetOrdersId     = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodGet, Path: "orders/{id}"}
	privateGetFills        = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodGet, Path: "fills"}
	privatePostOrders      = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodPost, Path: "orders"}
	privatePostWithdrawals = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodPost, Path: "withdrawals"}
	privateDeleteOrdersId  = entity.Endpoint{Api: entity.ApiPrivate, Method: http.MethodDelete, Path: "orders/{id}"}
)

var cryptophylApi = []entity.Endpoint{
	publicGetProducts,
	publicGetProductsIdBook,
	publicGetProductsIdCandles,
	publicGetProductsIdTrades,
	publicGetProductsIdTicker,
	publicGetProductsIdStats,
	privateGetUsersSelf,
	privateGetOrders,
	privateGetOrdersId,
	privateGetFills,
	privatePostOrders,
	privatePostWithdrawals,
	privateDeleteOrdersId,
}

// Caller timeframe code to candle granularity in seconds.
var cryptophylTimeframes = map[string]string{
	"1m":  "60",
	"5m":  "300",
	"15m": "900",
	"1h":  "3600",
	"6h":  "21600",
	"1d":  "86400",
}

var (
	cryptophylMakerFee = decimal.RequireFromString("0.0015")
	cryptophylTakerFee = decimal.RequireFromString("0.0015")
)

// Exact body messages and the error kind they raise.
var cryptophylExceptions = map[string]error{
	"Invalid API key":    ErrAuthentication,
	"Unauthorized":       ErrAuthentication,
	"Insufficient funds": ErrInsufficientFunds,
	"Order not found":    ErrOrderNotFound,
	"Invalid order":      ErrInvalidOrder,
}

// cryptophyl is not safe for concurrent use; callers serialise access.
type cryptophyl struct {
	id       string
	identity string

	apiKey    string
	secretKey string
	baseUrl   string

	marketBuyRequiresPrice bool

	dispatcher *dispatcher
	logger     *logrus.Entry

	// Populated once by LoadMarkets and read-only afterwards.
	markets     map[string]entity.Market
	marketsById map[string]entity.Market
	currencyIds map[string]string

	// Orders placed through this instance, keyed by id. No eviction.
	orders map[string]entity.Order
}

func NewCryptophylAdapter(
	identity,
	apiKey,
	secretKey,
	baseUrl string,
	marketBuyRequiresPrice bool,
	timeout time.Duration,
	logger *logrus.Logger,
) *cryptophyl {
	if baseUrl == "" {
		baseUrl = cryptophylBaseUrl
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &cryptophyl{
		id:       cryptophylId,
		identity: identity,

		apiKey:    apiKey,
		secretKey: secretKey,
		baseUrl:   baseUrl,

		marketBuyRequiresPrice: marketBuyRequiresPrice,

		logger: logger.WithFields(logrus.Fields{"exchange": cryptophylId, "identity": identity}),

		orders: map[string]entity.Order{},
	}

	c.dispatcher = newDispatcher(c.id, c, timeout, c.logger)

	return c
}

func (c *cryptophyl) Describe() entity.ExchangeInfo {
	timeframes := make(map[string]string, len(cryptophylTimeframes))
	for k, v := range cryptophylTimeframes {
		timeframes[k] = v
	}

	api := make([]entity.Endpoint, len(cryptophylApi))
	copy(api, cryptophylApi)

	return entity.ExchangeInfo{
		ID:        c.id,
		Name:      "Cryptophyl",
		Version:   "v3",
		Countries: []string{"UK"},
		RateLimit: time.Second,
		Has: map[string]bool{
			"fetchMarkets":    true,
			"fetchOrderBook":  true,
			"fetchTicker":     true,
			"fetchTrades":     true,
			"fetchOHLCV":      true,
			"fetchBalance":    true,
			"createOrder":     true,
			"cancelOrder":     true,
			"fetchOrder":      true,
			"fetchOpenOrders": true,
			"fetchMyTrades":   true,
			"withdraw":        true,
		},
		Timeframes: timeframes,
		Urls: map[string]string{
			"api":  c.baseUrl,
			"www":  "https://cryptophyl.com",
			"doc":  "https://docs.cryptophyl.com",
			"fees": "https://cryptophyl.com/fees",
		},
		Api: api,
		Fees: entity.FeeSchedule{
			Percentage: true,
			Maker:      cryptophylMakerFee,
			Taker:      cryptophylTakerFee,
		},
		Precision: entity.MarketPrecision{
			Amount: defaultPrecision,
			Price:  defaultPrecision,
		},
	}
}

func (c *cryptophyl) FetchMarkets(ctx context.Context) ([]entity.Market, error) {
	var products []json.RawMessage

	if err := c.dispatcher.call(ctx, publicGetProducts, nil, &products); err != nil {
		return nil, err
	}

	markets := make([]entity.Market, 0, len(products))

	for _, raw := range products {
		var p entity.CryptophylProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, newError(ErrBadResponse, c.id, "fetchMarkets() could not decode product: %v [raw: %s]", err, string(raw))
		}

		markets = append(markets, c.parseMarket(p, raw))
	}

	return markets, nil
}

func (c *cryptophyl) parseMarket(p entity.CryptophylProduct, raw json.RawMessage) entity.Market {
	base := common.SafeCurrencyCode(p.PrimaryCurrency)
	quote := common.SafeCurrencyCode(p.SecondaryCurrency)

	precision := entity.MarketPrecision{
		Amount: precisionOf(p.TradingDecimal, p.QuantityIncrement),
		Price:  precisionOf(p.PricingDecimal, p.PriceIncrement),
	}

	maker := cryptophylMakerFee
	if p.MakerFeeRate.Valid {
		maker = p.MakerFeeRate.Decimal
	}
	taker := cryptophylTakerFee
	if p.TakerFeeRate.Valid {
		taker = p.TakerFeeRate.Decimal
	}

	return entity.Market{
		ID:        safeString(p.Id).String,
		Symbol:    base + "/" + quote,
		Base:      base,
		Quote:     quote,
		BaseID:    p.PrimaryCurrency,
		QuoteID:   p.SecondaryCurrency,
		Active:    true,
		Maker:     maker,
		Taker:     taker,
		Precision: precision,
		Limits: entity.MarketLimits{
			Amount: entity.MinMax{Min: p.MinAmount},
			Price:  entity.MinMax{Min: validDecimal(common.MinFromPrecision(precision.Price))},
		},
		Info: raw,
	}
}

// precisionOf prefers an explicit decimal count, then the increment's decimal
// places, then the exchange default.
func precisionOf(decimals json.RawMessage, increment decimal.NullDecimal) int32 {
	if v := safeInteger(decimals); v.Valid && v.Int64 >= 0 {
		return int32(v.Int64)
	}

	if increment.Valid {
		if places, ok := common.DecimalPlaces(increment.Decimal.String()); ok {
			return places
		}
	}

	return defaultPrecision
}

// LoadMarkets fetches the catalogue on first use and serves the cached copy
// afterwards unless reload is set.
func (c *cryptophyl) LoadMarkets(ctx context.Context, reload bool) (map[string]entity.Market, error) {
	if c.markets != nil && !reload {
		return c.markets, nil
	}

	markets, err := c.FetchMarkets(ctx)
	if err != nil {
		return nil, err
	}

	c.setMarkets(markets)

	c.logger.WithField("markets", len(markets)).Info("markets loaded")

	return c.markets, nil
}

func (c *cryptophyl) setMarkets(markets []entity.Market) {
	bySymbol := make(map[string]entity.Market, len(markets))
	byId := make(map[string]entity.Market, len(markets))
	currencyIds := map[string]string{}

	addCurrency := func(code, id string) {
		if code == "" {
			return
		}
		if _, ok := currencyIds[code]; !ok {
			currencyIds[code] = id
		}
	}

	for _, m := range markets {
		bySymbol[m.Symbol] = m
		byId[m.ID] = m
		addCurrency(m.Base, m.BaseID)
		addCurrency(m.Quote, m.QuoteID)
	}

	c.markets = bySymbol
	c.marketsById = byId
	c.currencyIds = currencyIds
}

// Market resolves a BASE/QUOTE symbol without touching the network.
func (c *cryptophyl) Market(symbol string) (entity.Market, error) {
	if c.markets == nil {
		return entity.Market{}, newError(ErrExchange, c.id, "markets not loaded")
	}

	m, ok := c.markets[symbol]
	if !ok {
		return entity.Market{}, newError(ErrBadSymbol, c.id, "does not have market symbol %s", symbol)
	}

	return m, nil
}

func (c *cryptophyl) loadMarket(ctx context.Context, symbol string) (entity.Market, error) {
	if _, err := c.LoadMarkets(ctx, false); err != nil {
		return entity.Market{}, err
	}
	return c.Market(symbol)
}

func (c *cryptophyl) marketById(id string, fallback *entity.Market) *entity.Market {
	if m, ok := c.marketsById[id]; ok {
		return &m
	}
	return fallback
}

func (c *cryptophyl) currencyId(code string) (string, error) {
	id, ok := c.currencyIds[code]
	if !ok {
		return "", newError(ErrBadCurrency, c.id, "does not have currency code %s", code)
	}
	return id, nil
}

func (c *cryptophyl) CachedOrder(id string) (entity.Order, bool) {
	o, ok := c.orders[id]
	return o, ok
}
