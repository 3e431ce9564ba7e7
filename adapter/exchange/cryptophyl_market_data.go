package exchange

import (
	"context"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/goccy/go-json"
	"github.com/nilswx/ccxt/common"
	"github.com/nilswx/ccxt/entity"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
)

func ascendingPrice(a, b interface{}) int {
	return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
}

func descendingPrice(a, b interface{}) int {
	return b.(decimal.Decimal).Cmp(a.(decimal.Decimal))
}

func (c *cryptophyl) FetchOrderBook(ctx context.Context, symbol string, limit int) (entity.OrderBook, error) {
	market, err := c.loadMarket(ctx, symbol)
	if err != nil {
		return entity.OrderBook{}, err
	}

	params := map[string]any{"id": market.ID}
	if limit > 0 {
		params["limit"] = limit
	}

	var resp entity.CryptophylResponse[entity.CryptophylBook]

	if err := c.dispatcher.call(ctx, publicGetProductsIdBook, params, &resp); err != nil {
		return entity.OrderBook{}, err
	}

	return entity.OrderBook{
		Symbol: market.Symbol,
		Bids:   parseBookSide(resp.Data.Bids, descendingPrice),
		Asks:   parseBookSide(resp.Data.Asks, ascendingPrice),
	}, nil
}

// parseBookSide merges levels quoted at the same price and returns them in
// comparator order.
func parseBookSide(levels []entity.CryptophylBookLevel, comparator func(a, b interface{}) int) []entity.PriceLevel {
	tree := redblacktree.NewWith(comparator)

	for _, level := range levels {
		if len(level) < 2 {
			continue
		}

		price, amount := level[0], level[1]

		if existing, found := tree.Get(price); found {
			amount = amount.Add(existing.(decimal.Decimal))
		}

		tree.Put(price, amount)
	}

	result := make([]entity.PriceLevel, 0, tree.Size())

	it := tree.Iterator()
	for it.Next() {
		result = append(result, entity.PriceLevel{
			Price:  it.Key().(decimal.Decimal),
			Amount: it.Value().(decimal.Decimal),
		})
	}

	return result
}

func (c *cryptophyl) FetchOHLCV(ctx context.Context, symbol, timeframe string, since null.Int64, limit int) ([]entity.Candle, error) {
	if timeframe == "" {
		timeframe = defaultTimeframe
	}

	granularity, ok := cryptophylTimeframes[timeframe]
	if !ok {
		return nil, newError(ErrNotSupported, c.id, "fetchOHLCV() does not support timeframe %s", timeframe)
	}

	market, err := c.loadMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"id":          market.ID,
		"granularity": granularity,
	}

	var raw json.RawMessage

	if err := c.dispatcher.call(ctx, publicGetProductsIdCandles, params, &raw); err != nil {
		return nil, err
	}

	var rows []entity.CryptophylCandle
	if err := json.Unmarshal(unwrapData(raw), &rows); err != nil {
		return nil, newError(ErrBadResponse, c.id, "fetchOHLCV() could not decode candles: %v", err)
	}

	candles := make([]entity.Candle, 0, len(rows))
	for _, row := range rows {
		candle, ok := parseOHLCV(row)
		if !ok {
			continue
		}
		candles = append(candles, candle)
	}

	return sortFilterBySinceLimit(candles, func(candle entity.Candle) null.Int64 {
		return null.Int64From(candle.Timestamp)
	}, since, limit), nil
}

// parseOHLCV reorders a provider row (time, close, high, low, open, volume)
// into a candle with a millisecond timestamp.
func parseOHLCV(row entity.CryptophylCandle) (entity.Candle, bool) {
	if len(row) < 6 {
		return entity.Candle{}, false
	}

	return entity.Candle{
		Timestamp: row[0].Mul(thousand).IntPart(),
		Open:      row[4],
		High:      row[2],
		Low:       row[3],
		Close:     row[1],
		Volume:    row[5],
	}, true
}

func (c *cryptophyl) FetchTrades(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Trade, error) {
	market, err := c.loadMarket(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var resp entity.CryptophylResponse[[]json.RawMessage]

	if err := c.dispatcher.call(ctx, publicGetProductsIdTrades, map[string]any{"id": market.ID}, &resp); err != nil {
		return nil, err
	}

	return c.parseTrades(resp.Data, &market, since, limit)
}

func (c *cryptophyl) parseTrades(items []json.RawMessage, market *entity.Market, since null.Int64, limit int) ([]entity.Trade, error) {
	trades := make([]entity.Trade, 0, len(items))

	for _, raw := range items {
		trade, err := c.parseTrade(raw, market)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return sortFilterBySinceLimit(trades, func(t entity.Trade) null.Int64 {
		return t.Timestamp
	}, since, limit), nil
}

// parseTrade handles both public trades and the account's own fills.
func (c *cryptophyl) parseTrade(raw json.RawMessage, market *entity.Market) (entity.Trade, error) {
	var t entity.CryptophylTrade
	if err := json.Unmarshal(raw, &t); err != nil {
		return entity.Trade{}, newError(ErrBadResponse, c.id, "could not decode trade: %v [raw: %s]", err, string(raw))
	}

	timestamp := safeTimestamp(t.CreateTime)
	if !timestamp.Valid {
		timestamp = safeInteger(t.DateMs)
	}

	market = c.marketById(t.Market, market)

	symbol := ""
	pricePrecision := int32(defaultPrecision)
	if market != nil {
		symbol = market.Symbol
		pricePrecision = market.Precision.Price
	}

	cost := t.DealMoney
	if !cost.Valid || cost.Decimal.IsZero() {
		cost = decimal.NullDecimal{}
		if t.Price.Valid && t.Amount.Valid {
			cost = validDecimal(common.CostToPrecisionDecimal(t.Price.Decimal.Mul(t.Amount.Decimal), pricePrecision))
		}
	}

	var fee *entity.Fee
	if t.Fee.Valid {
		fee = &entity.Fee{
			Currency: common.SafeCurrencyCode(t.FeeAsset),
			Cost:     t.Fee,
		}
	}

	side := t.Type
	if side == "" {
		side = t.Side
	}

	return entity.Trade{
		ID:           safeString(t.Id).String,
		Order:        safeString(t.OrderId),
		Timestamp:    timestamp,
		Datetime:     entity.Iso8601(timestamp),
		Symbol:       symbol,
		Side:         side,
		TakerOrMaker: null.NewString(t.Role, t.Role != ""),
		Price:        t.Price,
		Amount:       t.Amount,
		Cost:         cost,
		Fee:          fee,
		Info:         raw,
	}, nil
}

func (c *cryptophyl) FetchTicker(ctx context.Context, symbol string) (entity.Ticker, error) {
	market, err := c.loadMarket(ctx, symbol)
	if err != nil {
		return entity.Ticker{}, err
	}

	var resp entity.CryptophylResponse[entity.CryptophylTickerData]

	if err := c.dispatcher.call(ctx, publicGetProductsIdTicker, map[string]any{"id": market.ID}, &resp); err != nil {
		return entity.Ticker{}, err
	}

	var t entity.CryptophylTicker
	if len(resp.Data.Ticker) > 0 && string(resp.Data.Ticker) != "null" {
		if err := json.Unmarshal(resp.Data.Ticker, &t); err != nil {
			return entity.Ticker{}, newError(ErrBadResponse, c.id, "fetchTicker() could not decode ticker: %v", err)
		}
	}

	timestamp := safeInteger(resp.Data.Date)

	return entity.Ticker{
		Symbol:     market.Symbol,
		Timestamp:  timestamp,
		Datetime:   entity.Iso8601(timestamp),
		High:       t.High,
		Low:        t.Low,
		Bid:        t.Buy,
		Ask:        t.Sell,
		Close:      t.Last,
		Last:       t.Last,
		BaseVolume: firstValid(t.Vol, t.Volume),
		Info:       resp.Data.Ticker,
	}, nil
}
