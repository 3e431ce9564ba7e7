package exchange

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gookit/validate"
	"github.com/nilswx/ccxt/common"
	"github.com/nilswx/ccxt/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/volatiletech/null"
)

// Provider order states. Anything else is passed through as is.
var cryptophylOrderStatuses = map[string]string{
	"pending":   entity.OrderStatusOpen,
	"open":      entity.OrderStatusOpen,
	"partial":   entity.OrderStatusOpen,
	"done":      entity.OrderStatusClosed,
	"filled":    entity.OrderStatusClosed,
	"cancel":    entity.OrderStatusCanceled,
	"canceled":  entity.OrderStatusCanceled,
	"cancelled": entity.OrderStatusCanceled,
}

// Order listings by provider status.
var cryptophylOrdersByStatus = map[string]entity.Endpoint{
	"pending": privateGetOrders,
}

type cryptophylOrderRequest struct {
	Market string `json:"market" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Side   string `json:"side" validate:"required|in:buy,sell"`
}

func (r cryptophylOrderRequest) Messages() map[string]string {
	return validate.MS{
		"required": "createOrder() requires {field}",
		"in":       "createOrder() {field} must be one of buy, sell",
	}
}

func (c *cryptophyl) FetchBalance(ctx context.Context) (entity.Balances, error) {
	if _, err := c.LoadMarkets(ctx, false); err != nil {
		return entity.Balances{}, err
	}

	var raw json.RawMessage

	if err := c.dispatcher.call(ctx, privateGetUsersSelf, nil, &raw); err != nil {
		return entity.Balances{}, err
	}

	var self entity.CryptophylSelf
	if err := json.Unmarshal(unwrapData(raw), &self); err != nil {
		return entity.Balances{}, newError(ErrBadResponse, c.id, "fetchBalance() could not decode account: %v", err)
	}

	result := entity.Balances{
		Currencies: map[string]entity.Balance{},
		Info:       raw,
	}

	currencyIds := map[string]struct{}{}
	for id := range self.Balances {
		currencyIds[id] = struct{}{}
	}
	for id := range self.LockedBalances {
		currencyIds[id] = struct{}{}
	}

	for id := range currencyIds {
		free, used := parseBalanceEntry(self.Balances[id])

		if locked, ok := self.LockedBalances[id]; ok {
			if amount, _ := parseBalanceEntry(locked); amount.Valid {
				used = amount
			}
		}

		// ids that normalise to the same code are summed
		code := common.SafeCurrencyCode(id)
		prev := result.Currencies[code]
		free = sumValid(prev.Free, free)
		used = sumValid(prev.Used, used)

		result.Currencies[code] = entity.Balance{
			Free:  free,
			Used:  used,
			Total: sumValid(free, used),
		}
	}

	return result, nil
}

// parseBalanceEntry accepts a plain amount or an {available, frozen} object.
func parseBalanceEntry(raw json.RawMessage) (decimal.NullDecimal, decimal.NullDecimal) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}

	if trimmed[0] == '{' {
		var entry entity.CryptophylBalanceEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return decimal.NullDecimal{}, decimal.NullDecimal{}
		}
		return entry.Available, entry.Frozen
	}

	var amount decimal.NullDecimal
	if err := json.Unmarshal(raw, &amount); err != nil {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}

	return amount, decimal.NullDecimal{}
}

func sumValid(values ...decimal.NullDecimal) decimal.NullDecimal {
	var total decimal.NullDecimal
	for _, v := range values {
		if !v.Valid {
			continue
		}
		total = validDecimal(total.Decimal.Add(v.Decimal))
	}
	return total
}

func (c *cryptophyl) CreateOrder(
	ctx context.Context,
	symbol,
	orderType,
	side string,
	amount decimal.Decimal,
	price decimal.NullDecimal,
) (entity.Order, error) {
	market, err := c.loadMarket(ctx, symbol)
	if err != nil {
		return entity.Order{}, err
	}

	req := cryptophylOrderRequest{
		Market: market.ID,
		Type:   orderType,
		Side:   side,
	}

	v := validate.Struct(&req)
	if !v.Validate() {
		return entity.Order{}, newError(ErrInvalidOrder, c.id, "%s", v.Errors.One())
	}

	if !amount.IsPositive() {
		return entity.Order{}, newError(ErrInvalidOrder, c.id, "createOrder() amount must be positive, got %s", amount)
	}

	params := map[string]any{
		"market": req.Market,
		"type":   req.Type,
		"side":   req.Side,
	}

	// market buys are sized in the quote currency
	if orderType == entity.OrderTypeMarket && side == entity.SideBuy {
		if c.marketBuyRequiresPrice {
			if !price.Valid {
				return entity.Order{}, newError(ErrInvalidOrder, c.id, "createOrder() requires the price argument with market buy orders to calculate total order cost (amount to spend), where cost = amount * price. Supply a price argument or set createMarketBuyOrderRequiresPrice to false to pass the cost in the amount argument")
			}
			params["amount"] = common.CostToPrecision(amount.Mul(price.Decimal), market.Precision.Price)
		} else {
			params["amount"] = common.CostToPrecision(amount, market.Precision.Price)
		}
	} else {
		params["amount"] = common.AmountToPrecision(amount, market.Precision.Amount)
	}

	if orderType == entity.OrderTypeLimit || orderType == entity.OrderTypeIoc {
		if !price.Valid {
			return entity.Order{}, newError(ErrInvalidOrder, c.id, "createOrder() requires a price for %s orders", orderType)
		}
		params["price"] = common.PriceToPrecision(price.Decimal, market.Precision.Price)
	}

	var resp entity.CryptophylResponse[json.RawMessage]

	if err := c.dispatcher.call(ctx, privatePostOrders, params, &resp); err != nil {
		return entity.Order{}, err
	}

	order, err := c.parseOrder(resp.Data, &market)
	if err != nil {
		return entity.Order{}, err
	}

	c.orders[order.ID] = order

	c.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"symbol":   order.Symbol,
		"side":     side,
		"type":     orderType,
	}).Info("order created")

	return order, nil
}

// CancelOrder returns the exchange's acknowledgement as decoded.
func (c *cryptophyl) CancelOrder(ctx context.Context, id string) (map[string]any, error) {
	if id == "" {
		return nil, newError(ErrArgumentsRequired, c.id, "cancelOrder() requires an id argument")
	}

	var ack map[string]any

	if err := c.dispatcher.call(ctx, privateDeleteOrdersId, map[string]any{"id": id}, &ack); err != nil {
		return nil, err
	}

	if ack == nil {
		ack = map[string]any{}
	}

	return ack, nil
}

func (c *cryptophyl) FetchOrder(ctx context.Context, id string) (entity.Order, error) {
	if id == "" {
		return entity.Order{}, newError(ErrArgumentsRequired, c.id, "fetchOrder() requires an id argument")
	}

	var resp entity.CryptophylResponse[json.RawMessage]

	if err := c.dispatcher.call(ctx, privateGetOrdersId, map[string]any{"id": id}, &resp); err != nil {
		return entity.Order{}, err
	}

	return c.parseOrder(resp.Data, nil)
}

func (c *cryptophyl) FetchOpenOrders(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Order, error) {
	return c.fetchOrdersByStatus(ctx, "pending", symbol, since, limit)
}

func (c *cryptophyl) fetchOrdersByStatus(ctx context.Context, status, symbol string, since null.Int64, limit int) ([]entity.Order, error) {
	endpoint, ok := cryptophylOrdersByStatus[status]
	if !ok {
		return nil, newError(ErrNotSupported, c.id, "fetchOrders() does not support status %s", status)
	}

	params, market, err := c.pageParams(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	var resp entity.CryptophylResponse[entity.CryptophylPage[json.RawMessage]]

	if err := c.dispatcher.call(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	orders := make([]entity.Order, 0, len(resp.Data.Data))
	for _, raw := range resp.Data.Data {
		order, err := c.parseOrder(raw, market)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return sortFilterBySinceLimit(orders, func(o entity.Order) null.Int64 {
		return o.Timestamp
	}, since, params["limit"].(int)), nil
}

func (c *cryptophyl) FetchMyTrades(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Trade, error) {
	params, market, err := c.pageParams(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	var resp entity.CryptophylResponse[entity.CryptophylPage[json.RawMessage]]

	if err := c.dispatcher.call(ctx, privateGetFills, params, &resp); err != nil {
		return nil, err
	}

	return c.parseTrades(resp.Data.Data, market, since, params["limit"].(int))
}

// pageParams builds the first-page request shared by the account listings.
func (c *cryptophyl) pageParams(ctx context.Context, symbol string, limit int) (map[string]any, *entity.Market, error) {
	if _, err := c.LoadMarkets(ctx, false); err != nil {
		return nil, nil, err
	}

	if limit <= 0 {
		limit = defaultPageLimit
	}

	params := map[string]any{
		"page":  1,
		"limit": limit,
	}

	if symbol == "" {
		return params, nil, nil
	}

	market, err := c.Market(symbol)
	if err != nil {
		return nil, nil, err
	}
	params["market"] = market.ID

	return params, &market, nil
}

func (c *cryptophyl) parseOrderStatus(status string) string {
	if mapped, ok := cryptophylOrderStatuses[status]; ok {
		return mapped
	}

	if status != "" {
		c.logger.WithField("status", status).Debug("unknown order status")
	}

	return status
}

// parseOrder normalises both the detailed orders/{id} shape and the compact
// shape returned by placement and listings.
func (c *cryptophyl) parseOrder(raw json.RawMessage, market *entity.Market) (entity.Order, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return entity.Order{}, newError(ErrBadResponse, c.id, "response has no order")
	}

	var o entity.CryptophylOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return entity.Order{}, newError(ErrBadResponse, c.id, "could not decode order: %v [raw: %s]", err, string(raw))
	}

	id := safeString(o.Id)
	if !id.Valid || id.String == "" {
		return entity.Order{}, newError(ErrBadResponse, c.id, "order has no id [raw: %s]", string(raw))
	}

	timestamp := safeTimestamp(o.Time)
	if !timestamp.Valid {
		timestamp = safeTimestamp(o.CreateTime)
	}

	marketId := o.ProductId
	if marketId == "" {
		marketId = o.Market
	}
	market = c.marketById(marketId, market)

	side, orderType := o.Side, o.Type
	if side == "" {
		side, orderType = o.Type, o.OrderType
	}

	amount := firstValid(o.Quantity, o.Amount)
	remaining := firstValid(o.Left, o.RemainingQuantity)
	filled := o.DealAmount

	if !filled.Valid && amount.Valid && remaining.Valid {
		filled = validDecimal(amount.Decimal.Sub(remaining.Decimal))
	}
	if !remaining.Valid && amount.Valid && filled.Valid {
		remaining = validDecimal(amount.Decimal.Sub(filled.Decimal))
	}

	cost := o.DealMoney
	if !cost.Valid && filled.Valid && o.AvgPrice.Valid {
		cost = validDecimal(filled.Decimal.Mul(o.AvgPrice.Decimal))
	}

	symbol := ""
	feeCurrency := common.SafeCurrencyCode(o.FeeAsset)
	if market != nil {
		symbol = market.Symbol
		if feeCurrency == "" {
			feeCurrency = market.Quote
		}
	}

	return entity.Order{
		ID:        id.String,
		Timestamp: timestamp,
		Datetime:  entity.Iso8601(timestamp),
		Status:    c.parseOrderStatus(o.Status),
		Symbol:    symbol,
		Type:      orderType,
		Side:      side,
		Price:     o.Price,
		Cost:      cost,
		Average:   o.AvgPrice,
		Amount:    amount,
		Filled:    filled,
		Remaining: remaining,
		Fee: entity.Fee{
			Currency: feeCurrency,
			Cost:     o.DealFee,
		},
		Info: raw,
	}, nil
}

func (c *cryptophyl) Withdraw(ctx context.Context, code string, amount decimal.Decimal, address string, tag null.String) (entity.Transaction, error) {
	if err := c.checkAddress(address); err != nil {
		return entity.Transaction{}, err
	}

	if _, err := c.LoadMarkets(ctx, false); err != nil {
		return entity.Transaction{}, err
	}

	currencyId, err := c.currencyId(code)
	if err != nil {
		return entity.Transaction{}, err
	}

	if tag.Valid && tag.String != "" {
		address = address + ":" + tag.String
	}

	params := map[string]any{
		"coin_type":       currencyId,
		"coin_address":    address,
		"actual_amount":   amount.InexactFloat64(),
		"transfer_method": "1",
	}

	var raw json.RawMessage

	if err := c.dispatcher.call(ctx, privatePostWithdrawals, params, &raw); err != nil {
		return entity.Transaction{}, err
	}

	return c.parseTransaction(unwrapData(raw), code, tag)
}

func (c *cryptophyl) checkAddress(address string) error {
	if address == "" || strings.ContainsAny(address, " \t\r\n") {
		return newError(ErrInvalidAddress, c.id, "address is invalid or has less than 1 characters: %q", address)
	}
	return nil
}

func (c *cryptophyl) parseTransaction(raw json.RawMessage, code string, tag null.String) (entity.Transaction, error) {
	var w entity.CryptophylWithdrawal
	if err := json.Unmarshal(raw, &w); err != nil {
		return entity.Transaction{}, newError(ErrBadResponse, c.id, "could not decode withdrawal: %v [raw: %s]", err, string(raw))
	}

	currency := code
	if w.Currency != "" {
		currency = common.SafeCurrencyCode(w.Currency)
	}

	timestamp := safeTimestamp(w.Time)

	return entity.Transaction{
		ID:        safeString(w.Id).String,
		TxID:      null.NewString(w.TransactionId, w.TransactionId != ""),
		Timestamp: timestamp,
		Datetime:  entity.Iso8601(timestamp),
		Address:   w.Address,
		Tag:       tag,
		Type:      entity.TransactionTypeWithdrawal,
		Amount:    w.Amount,
		Currency:  currency,
		Status:    null.NewString(w.Status, w.Status != ""),
		Info:      raw,
	}, nil
}
