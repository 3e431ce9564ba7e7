package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nilswx/ccxt/adapter/exchange"
	"github.com/nilswx/ccxt/entity"
	"github.com/sirupsen/logrus"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

func (h *Handler) Describe(c *gin.Context) {
	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.Describe(), nil
	})
}

func (h *Handler) GetMarkets(c *gin.Context) {
	reload := c.Query("reload") == "true"

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.LoadMarkets(ctx, reload)
	})
}

func (h *Handler) GetOrderBook(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	limit, err := parseLimit(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchOrderBook(ctx, symbol, limit)
	})
}

func (h *Handler) GetTicker(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchTicker(ctx, symbol)
	})
}

func (h *Handler) GetTrades(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	q, err := parseListQuery(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchTrades(ctx, symbol, q.Since, q.Limit)
	})
}

func (h *Handler) GetCandles(c *gin.Context) {
	symbol, ok := h.requireSymbol(c)
	if !ok {
		return
	}

	timeframe := c.DefaultQuery("timeframe", DefaultTimeframe)

	q, err := parseListQuery(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchOHLCV(ctx, symbol, timeframe, q.Since, q.Limit)
	})
}

func (h *Handler) GetBalance(c *gin.Context) {
	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchBalance(ctx)
	})
}

func (h *Handler) GetOpenOrders(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	symbol := c.Query("symbol")

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchOpenOrders(ctx, symbol, q.Since, q.Limit)
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id := c.Param("id")

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchOrder(ctx, id)
	})
}

func (h *Handler) GetCachedOrder(c *gin.Context) {
	id := c.Param("id")

	h.call(c, func(ctx context.Context) (any, error) {
		order, ok := h.adapter.CachedOrder(id)
		if !ok {
			return nil, &exchange.Error{Kind: exchange.ErrOrderNotFound, Exchange: h.adapter.Describe().ID, Message: "order " + id + " is not cached"}
		}
		return order, nil
	})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.CreateOrder(ctx, req.Symbol, req.Type, req.Side, req.Amount, req.Price)
	})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id := c.Param("id")

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.CancelOrder(ctx, id)
	})
}

func (h *Handler) GetMyTrades(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	symbol := c.Query("symbol")

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.FetchMyTrades(ctx, symbol, q.Since, q.Limit)
	})
}

func (h *Handler) Withdraw(c *gin.Context) {
	var req WithdrawRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	h.call(c, func(ctx context.Context) (any, error) {
		return h.adapter.Withdraw(ctx, req.Code, req.Amount, req.Address, req.Tag)
	})
}

// call runs fn with the adapter lock held and writes the response envelope.
func (h *Handler) call(c *gin.Context, fn func(ctx context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	h.mu.Lock()
	data, err := fn(ctx)
	h.mu.Unlock()

	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.Response{
		Success:   true,
		Code:      http.StatusOK,
		Message:   http.StatusText(http.StatusOK),
		RequestID: c.GetString(RequestIDContextKey),
		Data:      data,
	})
}

func (h *Handler) requireSymbol(c *gin.Context) (string, bool) {
	symbol := c.Query("symbol")
	if symbol == "" {
		h.badRequest(c, errors.New("symbol is required"))
		return "", false
	}
	return symbol, true
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, entity.Response{
		Code:      http.StatusBadRequest,
		Message:   http.StatusText(http.StatusBadRequest),
		RequestID: c.GetString(RequestIDContextKey),
		Error:     err.Error(),
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := statusFor(err)

	entry := h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(RequestIDContextKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("[api][handler][handleError] exchange call failed")
	} else {
		entry.WithError(err).Warn("[api][handler][handleError] exchange call rejected")
	}

	c.JSON(status, entity.Response{
		Code:      status,
		Message:   http.StatusText(status),
		RequestID: c.GetString(RequestIDContextKey),
		Error:     err.Error(),
	})
}

// statusFor maps adapter error kinds to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, exchange.ErrBadSymbol), errors.Is(err, exchange.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, exchange.ErrInvalidOrder),
		errors.Is(err, exchange.ErrArgumentsRequired),
		errors.Is(err, exchange.ErrInvalidAddress),
		errors.Is(err, exchange.ErrBadCurrency):
		return http.StatusBadRequest
	case errors.Is(err, exchange.ErrAuthentication), errors.Is(err, exchange.ErrMissingCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, exchange.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, exchange.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
