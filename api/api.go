package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nilswx/ccxt/adapter/exchange"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultTimeframe    = "5m"
	ServiceName         = "cryptophyl-gateway"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// Handler exposes one exchange adapter over HTTP. Adapter calls are
// serialised because the adapter itself holds unsynchronised state.
type Handler struct {
	mu      sync.Mutex
	adapter exchange.ProviderAdapter
	logger  *logrus.Entry
}

func NewHandler(adapter exchange.ProviderAdapter, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Handler{
		adapter: adapter,
		logger:  logger.WithField("component", "gateway"),
	}
}

func (h *Handler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())

	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/describe", h.Describe)
		v1.GET("/markets", h.GetMarkets)
		v1.GET("/orderbook", h.GetOrderBook)
		v1.GET("/ticker", h.GetTicker)
		v1.GET("/trades", h.GetTrades)
		v1.GET("/candles", h.GetCandles)

		v1.GET("/balance", h.GetBalance)
		v1.GET("/orders", h.GetOpenOrders)
		v1.GET("/orders/:id", h.GetOrder)
		v1.POST("/orders", h.CreateOrder)
		v1.DELETE("/orders/:id", h.CancelOrder)
		v1.GET("/cached-orders/:id", h.GetCachedOrder)
		v1.GET("/my-trades", h.GetMyTrades)
		v1.POST("/withdrawals", h.Withdraw)
	}

	return router
}
