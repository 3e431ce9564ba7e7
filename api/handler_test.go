package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/nilswx/ccxt/adapter/exchange"
	"github.com/nilswx/ccxt/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
)

// MockAdapter implements exchange.ProviderAdapter for testing
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Sign(path, api, method string, params map[string]any) (exchange.Request, error) {
	args := m.Called(path, api, method, params)
	return args.Get(0).(exchange.Request), args.Error(1)
}

func (m *MockAdapter) HandleErrors(statusCode int, body []byte) error {
	args := m.Called(statusCode, body)
	return args.Error(0)
}

func (m *MockAdapter) Describe() entity.ExchangeInfo {
	args := m.Called()
	return args.Get(0).(entity.ExchangeInfo)
}

func (m *MockAdapter) LoadMarkets(ctx context.Context, reload bool) (map[string]entity.Market, error) {
	args := m.Called(ctx, reload)
	return args.Get(0).(map[string]entity.Market), args.Error(1)
}

func (m *MockAdapter) FetchMarkets(ctx context.Context) ([]entity.Market, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entity.Market), args.Error(1)
}

func (m *MockAdapter) Market(symbol string) (entity.Market, error) {
	args := m.Called(symbol)
	return args.Get(0).(entity.Market), args.Error(1)
}

func (m *MockAdapter) FetchOrderBook(ctx context.Context, symbol string, limit int) (entity.OrderBook, error) {
	args := m.Called(ctx, symbol, limit)
	return args.Get(0).(entity.OrderBook), args.Error(1)
}

func (m *MockAdapter) FetchOHLCV(ctx context.Context, symbol, timeframe string, since null.Int64, limit int) ([]entity.Candle, error) {
	args := m.Called(ctx, symbol, timeframe, since, limit)
	return args.Get(0).([]entity.Candle), args.Error(1)
}

func (m *MockAdapter) FetchTrades(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Trade, error) {
	args := m.Called(ctx, symbol, since, limit)
	return args.Get(0).([]entity.Trade), args.Error(1)
}

func (m *MockAdapter) FetchTicker(ctx context.Context, symbol string) (entity.Ticker, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(entity.Ticker), args.Error(1)
}

func (m *MockAdapter) FetchBalance(ctx context.Context) (entity.Balances, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Balances), args.Error(1)
}

func (m *MockAdapter) CreateOrder(ctx context.Context, symbol, orderType, side string, amount decimal.Decimal, price decimal.NullDecimal) (entity.Order, error) {
	args := m.Called(ctx, symbol, orderType, side, amount, price)
	return args.Get(0).(entity.Order), args.Error(1)
}

func (m *MockAdapter) CancelOrder(ctx context.Context, id string) (map[string]any, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockAdapter) FetchOrder(ctx context.Context, id string) (entity.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entity.Order), args.Error(1)
}

func (m *MockAdapter) FetchOpenOrders(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Order, error) {
	args := m.Called(ctx, symbol, since, limit)
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockAdapter) FetchMyTrades(ctx context.Context, symbol string, since null.Int64, limit int) ([]entity.Trade, error) {
	args := m.Called(ctx, symbol, since, limit)
	return args.Get(0).([]entity.Trade), args.Error(1)
}

func (m *MockAdapter) Withdraw(ctx context.Context, code string, amount decimal.Decimal, address string, tag null.String) (entity.Transaction, error) {
	args := m.Called(ctx, code, amount, address, tag)
	return args.Get(0).(entity.Transaction), args.Error(1)
}

func (m *MockAdapter) CachedOrder(id string) (entity.Order, bool) {
	args := m.Called(id)
	return args.Get(0).(entity.Order), args.Bool(1)
}

type envelope struct {
	Success   bool            `json:"success"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
}

func setupRouter(t *testing.T) (*MockAdapter, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	adapter := &MockAdapter{}
	return adapter, NewHandler(adapter, logger).SetupRoutes()
}

func perform(t *testing.T, router *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(target, "/api/") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}

	return w, resp
}

func nullDecimal(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func exchangeErr(kind error, msg string) error {
	return &exchange.Error{Kind: kind, Exchange: "cryptophyl", Message: msg}
}

func TestHealthCheck(t *testing.T) {
	_, router := setupRouter(t)

	w, _ := perform(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ServiceName)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeaderKey))
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeaderKey, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeaderKey))
}

func TestGetTicker(t *testing.T) {
	adapter, router := setupRouter(t)

	ticker := entity.Ticker{
		Symbol: "SPICE/BCH",
		Last:   nullDecimal("1.5"),
	}
	adapter.On("FetchTicker", mock.Anything, "SPICE/BCH").Return(ticker, nil)

	w, resp := perform(t, router, http.MethodGet, "/api/v1/ticker?symbol=SPICE/BCH", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, w.Header().Get(RequestIDHeaderKey), resp.RequestID)
	assert.Contains(t, string(resp.Data), `"symbol":"SPICE/BCH"`)
	assert.Contains(t, string(resp.Data), `"open":null`)
	adapter.AssertExpectations(t)
}

func TestGetTickerRequiresSymbol(t *testing.T) {
	adapter, router := setupRouter(t)

	w, resp := perform(t, router, http.MethodGet, "/api/v1/ticker", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "symbol is required", resp.Error)
	adapter.AssertNotCalled(t, "FetchTicker", mock.Anything, mock.Anything)
}

func TestGetCandles(t *testing.T) {
	adapter, router := setupRouter(t)

	candles := []entity.Candle{{
		Timestamp: 1000000,
		Open:      decimal.NewFromInt(110),
		High:      decimal.NewFromInt(120),
		Low:       decimal.NewFromInt(90),
		Close:     decimal.NewFromInt(100),
		Volume:    decimal.NewFromInt(50),
	}}
	adapter.On("FetchOHLCV", mock.Anything, "SPICE/BCH", "1h", null.Int64From(500), 10).Return(candles, nil)

	w, resp := perform(t, router, http.MethodGet, "/api/v1/candles?symbol=SPICE/BCH&timeframe=1h&since=500&limit=10", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[[1000000,"110","120","90","100","50"]]`, string(resp.Data))
	adapter.AssertExpectations(t)
}

func TestGetCandlesDefaults(t *testing.T) {
	adapter, router := setupRouter(t)

	adapter.On("FetchOHLCV", mock.Anything, "SPICE/BCH", DefaultTimeframe, null.Int64{}, 0).Return([]entity.Candle{}, nil)

	w, _ := perform(t, router, http.MethodGet, "/api/v1/candles?symbol=SPICE/BCH", "")

	assert.Equal(t, http.StatusOK, w.Code)
	adapter.AssertExpectations(t)
}

func TestListQueryValidation(t *testing.T) {
	_, router := setupRouter(t)

	for _, target := range []string{
		"/api/v1/trades?symbol=SPICE/BCH&limit=ten",
		"/api/v1/trades?symbol=SPICE/BCH&since=-1",
		"/api/v1/orderbook?symbol=SPICE/BCH&limit=-5",
		"/api/v1/my-trades?since=yesterday",
	} {
		w, _ := perform(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestCreateOrder(t *testing.T) {
	adapter, router := setupRouter(t)

	order := entity.Order{ID: "X", Symbol: "SPICE/BCH", Side: "buy", Type: "limit"}
	adapter.On("CreateOrder", mock.Anything, "SPICE/BCH", "limit", "buy",
		decimal.RequireFromString("1.5"), nullDecimal("0.25"),
	).Return(order, nil)

	w, resp := perform(t, router, http.MethodPost, "/api/v1/orders",
		`{"symbol":"SPICE/BCH","type":"limit","side":"buy","amount":"1.5","price":"0.25"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"id":"X"`)
	adapter.AssertExpectations(t)
}

func TestCreateOrderBadBody(t *testing.T) {
	adapter, router := setupRouter(t)

	w, _ := perform(t, router, http.MethodPost, "/api/v1/orders", `{"type":"limit"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	adapter.AssertNotCalled(t, "CreateOrder")
}

func TestWithdraw(t *testing.T) {
	adapter, router := setupRouter(t)

	tx := entity.Transaction{ID: "1", Type: entity.TransactionTypeWithdrawal, Currency: "BCH"}
	adapter.On("Withdraw", mock.Anything, "BCH", decimal.RequireFromString("0.5"), "qz", null.StringFrom("memo")).Return(tx, nil)

	w, _ := perform(t, router, http.MethodPost, "/api/v1/withdrawals", `{"code":"BCH","amount":"0.5","address":"qz","tag":"memo"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	adapter.AssertExpectations(t)
}

func TestCachedOrder(t *testing.T) {
	adapter, router := setupRouter(t)

	adapter.On("CachedOrder", "X").Return(entity.Order{ID: "X"}, true)
	adapter.On("CachedOrder", "Z").Return(entity.Order{}, false)
	adapter.On("Describe").Return(entity.ExchangeInfo{ID: "cryptophyl"})

	w, resp := perform(t, router, http.MethodGet, "/api/v1/cached-orders/X", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"id":"X"`)

	w, resp = perform(t, router, http.MethodGet, "/api/v1/cached-orders/Z", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "cryptophyl order Z is not cached", resp.Error)
}

func TestCancelOrder(t *testing.T) {
	adapter, router := setupRouter(t)

	adapter.On("CancelOrder", mock.Anything, "42").Return(map[string]any{"status": "ok"}, nil)

	w, resp := perform(t, router, http.MethodDelete, "/api/v1/orders/42", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{exchangeErr(exchange.ErrBadSymbol, "does not have market symbol X/Y"), http.StatusNotFound},
		{exchangeErr(exchange.ErrOrderNotFound, "Order not found"), http.StatusNotFound},
		{exchangeErr(exchange.ErrInvalidOrder, "Invalid order"), http.StatusBadRequest},
		{exchangeErr(exchange.ErrArgumentsRequired, "id required"), http.StatusBadRequest},
		{exchangeErr(exchange.ErrInvalidAddress, "bad address"), http.StatusBadRequest},
		{exchangeErr(exchange.ErrBadCurrency, "no DOGE"), http.StatusBadRequest},
		{exchangeErr(exchange.ErrAuthentication, "Invalid API key"), http.StatusUnauthorized},
		{exchangeErr(exchange.ErrMissingCredentials, "requires apiKey"), http.StatusUnauthorized},
		{exchangeErr(exchange.ErrInsufficientFunds, "Insufficient funds"), http.StatusUnprocessableEntity},
		{exchangeErr(exchange.ErrNotSupported, "no 3m"), http.StatusNotImplemented},
		{exchangeErr(exchange.ErrExchangeNotAvailable, "503"), http.StatusBadGateway},
		{exchangeErr(exchange.ErrExchange, "Maintenance"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			adapter, router := setupRouter(t)
			adapter.On("FetchOrder", mock.Anything, "1").Return(entity.Order{}, tc.err)

			w, resp := perform(t, router, http.MethodGet, "/api/v1/orders/1", "")

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.status, resp.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.err.Error(), resp.Error)
		})
	}
}

func TestAdapterCallsAreSerialised(t *testing.T) {
	adapter, router := setupRouter(t)

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	adapter.On("FetchBalance", mock.Anything).Run(func(mock.Arguments) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
	}).Return(entity.Balances{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
			router.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	adapter.AssertNumberOfCalls(t, "FetchBalance", 8)
}
