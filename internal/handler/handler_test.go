package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourorg/fmp-tool-server/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockData struct {
	mock.Mock
}

func (m *mockData) GetEPSSurprise(ctx context.Context, req model.SymbolQuery) ([]model.EarningsSurpriseRecord, error) {
	args := m.Called(ctx, req)
	records, _ := args.Get(0).([]model.EarningsSurpriseRecord)
	return records, args.Error(1)
}

func (m *mockData) GetTechnicalIndicator(ctx context.Context, req model.IndicatorQuery) (*model.IndicatorSeries, error) {
	args := m.Called(ctx, req)
	series, _ := args.Get(0).(*model.IndicatorSeries)
	return series, args.Error(1)
}

func (m *mockData) GetPriceTargets(ctx context.Context, req model.SymbolQuery) (*model.PriceTargetConsensus, error) {
	args := m.Called(ctx, req)
	consensus, _ := args.Get(0).(*model.PriceTargetConsensus)
	return consensus, args.Error(1)
}

func (m *mockData) GetInsiderTrading(ctx context.Context, req model.InsiderTradingQuery) ([]model.InsiderActivityRecord, error) {
	args := m.Called(ctx, req)
	records, _ := args.Get(0).([]model.InsiderActivityRecord)
	return records, args.Error(1)
}

func (m *mockData) GetEarningsCalendar(ctx context.Context, req model.EarningsCalendarQuery) ([]model.EarningsCalendarEvent, error) {
	args := m.Called(ctx, req)
	events, _ := args.Get(0).([]model.EarningsCalendarEvent)
	return events, args.Error(1)
}

func newTestRouter(data *mockData) *gin.Engine {
	r := gin.New()
	NewFinancialHandler(data, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))

	status := NewStatusHandler("FMP MCP Server", "1.0.0", true)
	r.GET("/health", status.Health)
	r.GET("/", status.Root)
	return r
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newTestRouter(new(mockData)), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","api_key_configured":true}`, w.Body.String())
}

func TestRoot(t *testing.T) {
	w := serve(newTestRouter(new(mockData)), "/")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FMP MCP Server", body["name"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "/mcp", body["endpoints"].(map[string]any)["mcp"])
}

func TestGetEPSSurprise(t *testing.T) {
	data := new(mockData)
	data.On("GetEPSSurprise", mock.Anything, model.SymbolQuery{Symbol: "AAPL"}).
		Return([]model.EarningsSurpriseRecord{{Symbol: "AAPL", Date: "2024-02-01", EPS: 2.18}}, nil)

	w := serve(newTestRouter(data), "/api/v1/symbols/AAPL/eps-surprise")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"eps":2.18`)
}

func TestGetIndicator_QueryBinding(t *testing.T) {
	data := new(mockData)
	want := model.IndicatorQuery{Symbol: "AAPL", Indicator: "rsi", TimePeriod: 7, FromDate: "2024-01-01", ToDate: "2024-02-01"}
	data.On("GetTechnicalIndicator", mock.Anything, want).
		Return(&model.IndicatorSeries{Symbol: "AAPL", Indicator: "rsi", TimePeriod: 7, Values: []model.IndicatorPoint{}}, nil)

	w := serve(newTestRouter(data), "/api/v1/symbols/AAPL/rsi?time_period=7&from_date=2024-01-01&to_date=2024-02-01")

	assert.Equal(t, http.StatusOK, w.Code)
	data.AssertExpectations(t)
}

func TestGetIndicator_DefaultPeriod(t *testing.T) {
	data := new(mockData)
	data.On("GetTechnicalIndicator", mock.Anything, model.IndicatorQuery{Symbol: "MSFT", Indicator: "sma", TimePeriod: 20}).
		Return(&model.IndicatorSeries{Values: []model.IndicatorPoint{}}, nil)

	w := serve(newTestRouter(data), "/api/v1/symbols/MSFT/sma")

	assert.Equal(t, http.StatusOK, w.Code)
	data.AssertExpectations(t)
}

func TestGetIndicator_BadPeriod(t *testing.T) {
	data := new(mockData)

	w := serve(newTestRouter(data), "/api/v1/symbols/AAPL/rsi?time_period=abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"status":400`)
	data.AssertNotCalled(t, "GetTechnicalIndicator", mock.Anything, mock.Anything)
}

func TestGetPriceTargets_NotFound(t *testing.T) {
	data := new(mockData)
	data.On("GetPriceTargets", mock.Anything, model.SymbolQuery{Symbol: "ZZZZ"}).
		Return(nil, &model.NotFoundError{Resource: "price target consensus", Symbol: "ZZZZ"})

	w := serve(newTestRouter(data), "/api/v1/symbols/ZZZZ/price-targets")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":404,"message":"no price target consensus data for ZZZZ"}`, w.Body.String())
}

func TestGetInsiderTrading_UpstreamFailure(t *testing.T) {
	data := new(mockData)
	data.On("GetInsiderTrading", mock.Anything, model.InsiderTradingQuery{Symbol: "TSLA", Page: 1, Limit: 100}).
		Return(nil, errors.New("connection reset"))

	w := serve(newTestRouter(data), "/api/v1/symbols/TSLA/insider-trading?page=1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":500,"message":"Error fetching insider trading data: connection reset"}`, w.Body.String())
}

func TestGetInsiderTrading_LimitOutOfRange(t *testing.T) {
	data := new(mockData)

	w := serve(newTestRouter(data), "/api/v1/symbols/TSLA/insider-trading?limit=0")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	data.AssertNotCalled(t, "GetInsiderTrading", mock.Anything, mock.Anything)
}

func TestGetEarningsCalendar(t *testing.T) {
	data := new(mockData)
	data.On("GetEarningsCalendar", mock.Anything, model.EarningsCalendarQuery{FromDate: "2024-02-01", ToDate: "2024-02-29"}).
		Return([]model.EarningsCalendarEvent{}, nil)

	w := serve(newTestRouter(data), "/api/v1/earnings-calendar?from_date=2024-02-01&to_date=2024-02-29")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestSendError_LogsOperationAndSymbol(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	data := new(mockData)
	data.On("GetPriceTargets", mock.Anything, model.SymbolQuery{Symbol: "AAPL"}).
		Return(nil, errors.New("connection refused"))

	r := gin.New()
	NewFinancialHandler(data, zap.New(core)).RegisterRoutes(r.Group("/api/v1"))

	w := serve(r, "/api/v1/symbols/AAPL/rsi?time_period=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, "/api/v1/symbols/AAPL/price-targets")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.All()
	require.Len(t, entries, 2)

	rejected := entries[0]
	assert.Equal(t, zapcore.WarnLevel, rejected.Level)
	assert.Equal(t, "get_rsi", rejected.ContextMap()["operation"])
	assert.Equal(t, "AAPL", rejected.ContextMap()["symbol"])
	assert.Equal(t, int64(http.StatusBadRequest), rejected.ContextMap()["status"])

	failed := entries[1]
	assert.Equal(t, zapcore.ErrorLevel, failed.Level)
	assert.Equal(t, "get_price_targets", failed.ContextMap()["operation"])
	assert.Equal(t, "AAPL", failed.ContextMap()["symbol"])
}
