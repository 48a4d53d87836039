package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/fmp-tool-server/internal/client"
	"github.com/yourorg/fmp-tool-server/internal/model"
)

type mockUpstream struct {
	mock.Mock
}

func (m *mockUpstream) records(args mock.Arguments) ([]client.Record, error) {
	var records []client.Record
	if v := args.Get(0); v != nil {
		records = v.([]client.Record)
	}
	return records, args.Error(1)
}

func (m *mockUpstream) EarningsSurprises(ctx context.Context, symbol string) ([]client.Record, error) {
	return m.records(m.Called(ctx, symbol))
}

func (m *mockUpstream) TechnicalIndicator(ctx context.Context, symbol, indicator string, period int) ([]client.Record, error) {
	return m.records(m.Called(ctx, symbol, indicator, period))
}

func (m *mockUpstream) PriceTargetConsensus(ctx context.Context, symbol string) ([]client.Record, error) {
	return m.records(m.Called(ctx, symbol))
}

func (m *mockUpstream) PriceTargets(ctx context.Context, symbol string) ([]client.Record, error) {
	return m.records(m.Called(ctx, symbol))
}

func (m *mockUpstream) InsiderTrading(ctx context.Context, symbol string, page, limit int) ([]client.Record, error) {
	return m.records(m.Called(ctx, symbol, page, limit))
}

func (m *mockUpstream) EarningsCalendar(ctx context.Context, from, to string) ([]client.Record, error) {
	return m.records(m.Called(ctx, from, to))
}

func (m *mockUpstream) SymbolEarningsCalendar(ctx context.Context, symbol string) ([]client.Record, error) {
	return m.records(m.Called(ctx, symbol))
}

func newTestService(upstream Upstream) *FinancialDataService {
	svc := NewFinancialDataService(upstream, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestGetEPSSurprise(t *testing.T) {
	up := new(mockUpstream)
	up.On("EarningsSurprises", mock.Anything, "AAPL").Return([]client.Record{
		{"symbol": "AAPL", "date": "2024-02-01", "actualEarningResult": 2.18, "estimatedEarning": 2.1},
		{"symbol": "AAPL", "date": "2023-11-02"},
	}, nil)

	got, err := newTestService(up).GetEPSSurprise(context.Background(), model.SymbolQuery{Symbol: "AAPL"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2.18, got[0].EPS)
	assert.Zero(t, got[1].EPS)
	up.AssertExpectations(t)
}

func TestGetEPSSurprise_UpstreamFailure(t *testing.T) {
	upstreamErr := &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid API KEY.", Endpoint: "/v3/earnings-surprises/AAPL"}
	up := new(mockUpstream)
	up.On("EarningsSurprises", mock.Anything, "AAPL").Return(nil, upstreamErr)

	_, err := newTestService(up).GetEPSSurprise(context.Background(), model.SymbolQuery{Symbol: "AAPL"})
	require.Error(t, err)
	assert.Equal(t, upstreamErr, err)
	assert.Equal(t, http.StatusInternalServerError, model.ErrorStatus(err))
}

func TestGetEPSSurprise_MissingSymbol(t *testing.T) {
	up := new(mockUpstream)

	_, err := newTestService(up).GetEPSSurprise(context.Background(), model.SymbolQuery{})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, model.ErrorStatus(err))
	up.AssertNotCalled(t, "EarningsSurprises", mock.Anything, mock.Anything)
}

func TestGetTechnicalIndicator_DefaultWindow(t *testing.T) {
	up := new(mockUpstream)
	up.On("TechnicalIndicator", mock.Anything, "AAPL", "rsi", 14).Return([]client.Record{
		{"date": "2024-03-15", "rsi": 48.0},
		{"date": "2024-03-01", "rsi": "55.2"},
		{"date": "2024-02-29"},
		{"date": "2023-12-05", "rsi": 30.0},
		{"date": "2023-12-06", "rsi": 31.0},
	}, nil)

	got, err := newTestService(up).GetTechnicalIndicator(context.Background(), model.NewIndicatorQuery("AAPL", model.IndicatorRSI))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "rsi", got.Indicator)
	assert.Equal(t, 14, got.TimePeriod)
	assert.Equal(t, []model.IndicatorPoint{
		{Date: "2023-12-06", Value: 31},
		{Date: "2024-03-01", Value: 55.2},
		{Date: "2024-03-15", Value: 48},
	}, got.Values)
}

func TestGetTechnicalIndicator_ExplicitWindow(t *testing.T) {
	up := new(mockUpstream)
	up.On("TechnicalIndicator", mock.Anything, "MSFT", "sma", 50).Return([]client.Record{
		{"date": "2024-01-02", "sma": 370.0},
		{"date": "2024-01-31", "sma": 400.0},
		{"date": "2024-02-01", "sma": 401.0},
	}, nil)

	q := model.NewIndicatorQuery("MSFT", model.IndicatorSMA)
	q.TimePeriod = 50
	q.FromDate = "2024-01-01"
	q.ToDate = "2024-01-31"

	got, err := newTestService(up).GetTechnicalIndicator(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got.Values, 2)
	assert.Equal(t, "2024-01-31", got.Values[1].Date)
}

func TestGetTechnicalIndicator_InvalidPeriod(t *testing.T) {
	q := model.NewIndicatorQuery("AAPL", model.IndicatorRSI)
	q.TimePeriod = 0

	_, err := newTestService(new(mockUpstream)).GetTechnicalIndicator(context.Background(), q)
	assert.Equal(t, http.StatusBadRequest, model.ErrorStatus(err))
}

func TestGetPriceTargets_FirstRecordWithRatings(t *testing.T) {
	up := new(mockUpstream)
	up.On("PriceTargetConsensus", mock.Anything, "AAPL").Return([]client.Record{
		{"symbol": "AAPL", "targetConsensus": 210.5, "targetHigh": 250.0, "targetLow": 170.0, "numberOfAnalysts": 31.0},
		{"symbol": "AAPL", "targetConsensus": 1.0, "targetHigh": 2.0, "targetLow": 0.5},
	}, nil)
	up.On("PriceTargets", mock.Anything, "AAPL").Return([]client.Record{
		{"analystName": "Jane Doe", "publishedDate": "2024-03-01", "newGrade": "Buy", "priceTarget": 240.0},
	}, nil)

	got, err := newTestService(up).GetPriceTargets(context.Background(), model.SymbolQuery{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 210.5, got.TargetConsensus)
	assert.Equal(t, 250.0, got.TargetHigh)
	assert.Equal(t, 170.0, got.TargetLow)
	assert.Equal(t, 31, got.NumberOfAnalysts)
	require.Len(t, got.Ratings, 1)
	assert.Equal(t, "Jane Doe", got.Ratings[0].AnalystName.String)
	assert.Equal(t, 240.0, got.Ratings[0].PriceTarget)
}

func TestGetPriceTargets_EnrichmentFailureTolerated(t *testing.T) {
	up := new(mockUpstream)
	up.On("PriceTargetConsensus", mock.Anything, "AAPL").Return([]client.Record{
		{"symbol": "AAPL", "targetConsensus": 210.5},
	}, nil)
	up.On("PriceTargets", mock.Anything, "AAPL").Return(nil, &client.ProviderError{Endpoint: "/v4/price-target", Message: "Exclusive Endpoint"})

	got, err := newTestService(up).GetPriceTargets(context.Background(), model.SymbolQuery{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 210.5, got.TargetConsensus)
	assert.Nil(t, got.Ratings)
	up.AssertExpectations(t)
}

func TestGetPriceTargets_EmptyConsensus(t *testing.T) {
	up := new(mockUpstream)
	up.On("PriceTargetConsensus", mock.Anything, "ZZZZ").Return([]client.Record{}, nil)

	_, err := newTestService(up).GetPriceTargets(context.Background(), model.SymbolQuery{Symbol: "ZZZZ"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, model.ErrorStatus(err))
	up.AssertNotCalled(t, "PriceTargets", mock.Anything, mock.Anything)
}

func TestGetPriceTargets_ConsensusFailure(t *testing.T) {
	up := new(mockUpstream)
	up.On("PriceTargetConsensus", mock.Anything, "AAPL").Return(nil, errors.New("connection reset"))

	_, err := newTestService(up).GetPriceTargets(context.Background(), model.SymbolQuery{Symbol: "AAPL"})
	assert.EqualError(t, err, "connection reset")
}

func TestGetInsiderTrading(t *testing.T) {
	up := new(mockUpstream)
	up.On("InsiderTrading", mock.Anything, "TSLA", 0, 100).Return([]client.Record{
		{"filingDate": "2024-03-01", "acquistionOrDisposition": "D"},
	}, nil)

	got, err := newTestService(up).GetInsiderTrading(context.Background(), model.NewInsiderTradingQuery("TSLA"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TSLA", got[0].Symbol)
	assert.Equal(t, int64(0), got[0].Shares)
}

func TestGetInsiderTrading_LimitTooLarge(t *testing.T) {
	q := model.NewInsiderTradingQuery("TSLA")
	q.Limit = 5000

	_, err := newTestService(new(mockUpstream)).GetInsiderTrading(context.Background(), q)
	assert.Equal(t, http.StatusBadRequest, model.ErrorStatus(err))
}

func TestGetEarningsCalendar_DefaultWindow(t *testing.T) {
	up := new(mockUpstream)
	up.On("EarningsCalendar", mock.Anything, "2024-03-15", "2024-04-14").Return([]client.Record{
		{"symbol": "AAPL", "date": "2024-03-14"},
		{"symbol": "MSFT", "date": "2024-03-15"},
		{"symbol": "NVDA", "date": "2024-04-14"},
		{"symbol": "AMZN", "date": "2024-04-15"},
	}, nil)

	got, err := newTestService(up).GetEarningsCalendar(context.Background(), model.EarningsCalendarQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MSFT", got[0].Symbol)
	assert.Equal(t, "NVDA", got[1].Symbol)
}

func TestGetEarningsCalendar_SymbolUsesHistory(t *testing.T) {
	up := new(mockUpstream)
	up.On("SymbolEarningsCalendar", mock.Anything, "AAPL").Return([]client.Record{
		{"symbol": "AAPL", "date": "2024-01-01"},
		{"symbol": "AAPL", "date": "2024-02-01"},
	}, nil)

	got, err := newTestService(up).GetEarningsCalendar(context.Background(), model.EarningsCalendarQuery{
		FromDate: "2024-02-01",
		ToDate:   "2024-02-29",
		Symbol:   "AAPL",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-02-01", got[0].Date)
	up.AssertNotCalled(t, "EarningsCalendar", mock.Anything, mock.Anything, mock.Anything)
}
