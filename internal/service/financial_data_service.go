package service

import (
	"context"
	"time"

	"github.com/yourorg/fmp-tool-server/internal/client"
	"github.com/yourorg/fmp-tool-server/internal/model"
	"github.com/yourorg/fmp-tool-server/internal/normalize"

	"go.uber.org/zap"
)

// Operation names, shared with the tool registry and used in logs
const (
	OpEPSSurprise        = "get_eps_surprise"
	OpRSI                = "get_rsi"
	OpSMA                = "get_sma"
	OpPriceTargets       = "get_price_targets"
	OpInsiderTrading     = "get_insider_trading"
	OpEarningsCalendar   = "get_earnings_calendar"
	OpTechnicalIndicator = "get_technical_indicator"
)

// Upstream is the raw data source, satisfied by *client.FMPClient
type Upstream interface {
	EarningsSurprises(ctx context.Context, symbol string) ([]client.Record, error)
	TechnicalIndicator(ctx context.Context, symbol, indicator string, period int) ([]client.Record, error)
	PriceTargetConsensus(ctx context.Context, symbol string) ([]client.Record, error)
	PriceTargets(ctx context.Context, symbol string) ([]client.Record, error)
	InsiderTrading(ctx context.Context, symbol string, page, limit int) ([]client.Record, error)
	EarningsCalendar(ctx context.Context, from, to string) ([]client.Record, error)
	SymbolEarningsCalendar(ctx context.Context, symbol string) ([]client.Record, error)
}

// FinancialDataService fetches provider data and normalizes it into domain records
type FinancialDataService struct {
	upstream Upstream
	logger   *zap.Logger
	now      func() time.Time
}

// NewFinancialDataService creates a new financial data service
func NewFinancialDataService(upstream Upstream, logger *zap.Logger) *FinancialDataService {
	return &FinancialDataService{
		upstream: upstream,
		logger:   logger,
		now:      time.Now,
	}
}

// GetEPSSurprise returns reported quarters with actual vs. estimated EPS
func (s *FinancialDataService) GetEPSSurprise(ctx context.Context, req model.SymbolQuery) ([]model.EarningsSurpriseRecord, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	records, err := s.upstream.EarningsSurprises(ctx, req.Symbol)
	if err != nil {
		s.logFailure(OpEPSSurprise, req.Symbol, err)
		return nil, err
	}

	return normalize.EarningsSurprises(records), nil
}

// GetTechnicalIndicator returns indicator values within the requested window, oldest first
func (s *FinancialDataService) GetTechnicalIndicator(ctx context.Context, req model.IndicatorQuery) (*model.IndicatorSeries, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	from, to := normalize.IndicatorWindow(s.now(), req.FromDate, req.ToDate)

	records, err := s.upstream.TechnicalIndicator(ctx, req.Symbol, req.Indicator, req.TimePeriod)
	if err != nil {
		s.logFailure(indicatorOperation(req.Indicator), req.Symbol, err, zap.String("indicator", req.Indicator))
		return nil, err
	}

	values := normalize.IndicatorPoints(records, req.Indicator, from, to)
	if skipped := len(records) - len(values); skipped > 0 {
		s.logger.Debug("Indicator records outside window or without value",
			zap.String("symbol", req.Symbol),
			zap.String("indicator", req.Indicator),
			zap.Int("skipped", skipped))
	}

	return &model.IndicatorSeries{
		Symbol:     req.Symbol,
		Indicator:  req.Indicator,
		TimePeriod: req.TimePeriod,
		Values:     values,
	}, nil
}

// GetPriceTargets returns the analyst consensus for a symbol, enriched with
// individual ratings when they can be fetched.
func (s *FinancialDataService) GetPriceTargets(ctx context.Context, req model.SymbolQuery) (*model.PriceTargetConsensus, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	records, err := s.upstream.PriceTargetConsensus(ctx, req.Symbol)
	if err != nil {
		s.logFailure(OpPriceTargets, req.Symbol, err)
		return nil, err
	}
	if len(records) == 0 {
		err := &model.NotFoundError{Resource: "price target consensus", Symbol: req.Symbol}
		s.logFailure(OpPriceTargets, req.Symbol, err)
		return nil, err
	}

	// Only the first consensus record is used
	consensus := normalize.PriceTargetConsensus(req.Symbol, records[0])

	ratings, err := s.enrichRatings(ctx, req.Symbol)
	if err != nil {
		s.logger.Warn("Analyst ratings unavailable, returning consensus only",
			zap.String("operation", OpPriceTargets),
			zap.String("symbol", req.Symbol),
			zap.Error(err))
	} else {
		consensus.Ratings = ratings
	}

	return &consensus, nil
}

// enrichRatings fetches itemized analyst price targets
func (s *FinancialDataService) enrichRatings(ctx context.Context, symbol string) ([]model.AnalystRating, error) {
	records, err := s.upstream.PriceTargets(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return normalize.AnalystRatings(records), nil
}

// GetInsiderTrading returns a page of insider transactions
func (s *FinancialDataService) GetInsiderTrading(ctx context.Context, req model.InsiderTradingQuery) ([]model.InsiderActivityRecord, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	records, err := s.upstream.InsiderTrading(ctx, req.Symbol, req.Page, req.Limit)
	if err != nil {
		s.logFailure(OpInsiderTrading, req.Symbol, err, zap.Int("page", req.Page), zap.Int("limit", req.Limit))
		return nil, err
	}

	return normalize.InsiderActivities(req.Symbol, records), nil
}

// GetEarningsCalendar returns earnings events within the requested window.
// With a symbol the per-symbol history is queried, otherwise the market-wide calendar.
func (s *FinancialDataService) GetEarningsCalendar(ctx context.Context, req model.EarningsCalendarQuery) ([]model.EarningsCalendarEvent, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	from, to := normalize.CalendarWindow(s.now(), req.FromDate, req.ToDate)

	var (
		records []client.Record
		err     error
	)
	if req.Symbol != "" {
		records, err = s.upstream.SymbolEarningsCalendar(ctx, req.Symbol)
	} else {
		records, err = s.upstream.EarningsCalendar(ctx, from, to)
	}
	if err != nil {
		s.logFailure(OpEarningsCalendar, req.Symbol, err, zap.String("from", from), zap.String("to", to))
		return nil, err
	}

	return normalize.EarningsCalendarEvents(records, from, to), nil
}

func (s *FinancialDataService) logFailure(operation, symbol string, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("operation", operation),
		zap.String("symbol", symbol),
		zap.Error(err),
	}, fields...)
	s.logger.Error("Failed to fetch financial data", fields...)
}

func indicatorOperation(indicator string) string {
	switch indicator {
	case model.IndicatorRSI:
		return OpRSI
	case model.IndicatorSMA:
		return OpSMA
	default:
		return OpTechnicalIndicator
	}
}
