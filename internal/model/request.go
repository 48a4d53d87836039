package model

// Indicator names understood by the technical indicator tools
const (
	IndicatorRSI = "rsi"
	IndicatorSMA = "sma"
)

// Default parameters applied when the caller omits them
const (
	DefaultRSIPeriod    = 14
	DefaultSMAPeriod    = 20
	DefaultInsiderPage  = 0
	DefaultInsiderLimit = 100
)

// SymbolQuery is the input for operations keyed only by symbol
type SymbolQuery struct {
	Symbol string `json:"symbol" form:"symbol" binding:"required"`
}

// IndicatorQuery is the input for technical indicator operations.
// Dates are ISO YYYY-MM-DD strings and are not validated.
type IndicatorQuery struct {
	Symbol     string `json:"symbol" form:"symbol" binding:"required"`
	Indicator  string `json:"indicator" form:"indicator" binding:"required"`
	TimePeriod int    `json:"time_period" form:"time_period" binding:"gte=1"`
	FromDate   string `json:"from_date" form:"from_date"`
	ToDate     string `json:"to_date" form:"to_date"`
}

// InsiderTradingQuery is the input for insider trading lookups
type InsiderTradingQuery struct {
	Symbol string `json:"symbol" form:"symbol" binding:"required"`
	Page   int    `json:"page" form:"page" binding:"gte=0"`
	Limit  int    `json:"limit" form:"limit" binding:"gte=1"`
}

// EarningsCalendarQuery is the input for the earnings calendar.
// An empty Symbol queries the market-wide calendar.
type EarningsCalendarQuery struct {
	FromDate string `json:"from_date" form:"from_date"`
	ToDate   string `json:"to_date" form:"to_date"`
	Symbol   string `json:"symbol" form:"symbol"`
}

// NewIndicatorQuery returns a query with the default period for the indicator
func NewIndicatorQuery(symbol, indicator string) IndicatorQuery {
	period := DefaultRSIPeriod
	if indicator == IndicatorSMA {
		period = DefaultSMAPeriod
	}
	return IndicatorQuery{Symbol: symbol, Indicator: indicator, TimePeriod: period}
}

// NewInsiderTradingQuery returns a query with default paging
func NewInsiderTradingQuery(symbol string) InsiderTradingQuery {
	return InsiderTradingQuery{Symbol: symbol, Page: DefaultInsiderPage, Limit: DefaultInsiderLimit}
}
