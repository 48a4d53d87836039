package model

import (
	"github.com/guregu/null/v6"
)

// EarningsSurpriseRecord is one reported quarter with actual vs. estimated EPS
type EarningsSurpriseRecord struct {
	Symbol             string      `json:"symbol"`
	Date               string      `json:"date"`
	EPS                float64     `json:"eps"`
	EPSEstimated       float64     `json:"eps_estimated"`
	Time               null.String `json:"time"`
	Revenue            null.Float  `json:"revenue"`
	RevenueEstimated   null.Float  `json:"revenue_estimated"`
	UpdatedFromDate    null.String `json:"updated_from_date"`
	Surprise           null.Float  `json:"surprise"`
	SurprisePercentage null.Float  `json:"surprise_percentage"`
	Quarter            null.Float  `json:"quarter"`
	Year               null.Int    `json:"year"`
}

// IndicatorPoint is a single dated value of a technical indicator
type IndicatorPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// IndicatorSeries is a technical indicator over a date window, oldest first
type IndicatorSeries struct {
	Symbol     string           `json:"symbol"`
	Indicator  string           `json:"indicator"`
	TimePeriod int              `json:"time_period"`
	Values     []IndicatorPoint `json:"values"`
}

// AnalystRating is an individual analyst's price target
type AnalystRating struct {
	AnalystName null.String `json:"analyst_name"`
	Date        string      `json:"date"`
	Rating      string      `json:"rating"`
	PriceTarget float64     `json:"price_target"`
}

// PriceTargetConsensus aggregates analyst price targets for a symbol.
// Ratings is nil when the itemized ratings could not be fetched.
type PriceTargetConsensus struct {
	Symbol                   string          `json:"symbol"`
	TargetConsensus          float64         `json:"target_consensus"`
	TargetHigh               float64         `json:"target_high"`
	TargetLow                float64         `json:"target_low"`
	NumberOfAnalysts         int             `json:"number_of_analysts"`
	LastAnalystConsensusDate string          `json:"last_analyst_consensus_date"`
	RatingConsensus          string          `json:"rating_consensus"`
	Ratings                  []AnalystRating `json:"ratings"`
}

// InsiderActivityRecord is a single insider transaction filing.
//
// Shares is populated from the upstream "acquistionOrDisposition" field, not
// from a share quantity. The upstream flag is usually "A" or "D", which
// yields 0 here.
type InsiderActivityRecord struct {
	Symbol          string      `json:"symbol"`
	FilingDate      string      `json:"filing_date"`
	TransactionDate string      `json:"transaction_date"`
	ReporterName    string      `json:"reporter_name"`
	ReporterTitle   string      `json:"reporter_title"`
	TransactionType string      `json:"transaction_type"`
	Shares          int64       `json:"shares"`
	Price           null.Float  `json:"price"`
	Value           null.Float  `json:"value"`
	URL             null.String `json:"url"`
}

// EarningsCalendarEvent is a scheduled or reported earnings date
type EarningsCalendarEvent struct {
	Symbol           string      `json:"symbol"`
	Date             string      `json:"date"`
	EPS              null.Float  `json:"eps"`
	EPSEstimated     null.Float  `json:"eps_estimated"`
	Time             null.String `json:"time"`
	Revenue          null.Float  `json:"revenue"`
	RevenueEstimated null.Float  `json:"revenue_estimated"`
	Quarter          null.Int    `json:"quarter"`
	Year             null.Int    `json:"year"`
}
