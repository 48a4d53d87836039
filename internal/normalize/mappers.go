package normalize

import (
	"github.com/guregu/null/v6"
	"github.com/spf13/cast"

	"github.com/yourorg/fmp-tool-server/internal/client"
	"github.com/yourorg/fmp-tool-server/internal/model"
)

const unknownAnalyst = "Unknown"

var (
	ratingDateKeys  = []string{"date", "publishedDate"}
	ratingLabelKeys = []string{"rating", "newGrade"}

	// v4 insider-trading names these reportingName and typeOfOwner
	reporterNameKeys  = []string{"reporterName", "reportingName"}
	reporterTitleKeys = []string{"reporterTitle", "typeOfOwner"}
)

// EarningsSurprise maps an earnings-surprises record
func EarningsSurprise(rec client.Record) model.EarningsSurpriseRecord {
	return model.EarningsSurpriseRecord{
		Symbol:             stringOr(rec, "symbol", ""),
		Date:               stringOr(rec, "date", ""),
		EPS:                floatOr(rec, "actualEarningResult", 0),
		EPSEstimated:       floatOr(rec, "estimatedEarning", 0),
		Time:               optString(rec, "time"),
		Revenue:            optFloat(rec, "revenue"),
		RevenueEstimated:   optFloat(rec, "revenueEstimated"),
		UpdatedFromDate:    optString(rec, "updatedFromDate"),
		Surprise:           optFloat(rec, "surprise"),
		SurprisePercentage: optFloat(rec, "surprisePercentage"),
		Quarter:            optFloat(rec, "quarter"),
		Year:               optInt(rec, "year"),
	}
}

// EarningsSurprises maps every record, preserving upstream order
func EarningsSurprises(records []client.Record) []model.EarningsSurpriseRecord {
	out := make([]model.EarningsSurpriseRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, EarningsSurprise(rec))
	}
	return out
}

// PriceTargetConsensus maps a consensus record. Ratings are left unset.
func PriceTargetConsensus(symbol string, rec client.Record) model.PriceTargetConsensus {
	return model.PriceTargetConsensus{
		Symbol:                   symbol,
		TargetConsensus:          floatOr(rec, "targetConsensus", 0),
		TargetHigh:               floatOr(rec, "targetHigh", 0),
		TargetLow:                floatOr(rec, "targetLow", 0),
		NumberOfAnalysts:         int(intOr(rec, "numberOfAnalysts", 0)),
		LastAnalystConsensusDate: stringOr(rec, "lastAnalystConsensusDate", ""),
		RatingConsensus:          stringOr(rec, "ratingConsensus", ""),
	}
}

// AnalystRating maps an individual price target record.
// A missing analyst name becomes "Unknown"; an explicit null stays null.
func AnalystRating(rec client.Record) model.AnalystRating {
	name := null.StringFrom(unknownAnalyst)
	if v, ok := rec["analystName"]; ok {
		name = null.String{}
		if s, err := cast.ToStringE(v); v != nil && err == nil {
			name = null.StringFrom(s)
		}
	}
	return model.AnalystRating{
		AnalystName: name,
		Date:        firstString(rec, ratingDateKeys, ""),
		Rating:      firstString(rec, ratingLabelKeys, ""),
		PriceTarget: floatOr(rec, "priceTarget", 0),
	}
}

// AnalystRatings maps every record. The result is never nil.
func AnalystRatings(records []client.Record) []model.AnalystRating {
	out := make([]model.AnalystRating, 0, len(records))
	for _, rec := range records {
		out = append(out, AnalystRating(rec))
	}
	return out
}

// InsiderActivity maps an insider trading record. Symbol is used when the
// record does not name one.
func InsiderActivity(symbol string, rec client.Record) model.InsiderActivityRecord {
	return model.InsiderActivityRecord{
		Symbol:          stringOr(rec, "symbol", symbol),
		FilingDate:      stringOr(rec, "filingDate", ""),
		TransactionDate: stringOr(rec, "transactionDate", ""),
		ReporterName:    firstString(rec, reporterNameKeys, ""),
		ReporterTitle:   firstString(rec, reporterTitleKeys, ""),
		TransactionType: stringOr(rec, "transactionType", ""),
		// Upstream spelling, and a flag rather than a quantity
		Shares: intOr(rec, "acquistionOrDisposition", 0),
		Price:  optFloat(rec, "price"),
		Value:  optFloat(rec, "value"),
		URL:    null.StringFrom(stringOr(rec, "link", "")),
	}
}

// InsiderActivities maps every record, preserving upstream order
func InsiderActivities(symbol string, records []client.Record) []model.InsiderActivityRecord {
	out := make([]model.InsiderActivityRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, InsiderActivity(symbol, rec))
	}
	return out
}

// EarningsCalendarEvent maps an earnings calendar record
func EarningsCalendarEvent(rec client.Record) model.EarningsCalendarEvent {
	return model.EarningsCalendarEvent{
		Symbol:           stringOr(rec, "symbol", ""),
		Date:             stringOr(rec, "date", ""),
		EPS:              optFloat(rec, "eps"),
		EPSEstimated:     optFloat(rec, "epsEstimated"),
		Time:             optString(rec, "time"),
		Revenue:          optFloat(rec, "revenue"),
		RevenueEstimated: optFloat(rec, "revenueEstimated"),
		Quarter:          optInt(rec, "quarter"),
		Year:             optInt(rec, "year"),
	}
}

// EarningsCalendarEvents maps the records dated within [from, to]
func EarningsCalendarEvents(records []client.Record, from, to string) []model.EarningsCalendarEvent {
	out := make([]model.EarningsCalendarEvent, 0, len(records))
	for _, rec := range records {
		if !InWindow(stringOr(rec, "date", ""), from, to) {
			continue
		}
		out = append(out, EarningsCalendarEvent(rec))
	}
	return out
}
