package normalize

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/yourorg/fmp-tool-server/internal/client"
	"github.com/yourorg/fmp-tool-server/internal/model"
)

// IndicatorKeys returns the record keys that may carry the value of an
// indicator, in lookup order. The provider is not consistent about naming.
func IndicatorKeys(indicator string) []string {
	keys := []string{strings.ToLower(indicator), "value"}
	if indicator != keys[0] {
		keys = append(keys, indicator)
	}
	return append(keys, "indicator_value")
}

// ResolveIndicatorValue finds the indicator value in a raw record.
// The first candidate key holding a numeric value wins.
func ResolveIndicatorValue(rec client.Record, indicator string) (float64, bool) {
	for _, key := range IndicatorKeys(indicator) {
		v, ok := lookup(rec, key)
		if !ok {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		return f, true
	}
	return 0, false
}

// IndicatorPoints converts raw indicator records into points within
// [from, to], oldest first. Records without a resolvable value are dropped.
func IndicatorPoints(records []client.Record, indicator, from, to string) []model.IndicatorPoint {
	points := make([]model.IndicatorPoint, 0, len(records))
	for _, rec := range records {
		value, ok := ResolveIndicatorValue(rec, indicator)
		if !ok {
			continue
		}
		date := stringOr(rec, "date", "")
		if !InWindow(date, from, to) {
			continue
		}
		points = append(points, model.IndicatorPoint{Date: date, Value: value})
	}

	// The provider returns newest first
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}
