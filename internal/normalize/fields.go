package normalize

import (
	"github.com/guregu/null/v6"
	"github.com/spf13/cast"

	"github.com/yourorg/fmp-tool-server/internal/client"
)

// A key counts as present only when it holds a non-null value.
func lookup(rec client.Record, key string) (interface{}, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func stringOr(rec client.Record, key, def string) string {
	v, ok := lookup(rec, key)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func firstString(rec client.Record, keys []string, def string) string {
	for _, key := range keys {
		if _, ok := lookup(rec, key); ok {
			return stringOr(rec, key, def)
		}
	}
	return def
}

func optString(rec client.Record, key string) null.String {
	v, ok := lookup(rec, key)
	if !ok {
		return null.String{}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return null.String{}
	}
	return null.StringFrom(s)
}

func floatOr(rec client.Record, key string, def float64) float64 {
	v, ok := lookup(rec, key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

func optFloat(rec client.Record, key string) null.Float {
	v, ok := lookup(rec, key)
	if !ok {
		return null.Float{}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

func toInt(v interface{}) (int64, bool) {
	if i, err := cast.ToInt64E(v); err == nil {
		return i, true
	}
	// "12.0" style strings
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func intOr(rec client.Record, key string, def int64) int64 {
	v, ok := lookup(rec, key)
	if !ok {
		return def
	}
	i, ok := toInt(v)
	if !ok {
		return def
	}
	return i
}

func optInt(rec client.Record, key string) null.Int {
	v, ok := lookup(rec, key)
	if !ok {
		return null.Int{}
	}
	i, ok := toInt(v)
	if !ok {
		return null.Int{}
	}
	return null.IntFrom(i)
}
