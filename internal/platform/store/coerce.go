package store

import (
	"encoding/json"
	"math"
	"strconv"
)

// BigInt mirrors the {low, high} 64-bit integer wrapper some graph drivers
// return for aggregates instead of a plain number
type BigInt struct {
	Low  int64
	High int64
}

// Num coerces any backend scalar to a plain float64 with one fixed rule:
// nil -> 0; a real number -> itself unless NaN; a {low,high} wrapper ->
// low + high*2^32; strings best-effort parsed; anything else -> 0
//
// Every handler must pass aggregates through here before the value leaves
// the repo layer, so the rest of the pipeline only ever sees plain numbers
func Num(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(t) {
			return 0
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) {
			return 0
		}
		return f
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case BigInt:
		return float64(t.Low) + float64(t.High)*4294967296
	case *BigInt:
		if t == nil {
			return 0
		}
		return float64(t.Low) + float64(t.High)*4294967296
	case map[string]any:
		// wrapper that survived generic decoding
		low, okL := t["low"]
		high, okH := t["high"]
		if okL && okH {
			return Num(low) + Num(high)*4294967296
		}
		return 0
	case json.Number:
		if f, err := t.Float64(); err == nil && !math.IsNaN(f) {
			return f
		}
		return 0
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsNaN(f) {
			return f
		}
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Int64 is Num truncated to an integer count
func Int64(v any) int64 { return int64(Num(v)) }

// Str returns the value as a string, or "" when absent or not a string
func Str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// NumOf reads and coerces a record field
func NumOf(r Record, key string) float64 { return Num(r[key]) }

// Int64Of reads and coerces a record field to an integer count
func Int64Of(r Record, key string) int64 { return Int64(r[key]) }

// StrOf reads a record field as a string
func StrOf(r Record, key string) string { return Str(r[key]) }
