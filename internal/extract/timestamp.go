package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// canonicalLayout is the engine's canonical local-time instant form, shared
// with the index layer's TEXT columns.
const canonicalLayout = "2006-01-02T15:04:05"

// Epoch seconds beyond year 9999 or before year 1 are treated as garbage.
const (
	maxEpochSeconds = 253402300799
	minEpochSeconds = -62135596800
)

var digitRunRe = regexp.MustCompile(`^\d{10,16}$`)

// normalizeTimestamp converts an absent, numeric, or string timestamp value to
// the canonical form. Numbers at or above 1e12 are millisecond epochs, below
// that second epochs. Strings of 10-16 digits follow the same heuristic; any
// other non-empty string passes through unchanged. Unconvertible input yields
// "" which downstream treats as unknown.
func normalizeTimestamp(v any) string {
	switch ts := v.(type) {
	case float64:
		return epochToLocal(ts)
	case int:
		return epochToLocal(float64(ts))
	case int64:
		return epochToLocal(float64(ts))
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return ""
		}
		if digitRunRe.MatchString(s) {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return ""
			}
			return epochToLocal(n)
		}
		return s
	}
	return ""
}

func epochToLocal(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	if n >= 1e12 {
		n = n / 1000
	}
	if n > maxEpochSeconds || n < minEpochSeconds {
		return ""
	}
	sec := int64(n)
	nsec := int64((n - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).Format(canonicalLayout)
}

// recordTimestamp pulls the first convertible timestamp out of a record,
// trying the known key spellings in a fixed order.
func recordTimestamp(obj *record) string {
	for _, key := range []string{"timestamp", "time", "created_at", "createdAt", "ts"} {
		if v, ok := obj.lookup(key); ok {
			if ts := normalizeTimestamp(v); ts != "" {
				return ts
			}
		}
	}
	return ""
}
