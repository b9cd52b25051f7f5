package cleanse

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// dateFloor is the oldest date any source system legitimately produces.
var dateFloor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// RuleKind enumerates the cleansing rules a column can declare.
type RuleKind int

const (
	// KindTrim strips whitespace; blank becomes NULL.
	KindTrim RuleKind = iota
	// KindBoolText maps "true"/"false" (any casing) to 1/0.
	KindBoolText
	// KindBoundedDate accepts dates within [dateFloor, run time].
	KindBoundedDate
	// KindAtLeast accepts numerics >= Min.
	KindAtLeast
	// KindGreaterThan accepts numerics strictly > Min.
	KindGreaterThan
	// KindEnum accepts only members of a fixed, case-sensitive set.
	KindEnum
	// KindIntEnum is KindEnum over integer codes, emitting int64.
	KindIntEnum
	// KindPattern accepts values matching a fixed shape.
	KindPattern
	// KindNumeric parses a numeric with no range guard.
	KindNumeric
)

// Rule is the declared cleansing behaviour for one column. Rules are total:
// a value that cannot be validated degrades to NULL, never to an error, so
// a single bad field can never drop a row.
type Rule struct {
	Kind    RuleKind
	Min     float64
	Allowed []string
	Pattern *regexp.Regexp
}

// Trim strips surrounding whitespace and nulls blank values.
func Trim() Rule { return Rule{Kind: KindTrim} }

// BoolText converts textual true/false flags to 1/0.
func BoolText() Rule { return Rule{Kind: KindBoolText} }

// BoundedDate accepts dates between 2000-01-01 and the run reference time.
func BoundedDate() Rule { return Rule{Kind: KindBoundedDate} }

// NonNegative accepts numerics >= 0.
func NonNegative() Rule { return AtLeast(0) }

// AtLeast accepts numerics >= min.
func AtLeast(min float64) Rule { return Rule{Kind: KindAtLeast, Min: min} }

// GreaterThan accepts numerics strictly above min.
func GreaterThan(min float64) Rule { return Rule{Kind: KindGreaterThan, Min: min} }

// Enum accepts only the listed values, matched case-sensitively.
func Enum(allowed ...string) Rule { return Rule{Kind: KindEnum, Allowed: allowed} }

// IntEnum accepts only the listed integer codes.
func IntEnum(allowed ...string) Rule { return Rule{Kind: KindIntEnum, Allowed: allowed} }

// Pattern accepts values matching the compiled expression end to end.
func Pattern(re *regexp.Regexp) Rule { return Rule{Kind: KindPattern, Pattern: re} }

// Numeric parses a numeric without any range guard.
func Numeric() Rule { return Rule{Kind: KindNumeric} }

// Apply cleanses one raw value. The returned value is the typed column value
// or nil for NULL. now is the run reference time and bounds KindBoundedDate.
func (r Rule) Apply(raw string, now time.Time) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	switch r.Kind {
	case KindTrim:
		return value

	case KindBoolText:
		switch strings.ToLower(value) {
		case "true":
			return int16(1)
		case "false":
			return int16(0)
		}
		return nil

	case KindBoundedDate:
		parsed, ok := parseDate(value)
		if !ok {
			return nil
		}
		if parsed.Before(dateFloor) || parsed.After(now) {
			return nil
		}
		return parsed

	case KindAtLeast:
		n, err := cast.ToFloat64E(value)
		if err != nil || !finite(n) || n < r.Min {
			return nil
		}
		return n

	case KindGreaterThan:
		n, err := cast.ToFloat64E(value)
		if err != nil || !finite(n) || n <= r.Min {
			return nil
		}
		return n

	case KindEnum:
		for _, allowed := range r.Allowed {
			if value == allowed {
				return value
			}
		}
		return nil

	case KindIntEnum:
		for _, allowed := range r.Allowed {
			if value == allowed {
				return cast.ToInt64(allowed)
			}
		}
		return nil

	case KindPattern:
		if r.Pattern != nil && r.Pattern.MatchString(value) {
			return value
		}
		return nil

	case KindNumeric:
		n, err := cast.ToFloat64E(value)
		if err != nil || !finite(n) {
			return nil
		}
		return n
	}

	return value
}

// finite rejects NaN and the infinities. strconv accepts spellings like
// "NaN" and "Inf", but no count or amount column may carry them: a
// non-finite parse degrades to NULL like any other invalid numeric.
func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
