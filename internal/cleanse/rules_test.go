package cleanse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestTrimRule(t *testing.T) {
	rule := Trim()

	require.Equal(t, "widget", rule.Apply("  widget  ", testNow))
	require.Nil(t, rule.Apply("   ", testNow))
	require.Nil(t, rule.Apply("", testNow))
}

func TestBoolTextRule(t *testing.T) {
	rule := BoolText()

	cases := []struct {
		raw  string
		want any
	}{
		{"TRUE", int16(1)},
		{"true", int16(1)},
		{" True ", int16(1)},
		{"FALSE", int16(0)},
		{"false", int16(0)},
		{"", nil},
		{"maybe", nil},
		{"1", nil},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, rule.Apply(tc.raw, testNow), "input %q", tc.raw)
	}
}

func TestBoundedDateRule(t *testing.T) {
	rule := BoundedDate()

	require.Nil(t, rule.Apply("1999-12-31", testNow))
	require.Nil(t, rule.Apply("2025-01-01", testNow), "future dates are invalid")
	require.Nil(t, rule.Apply("not-a-date", testNow))
	require.Nil(t, rule.Apply("", testNow))

	got := rule.Apply("2023-05-01", testNow)
	require.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), got)

	// The floor itself is inside the window.
	require.Equal(t, dateFloor, rule.Apply("2000-01-01", testNow))
	// So is the run reference date.
	require.NotNil(t, rule.Apply("2024-03-15", testNow))
}

func TestNonNegativeRule(t *testing.T) {
	rule := NonNegative()

	require.Nil(t, rule.Apply("-5", testNow))
	require.Equal(t, float64(0), rule.Apply("0", testNow))
	require.Equal(t, 12.5, rule.Apply("12.5", testNow))
	require.Nil(t, rule.Apply("abc", testNow))
	require.Nil(t, rule.Apply("", testNow))
}

func TestNumericRulesRejectNonFiniteValues(t *testing.T) {
	// strconv parses these spellings, but they are never valid amounts.
	for _, raw := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity"} {
		require.Nil(t, NonNegative().Apply(raw, testNow), "NonNegative input %q", raw)
		require.Nil(t, GreaterThan(0).Apply(raw, testNow), "GreaterThan input %q", raw)
		require.Nil(t, AtLeast(1).Apply(raw, testNow), "AtLeast input %q", raw)
		require.Nil(t, Numeric().Apply(raw, testNow), "Numeric input %q", raw)
	}
}

func TestGreaterThanRule(t *testing.T) {
	rule := GreaterThan(0)

	require.Nil(t, rule.Apply("0", testNow))
	require.Nil(t, rule.Apply("-3", testNow))
	require.Equal(t, float64(2), rule.Apply("2", testNow))
}

func TestAtLeastRule(t *testing.T) {
	// Rating scale: anything below 1 is invalid, 1 itself is fine.
	rule := AtLeast(1)

	require.Nil(t, rule.Apply("0.9", testNow))
	require.Equal(t, float64(1), rule.Apply("1", testNow))
	require.Equal(t, 4.7, rule.Apply("4.7", testNow))
}

func TestEnumRule(t *testing.T) {
	rule := Enum("delivered", "pending")

	require.Equal(t, "delivered", rule.Apply("delivered", testNow))
	require.Equal(t, "pending", rule.Apply(" pending ", testNow))
	require.Nil(t, rule.Apply("shipped", testNow))
	require.Nil(t, rule.Apply("Delivered", testNow), "enum match is case-sensitive")
}

func TestIntEnumRule(t *testing.T) {
	rule := IntEnum("0", "1", "2")

	require.Equal(t, int64(0), rule.Apply("0", testNow))
	require.Equal(t, int64(2), rule.Apply("2", testNow))
	require.Nil(t, rule.Apply("7", testNow))
	require.Nil(t, rule.Apply("two", testNow))
}

func TestPatternRule(t *testing.T) {
	rule := Pattern(quarterPattern)

	require.Equal(t, "2019Q2", rule.Apply("2019Q2", testNow))
	require.Nil(t, rule.Apply("2019-Q2", testNow))
	require.Nil(t, rule.Apply("Q22019", testNow))
	require.Nil(t, rule.Apply("19Q2", testNow))
}

func TestNumericRule(t *testing.T) {
	rule := Numeric()

	// No range guard: negative passthrough values survive.
	require.Equal(t, float64(-1), rule.Apply("-1", testNow))
	require.Equal(t, float64(150), rule.Apply("150", testNow))
	require.Nil(t, rule.Apply("n/a", testNow))
}
