package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Money is an exact signed count of copper, the smallest currency unit.
// One silver is 100 copper, one gold is 100 silver and one platinum is
// 100 gold. Money values are immutable; arithmetic returns new values.
type Money int64

const (
	OnePlatinum Money = 1000000
	OneGold     Money = 10000
	OneSilver   Money = 100
	OneCopper   Money = 1
)

// denominationRe matches the "1p2g30s5c" notation. Each component is
// optional but a denomination letter must carry at least one digit.
var denominationRe = regexp.MustCompile(`(?i)^(-)?(?:(\d+)p)?(?:(\d+)g)?(?:(\d+)s)?(?:(\d+)c)?$`)

var hasDenominationRe = regexp.MustCompile(`(?i)p|g|s|c`)

// ParseError reports a money representation that could not be parsed.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("money: cannot parse %q", e.Input)
}

// Parse parses a money representation such as "1p2g30s5c", "30s20c" or
// "-5g". Input containing none of the denomination letters is parsed as a
// plain signed integer of copper.
func Parse(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &ParseError{Input: s}
	}

	if !hasDenominationRe.MatchString(trimmed) {
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, &ParseError{Input: s}
		}
		return Money(v), nil
	}

	m := denominationRe.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, &ParseError{Input: s}
	}

	var total Money
	for i, unit := range []Money{OnePlatinum, OneGold, OneSilver, OneCopper} {
		digits := m[i+2]
		if digits == "" {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, &ParseError{Input: s}
		}
		// Reject component values that do not fit rather than wrapping.
		if n > math.MaxInt64/int64(unit) {
			return 0, &ParseError{Input: s}
		}
		component := Money(n) * unit
		if total > Money(math.MaxInt64)-component {
			return 0, &ParseError{Input: s}
		}
		total += component
	}

	if m[1] == "-" {
		total = -total
	}

	return total, nil
}

// TryParse is the fallible variant of Parse, reporting success instead of
// returning an error. Failed parses yield zero.
func TryParse(s string) (Money, bool) {
	m, err := Parse(s)
	if err != nil {
		return 0, false
	}
	return m, true
}

// MustParse parses s or panics. For configuration defaults and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return m - other
}

// Neg returns the value with its sign flipped.
func (m Money) Neg() Money {
	return -m
}

// MulInt returns the value multiplied by a scalar.
func (m Money) MulInt(n int64) Money {
	return m * Money(n)
}

// IsNegative reports whether the value is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

func (m Money) abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// Platinum returns the platinum component of the denomination breakdown.
func (m Money) Platinum() int64 {
	return int64(m.abs() / OnePlatinum)
}

// Gold returns the gold component of the denomination breakdown.
func (m Money) Gold() int64 {
	return int64(m.abs() % OnePlatinum / OneGold)
}

// Silver returns the silver component of the denomination breakdown.
func (m Money) Silver() int64 {
	return int64(m.abs() % OneGold / OneSilver)
}

// Copper returns the copper component of the denomination breakdown.
func (m Money) Copper() int64 {
	return int64(m.abs() % OneSilver)
}

// String renders the compact "pgsc" form. Higher denominations are emitted
// only when non-zero; the copper component is always present, so zero
// renders as "0c". Negative values carry a leading minus.
func (m Money) String() string {
	var sb strings.Builder

	if m < 0 {
		sb.WriteString("-")
	}
	if p := m.Platinum(); p > 0 {
		fmt.Fprintf(&sb, "%dp", p)
	}
	if g := m.Gold(); g > 0 {
		fmt.Fprintf(&sb, "%dg", g)
	}
	if s := m.Silver(); s > 0 {
		fmt.Fprintf(&sb, "%ds", s)
	}
	fmt.Fprintf(&sb, "%dc", m.Copper())

	return sb.String()
}

// LongString renders the verbose English form, e.g.
// "1 plat 2 gold 30 silver 5 copper". Zero-valued higher denominations are
// omitted; copper appears when non-zero or when the whole value is zero.
// The minus sign is emitted only when showSign is set.
func (m Money) LongString(showSign bool) string {
	var parts []string

	if p := m.Platinum(); p > 0 {
		parts = append(parts, fmt.Sprintf("%d plat", p))
	}
	if g := m.Gold(); g > 0 {
		parts = append(parts, fmt.Sprintf("%d gold", g))
	}
	if s := m.Silver(); s > 0 {
		parts = append(parts, fmt.Sprintf("%d silver", s))
	}
	if c := m.Copper(); c > 0 || m == 0 {
		parts = append(parts, fmt.Sprintf("%d copper", c))
	}

	out := strings.Join(parts, " ")
	if m < 0 && showSign {
		out = "-" + out
	}
	return out
}
