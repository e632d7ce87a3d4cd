package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ZeroValue is the formatted zero price. Rows carrying it are never written.
	ZeroValue = "0,00"

	// DateLayout is the layout of validity dates in the price table.
	DateLayout = "2006-01-02"

	// ClockLayout is the layout of the time-of-day stamp.
	ClockLayout = "15:04"
)

var dayFirstLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02/01/2006 15:04:05",
	"02-01-2006 15:04:05",
}

// Format renders d in pt-BR notation with two fraction digits.
func Format(d decimal.Decimal) string {
	d = d.Round(2)
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatFloat is Format for upstream values decoded as float64.
func FormatFloat(f float64) string {
	return Format(decimal.NewFromFloat(f))
}

// Parse reads a price written either in pt-BR notation ("1.234,50") or with a
// dot as decimal separator ("1234.50").
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}

// IsZero reports whether value is the formatted zero price. The comparison is
// on the string, so "0,0" or "0.00" are not considered zero.
func IsZero(value string) bool {
	return value == ZeroValue
}

// ParseDayFirst parses a day-first date such as "31/12/2024" or "31-12-2024"
// in loc.
func ParseDayFirst(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid day-first date %q", s)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Clock renders the time of day of t in loc as HH:MM.
func Clock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(ClockLayout)
}
