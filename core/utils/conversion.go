package utils

import (
	"fmt"
	"strconv"
	"strings"

	"price-sync/core/pricing"

	"github.com/shopspring/decimal"
)

// ToInt64 converts the values database drivers and JSON decoders produce to
// int64. Unparseable input yields zero.
func ToInt64(val any) int64 {
	switch v := val.(type) {
	case nil:
		return 0
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	default:
		return parseInt(fmt.Sprintf("%v", v))
	}
}

// ToInt is ToInt64 narrowed to int.
func ToInt(val any) int {
	return int(ToInt64(val))
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// numeric columns sometimes arrive as "123.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// ToString converts various types to a trimmed string. nil becomes "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToDecimal converts a numeric value to a decimal. Strings may use either
// pt-BR ("1.234,50") or dot notation. Unparseable input yields zero.
func ToDecimal(val any) decimal.Decimal {
	switch v := val.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string, []byte:
		s := ToString(v)
		if s == "" {
			return decimal.Zero
		}
		d, err := pricing.Parse(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		d, err := pricing.Parse(fmt.Sprintf("%v", v))
		if err != nil {
			return decimal.Zero
		}
		return d
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true), and the strings "1", "true" and "S".
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int64, int32, uint32, uint64:
		return ToInt64(v) == 1
	case string, []byte:
		s := strings.ToLower(ToString(v))
		return s == "1" || s == "true" || s == "s"
	default:
		return false
	}
}
