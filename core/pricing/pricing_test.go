package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple", "10.5", "10,50"},
		{"Zero", "0", ZeroValue},
		{"Thousands", "1234.5", "1.234,50"},
		{"Millions", "1234567.891", "1.234.567,89"},
		{"Rounds", "2.999", "3,00"},
		{"Negative", "-45.1", "-45,10"},
		{"Three digits", "999", "999,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "10,50", FormatFloat(10.5))
	assert.Equal(t, "0,10", FormatFloat(0.1))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10,50", "10.5", false},
		{"1.234,50", "1234.5", false},
		{"1234.50", "1234.5", false},
		{" 7 ", "7", false},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero("0,00"))
	assert.False(t, IsZero("0,01"))
	assert.False(t, IsZero("0.00"))
	assert.False(t, IsZero(""))
}

func TestParseDayFirst(t *testing.T) {
	loc := time.UTC

	got, err := ParseDayFirst("05-03-2024", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", FormatDate(got))

	got, err = ParseDayFirst("31/12/2024", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", FormatDate(got))

	_, err = ParseDayFirst("2024-12-31", loc)
	assert.Error(t, err)
}

func TestClock(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	at := time.Date(2024, 3, 5, 15, 4, 59, 0, time.UTC)
	assert.Equal(t, "12:04", Clock(at, loc))
}

func TestCodec(t *testing.T) {
	t.Run("Promotional", func(t *testing.T) {
		v := EncodePromotional("10,50", "8,99")
		assert.Equal(t, "10,50!@#8,99", v)
		assert.Equal(t, Terms{Regular: "10,50", Promotional: "8,99"}, Decode(v))
	})

	t.Run("Promotional without regular", func(t *testing.T) {
		assert.Equal(t, "8,99", EncodePromotional("", "8,99"))
		assert.Equal(t, "8,99", EncodePromotional(ZeroValue, "8,99"))
	})

	t.Run("Combo", func(t *testing.T) {
		v := EncodeCombo("10,50", 3, "27,00", "ARROZ 5KG")
		assert.Equal(t, "10,50!@#3!@#27,00!@#ARROZ 5KG", v)
		assert.Equal(t, Terms{Regular: "10,50", Quantity: 3, Promotional: "27,00", Name: "ARROZ 5KG"}, Decode(v))
	})

	t.Run("Plain", func(t *testing.T) {
		assert.Equal(t, Terms{Regular: "4,20"}, Decode("4,20"))
	})
}
