package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testDefaults(t *testing.T) Defaults {
	t.Helper()
	return Defaults{
		CompanyID:       1,
		EstablishmentID: 2,
		UserID:          3,
		Location:        time.FixedZone("BRT", -3*3600),
		Now: func() time.Time {
			return time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)
		},
	}
}

func TestDefaults_Today(t *testing.T) {
	d := testDefaults(t)
	today := d.Today()
	// 02:30 UTC is still the previous day in Sao Paulo
	assert.Equal(t, 9, today.Day())
	assert.Equal(t, 0, today.Hour())
}

func TestDefaults_Product(t *testing.T) {
	d := testDefaults(t)

	p := d.Product(10, "", "ARROZ TIPO 1 5KG")
	assert.Equal(t, "ARROZ TIPO 1 5KG", p.Name)
	assert.Equal(t, 1, p.CompanyID)
	assert.Equal(t, 2, p.EstablishmentID)

	p = d.Product(10, "Arroz", "ARROZ TIPO 1 5KG")
	assert.Equal(t, "Arroz", p.Name)
}

func TestDefaults_Prices(t *testing.T) {
	d := testDefaults(t)
	from := time.Date(2024, 3, 1, 15, 0, 0, 0, d.Location)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, d.Location)

	tests := []struct {
		name  string
		price *Price
		typ   CommercialType
		value string
	}{
		{"regular", d.RegularPrice(1, 5, decimal.RequireFromString("10.5")), Regular, "10,50"},
		{"promotional", d.PromotionalPrice(1, 5, decimal.RequireFromString("10.5"), decimal.RequireFromString("8.99"), from, to), Promotional, "10,50!@#8,99"},
		{"promotional without regular", d.PromotionalPrice(1, 5, decimal.Zero, decimal.RequireFromString("8.99"), from, to), Promotional, "8,99"},
		{"promotional zero", d.PromotionalPrice(1, 5, decimal.RequireFromString("10.5"), decimal.Zero, from, to), Promotional, "0,00"},
		{"combo", d.ComboPrice(1, 5, decimal.RequireFromString("4"), 3, decimal.RequireFromString("10"), "Leve 3", from, to), Combo, "4,00!@#3!@#10,00!@#Leve 3"},
		{"combo zero", d.ComboPrice(1, 5, decimal.RequireFromString("4"), 3, decimal.Zero, "Leve 3", from, to), Combo, "0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.price.Type)
			assert.Equal(t, tt.value, tt.price.Value)
			assert.Equal(t, int64(1), tt.price.ProductCode)
			assert.Equal(t, 5, tt.price.BranchID)
			assert.Equal(t, 3, tt.price.UserID)
			assert.Equal(t, "23:30", tt.price.TimeOfDay)
		})
	}
}

func TestDefaults_PromotionalValidity(t *testing.T) {
	d := testDefaults(t)
	from := time.Date(2024, 3, 1, 15, 0, 0, 0, d.Location)
	to := time.Date(2024, 3, 31, 18, 0, 0, 0, d.Location)

	p := d.PromotionalPrice(1, 1, decimal.NewFromInt(5), decimal.NewFromInt(4), from, to)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, d.Location), p.ValidFrom)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, d.Location), p.ValidTo)

	r := d.RegularPrice(1, 1, decimal.NewFromInt(5))
	assert.True(t, r.ValidFrom.Equal(d.Today()))
	assert.True(t, r.ValidTo.Equal(d.Today()))
}

func TestWithoutZero(t *testing.T) {
	keep := &Price{Value: "1,00"}
	out := WithoutZero(&Price{Value: "0,00"}, nil, keep)
	assert.Equal(t, []*Price{keep}, out)
	assert.Empty(t, WithoutZero())
}
