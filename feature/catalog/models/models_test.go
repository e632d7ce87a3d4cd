package models

import (
	"testing"
	"time"

	"price-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
)

func TestFromPrice(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	p := &reconcile.Price{
		ID:          7,
		ProductID:   3,
		ProductCode: 1001,
		BranchID:    2,
		Type:        reconcile.Promotional,
		Value:       "10,50!@#8,99",
		ValidFrom:   time.Date(2024, 3, 1, 0, 0, 0, 0, loc),
		ValidTo:     time.Date(2024, 3, 31, 0, 0, 0, 0, loc),
		TimeOfDay:   "08:15",
		CompanyID:   1,
		UserID:      4,
	}

	row := FromPrice(p)
	assert.Equal(t, Price{
		ID:             7,
		ProductID:      3,
		CommercialType: 2,
		BranchID:       2,
		ValidFrom:      "2024-03-01",
		ValidTo:        "2024-03-31",
		Values:         "10,50!@#8,99",
		Time:           "08:15",
		CompanyID:      1,
		UserID:         4,
	}, row)

	assert.Empty(t, FromPrice(&reconcile.Price{}).ValidFrom)
}

func TestFromProduct(t *testing.T) {
	row := FromProduct(&reconcile.Product{
		Code: 10, Name: "Arroz", GTINs: "789,790", Packaging: "UN", Section: "MERCEARIA",
	})
	assert.Equal(t, int64(10), row.Code)
	assert.Equal(t, "789,790", row.SKU)
	assert.Equal(t, "UN", row.Proportion)
	assert.Equal(t, "MERCEARIA", row.Section)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "cf_produto", Product{}.TableName())
	assert.Equal(t, "cf_valor", Price{}.TableName())
	assert.Equal(t, "cf_dailyprint", DailyPrint{}.TableName())
	assert.Len(t, Columns, 3)
}
