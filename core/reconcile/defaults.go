package reconcile

import (
	"time"

	"price-sync/core/pricing"

	"github.com/shopspring/decimal"
)

// Defaults are the values stamped on every entity a source normalizes.
type Defaults struct {
	CompanyID       int
	EstablishmentID int
	UserID          int

	// Location is the time zone of validity dates and time-of-day stamps.
	Location *time.Location

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

func (d Defaults) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Defaults) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

// Today returns the current calendar date at midnight in the configured zone.
func (d Defaults) Today() time.Time {
	return d.Date(d.now())
}

// Date truncates t to its calendar date in the configured zone.
func (d Defaults) Date(t time.Time) time.Time {
	loc := d.location()
	y, m, day := t.In(loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// Product builds a product. The description stands in for a missing name.
func (d Defaults) Product(code int64, name, description string) *Product {
	if name == "" {
		name = description
	}
	return &Product{
		Code:            code,
		Name:            name,
		Description:     description,
		CompanyID:       d.CompanyID,
		EstablishmentID: d.EstablishmentID,
	}
}

// RegularPrice builds a shelf price valid today.
func (d Defaults) RegularPrice(code int64, branchID int, value decimal.Decimal) *Price {
	today := d.Today()
	return d.price(code, branchID, Regular, pricing.Format(value), today, today)
}

// PromotionalPrice builds an offer price. A zero regular price stores the
// promotional value alone; a zero promotional price yields the zero value so
// the price is filtered out.
func (d Defaults) PromotionalPrice(code int64, branchID int, regular, promotional decimal.Decimal, from, to time.Time) *Price {
	value := pricing.ZeroValue
	if !promotional.IsZero() {
		reg := ""
		if !regular.IsZero() {
			reg = pricing.Format(regular)
		}
		value = pricing.EncodePromotional(reg, pricing.Format(promotional))
	}
	return d.price(code, branchID, Promotional, value, d.Date(from), d.Date(to))
}

// ComboPrice builds a multi-buy price: quantity units for the promotional total.
func (d Defaults) ComboPrice(code int64, branchID int, regular decimal.Decimal, quantity int, promotional decimal.Decimal, name string, from, to time.Time) *Price {
	value := pricing.ZeroValue
	if !promotional.IsZero() {
		value = pricing.EncodeCombo(pricing.Format(regular), quantity, pricing.Format(promotional), name)
	}
	return d.price(code, branchID, Combo, value, d.Date(from), d.Date(to))
}

func (d Defaults) price(code int64, branchID int, t CommercialType, value string, from, to time.Time) *Price {
	return &Price{
		ProductCode: code,
		BranchID:    branchID,
		Type:        t,
		Value:       value,
		ValidFrom:   from,
		ValidTo:     to,
		TimeOfDay:   pricing.Clock(d.now(), d.location()),
		CompanyID:   d.CompanyID,
		UserID:      d.UserID,
	}
}

// WithoutZero drops prices whose value is the formatted zero.
func WithoutZero(prices ...*Price) []*Price {
	out := prices[:0:0]
	for _, p := range prices {
		if p != nil && !pricing.IsZero(p.Value) {
			out = append(out, p)
		}
	}
	return out
}
