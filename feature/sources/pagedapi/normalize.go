package pagedapi

import (
	"fmt"
	"strings"
	"time"

	"price-sync/core/pricing"
	"price-sync/core/reconcile"

	"github.com/shopspring/decimal"
)

var isoLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"}

func (s *Source) normalizeProduct(raw reconcile.RawRecord) (reconcile.Normalized, error) {
	p, ok := raw.(productDTO)
	if !ok {
		return reconcile.Normalized{}, fmt.Errorf("%w: unexpected %T", reconcile.ErrInvalidRecord, raw)
	}
	product := s.defaults.Product(p.ID, strings.TrimSpace(p.GenericName), strings.TrimSpace(p.FullName))
	return reconcile.Normalized{Products: []*reconcile.Product{product}}, nil
}

func (s *Source) normalizePrice(raw reconcile.RawRecord) (reconcile.Normalized, error) {
	p, ok := raw.(priceDTO)
	if !ok {
		return reconcile.Normalized{}, fmt.Errorf("%w: unexpected %T", reconcile.ErrInvalidRecord, raw)
	}
	price := s.defaults.RegularPrice(p.ProductID, p.Branch, decimal.NewFromFloat(p.Price))
	return reconcile.Normalized{Prices: []*reconcile.Price{price}}, nil
}

// normalizePromotion maps one branch promotion. Items sold by more than one
// unit become combo prices; the others become promotional prices.
func (s *Source) normalizePromotion(raw reconcile.RawRecord) (reconcile.Normalized, error) {
	bp, ok := raw.(branchPromotion)
	if !ok {
		return reconcile.Normalized{}, fmt.Errorf("%w: unexpected %T", reconcile.ErrInvalidRecord, raw)
	}
	promo := bp.Promotion
	from := s.parseDate(promo.Start)
	to := s.parseDate(promo.End)

	out := &reconcile.Promotion{
		Name:            strings.TrimSpace(promo.Description),
		EstablishmentID: bp.Branch,
		CompanyID:       s.defaults.CompanyID,
		UserID:          s.defaults.UserID,
		Date:            s.defaults.Date(from),
	}
	for _, it := range promo.Items {
		product := s.defaults.Product(it.ProductID, "", strings.TrimSpace(it.Product.FullName))
		regular := decimal.NewFromFloat(it.RegularPrice)
		offer := decimal.NewFromFloat(it.Price)

		var price *reconcile.Price
		if it.Quantity > 1 {
			price = s.defaults.ComboPrice(it.ProductID, bp.Branch, regular, it.Quantity, offer, product.Description, from, to)
		} else {
			price = s.defaults.PromotionalPrice(it.ProductID, bp.Branch, regular, offer, from, to)
		}
		out.Items = append(out.Items, reconcile.PromotionItem{Product: product, Price: price})
	}
	return reconcile.Normalized{Promotions: []*reconcile.Promotion{out}}, nil
}

// parseDate reads an ISO date. Missing or malformed dates mean today.
func (s *Source) parseDate(v string) time.Time {
	loc := s.defaults.Location
	if loc == nil {
		loc = time.Local
	}
	v = strings.TrimSpace(v)
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t
		}
	}
	if t, err := pricing.ParseDayFirst(v, loc); err == nil {
		return t
	}
	return s.defaults.Today()
}
