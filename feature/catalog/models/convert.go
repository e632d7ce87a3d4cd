package models

import (
	"price-sync/core/pricing"
	"price-sync/core/reconcile"
)

// FromProduct converts a canonical product into its row.
func FromProduct(p *reconcile.Product) Product {
	return Product{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		SKU:             p.GTINs,
		Proportion:      p.Packaging,
		Section:         p.Section,
		Group:           p.Group,
		Subgroup:        p.Subgroup,
		CompanyID:       p.CompanyID,
		EstablishmentID: p.EstablishmentID,
	}
}

// FromPrice converts a canonical price into its row. ProductID must be set.
func FromPrice(p *reconcile.Price) Price {
	row := Price{
		ID:             p.ID,
		ProductID:      p.ProductID,
		CommercialType: int(p.Type),
		BranchID:       p.BranchID,
		Values:         p.Value,
		Time:           p.TimeOfDay,
		CompanyID:      p.CompanyID,
		UserID:         p.UserID,
	}
	if !p.ValidFrom.IsZero() {
		row.ValidFrom = p.ValidFrom.Format(pricing.DateLayout)
	}
	if !p.ValidTo.IsZero() {
		row.ValidTo = p.ValidTo.Format(pricing.DateLayout)
	}
	return row
}
