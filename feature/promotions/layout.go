package promotions

import (
	"strings"

	"price-sync/core/reconcile"
)

// Layout is the poster a promotion item is printed on.
type Layout struct {
	PosterID int
	ReasonID int
	Format   string
	Size     string
}

// sectionProduce gets the larger poster for regular prices.
const sectionProduce = "HORTIFRUTI"

// LayoutFor picks the poster for a price type and product section.
func LayoutFor(t reconcile.CommercialType, section string) Layout {
	switch t {
	case reconcile.Regular:
		if strings.EqualFold(strings.TrimSpace(section), sectionProduce) {
			return Layout{PosterID: 76, ReasonID: 49, Format: "A5 Paisagem", Size: "210/148"}
		}
		return Layout{PosterID: 78, ReasonID: 51, Format: "A6 Paisagem", Size: "148/105"}
	case reconcile.Promotional:
		return Layout{PosterID: 42, ReasonID: 24, Format: "A6 PAISAGEM", Size: "148/105"}
	default:
		return Layout{PosterID: 78, ReasonID: 51, Format: "A6 PAISAGEM", Size: "148/105"}
	}
}
