package reconcile

import (
	"fmt"

	"price-sync/core/pricing"
)

// Rejection is a record dropped during classification.
type Rejection struct {
	// ProductCode is the natural key of the dropped record.
	ProductCode int64
	// Key is the composite key for prices, empty for products.
	Key string
	// Err tells why the record was dropped.
	Err error
}

// ProductDiff partitions a batch of products against an index.
type ProductDiff struct {
	New      []*Product
	Existing []*Product
	Rejected []Rejection
}

// PriceDiff partitions a batch of prices against an index.
type PriceDiff struct {
	New      []*Price
	Existing []*Price
	Rejected []Rejection
}

// DiffProducts classifies products: existing iff the code is in the index.
// Existing products are stamped with their internal id. A code seen twice is
// rejected after the first occurrence.
func DiffProducts(products []*Product, index Index) ProductDiff {
	var diff ProductDiff
	seen := make(map[int64]struct{}, len(products))

	for _, p := range products {
		if err := validateProduct(p); err != nil {
			diff.Rejected = append(diff.Rejected, Rejection{ProductCode: productCode(p), Err: err})
			continue
		}
		if _, dup := seen[p.Code]; dup {
			diff.Rejected = append(diff.Rejected, Rejection{
				ProductCode: p.Code,
				Err:         fmt.Errorf("%w: product %d", ErrDuplicateKey, p.Code),
			})
			continue
		}
		seen[p.Code] = struct{}{}

		if entry, ok := index[p.Code]; ok {
			p.ID = entry.ProductID
			diff.Existing = append(diff.Existing, p)
			continue
		}
		p.ID = 0
		diff.New = append(diff.New, p)
	}
	return diff
}

// DiffPrices classifies prices. A price is existing iff its product is in the
// index and has a row with the same branch and commercial type; the first such
// row wins. New prices only get the product id. Prices whose product is not in
// the index are rejected with ErrMissingProduct.
func DiffPrices(prices []*Price, index Index) PriceDiff {
	var diff PriceDiff
	seen := make(map[Key]struct{}, len(prices))

	for _, p := range prices {
		if err := validatePrice(p); err != nil {
			rej := Rejection{Err: err}
			if p != nil {
				rej.ProductCode = p.ProductCode
				rej.Key = p.Key().String()
			}
			diff.Rejected = append(diff.Rejected, rej)
			continue
		}

		key := p.Key()
		if _, dup := seen[key]; dup {
			diff.Rejected = append(diff.Rejected, Rejection{
				ProductCode: p.ProductCode,
				Key:         key.String(),
				Err:         fmt.Errorf("%w: price %s", ErrDuplicateKey, key),
			})
			continue
		}
		seen[key] = struct{}{}

		entry, ok := index[p.ProductCode]
		if !ok {
			diff.Rejected = append(diff.Rejected, Rejection{
				ProductCode: p.ProductCode,
				Key:         key.String(),
				Err:         fmt.Errorf("%w: product %d", ErrMissingProduct, p.ProductCode),
			})
			continue
		}

		p.ProductID = entry.ProductID
		if ref, found := entry.Find(p.BranchID, p.Type); found {
			p.ID = ref.ID
			diff.Existing = append(diff.Existing, p)
			continue
		}
		p.ID = 0
		diff.New = append(diff.New, p)
	}
	return diff
}

func validateProduct(p *Product) error {
	if p == nil {
		return fmt.Errorf("%w: nil product", ErrInvalidRecord)
	}
	if p.Code <= 0 {
		return fmt.Errorf("%w: product code %d", ErrInvalidRecord, p.Code)
	}
	return nil
}

func validatePrice(p *Price) error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: nil price", ErrInvalidRecord)
	case p.ProductCode <= 0:
		return fmt.Errorf("%w: product code %d", ErrInvalidRecord, p.ProductCode)
	case p.BranchID < 0:
		return fmt.Errorf("%w: branch %d", ErrInvalidRecord, p.BranchID)
	case !p.Type.Valid():
		return fmt.Errorf("%w: %s", ErrInvalidRecord, p.Type)
	case p.Value == "":
		return fmt.Errorf("%w: empty value", ErrInvalidRecord)
	case pricing.IsZero(p.Value):
		return fmt.Errorf("%w: zero value", ErrInvalidRecord)
	}
	return nil
}

func productCode(p *Product) int64 {
	if p == nil {
		return 0
	}
	return p.Code
}
