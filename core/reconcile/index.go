package reconcile

// PriceRef is an existing price row as seen by the index.
type PriceRef struct {
	ID       int64
	BranchID int
	Type     CommercialType
}

// IndexEntry is the downstream state of one product.
type IndexEntry struct {
	ProductID int64
	Section   string
	Group     string
	Subgroup  string
	Prices    []PriceRef
}

// Find returns the first price row with the given branch and commercial type.
func (e *IndexEntry) Find(branchID int, t CommercialType) (PriceRef, bool) {
	for _, ref := range e.Prices {
		if ref.BranchID == branchID && ref.Type == t {
			return ref, true
		}
	}
	return PriceRef{}, false
}

// Index maps product codes to their downstream state. It is a read-only
// snapshot taken for one batch.
type Index map[int64]*IndexEntry

// Has reports whether code exists downstream.
func (ix Index) Has(code int64) bool {
	_, ok := ix[code]
	return ok
}

// Missing returns the codes absent from the index, in input order.
func (ix Index) Missing(codes []int64) []int64 {
	var missing []int64
	for _, code := range codes {
		if !ix.Has(code) {
			missing = append(missing, code)
		}
	}
	return missing
}

// Merge copies the entries of other into ix, replacing existing ones.
func (ix Index) Merge(other Index) {
	for code, entry := range other {
		ix[code] = entry
	}
}

// Codes returns the deduplicated, positive product codes referenced by
// products and prices, in first-seen order.
func Codes(products []*Product, prices []*Price) []int64 {
	seen := make(map[int64]struct{}, len(products)+len(prices))
	codes := make([]int64, 0, len(products)+len(prices))
	add := func(code int64) {
		if code <= 0 {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	for _, p := range products {
		if p != nil {
			add(p.Code)
		}
	}
	for _, p := range prices {
		if p != nil {
			add(p.ProductCode)
		}
	}
	return codes
}
