package reconcile

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStreamTruncated reports that a source stream ended because a page
	// kept failing, not because the source was exhausted.
	ErrStreamTruncated = errors.New("source stream truncated")

	// ErrMissingProduct reports a price whose product is absent from the index.
	ErrMissingProduct = errors.New("product missing from index")

	// ErrInvalidRecord reports a record that cannot be classified.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrDuplicateKey reports a second record with a key already seen in the batch.
	ErrDuplicateKey = errors.New("duplicate key in batch")
)

// CommercialType distinguishes the price rows kept for one product and branch.
type CommercialType int

const (
	// Regular is the shelf price.
	Regular CommercialType = 1
	// Promotional is an offer price with a validity window.
	Promotional CommercialType = 2
	// Combo is a multi-buy offer. Its value is a composite encoding.
	Combo CommercialType = 9
)

// Valid reports whether t is a known commercial type.
func (t CommercialType) Valid() bool {
	switch t {
	case Regular, Promotional, Combo:
		return true
	default:
		return false
	}
}

func (t CommercialType) String() string {
	switch t {
	case Regular:
		return "regular"
	case Promotional:
		return "promotional"
	case Combo:
		return "combo"
	default:
		return fmt.Sprintf("commercial_type(%d)", int(t))
	}
}

// Product is the canonical catalog entry, keyed by the upstream product code.
type Product struct {
	// Code is the natural key assigned upstream.
	Code int64 `json:"code"`

	// Name is the short display name.
	Name string `json:"name"`

	// Description is the long description.
	Description string `json:"description"`

	// Packaging is the packaging or unit descriptor (e.g. "UN", "KG").
	Packaging string `json:"packaging,omitempty"`

	// GTINs is the deduplicated, comma-joined barcode list.
	GTINs string `json:"gtins,omitempty"`

	// Section, Group and Subgroup are category levels 1 to 3.
	Section  string `json:"section,omitempty"`
	Group    string `json:"group,omitempty"`
	Subgroup string `json:"subgroup,omitempty"`

	CompanyID       int `json:"company_id"`
	EstablishmentID int `json:"establishment_id"`

	// ID is the internal surrogate id, known once matched against the index.
	ID int64 `json:"id,omitempty"`

	// Enriched marks products whose packaging and categories were already fetched.
	Enriched bool `json:"-"`
}

// Key identifies a price row: one per product, branch and commercial type.
type Key struct {
	ProductCode int64
	BranchID    int
	Type        CommercialType
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%s", k.ProductCode, k.BranchID, k.Type)
}

// Price is the canonical price row.
type Price struct {
	ProductCode int64          `json:"product_code"`
	BranchID    int            `json:"branch_id"`
	Type        CommercialType `json:"commercial_type"`

	// Value is the formatted value, composite for promotional and combo rows.
	Value string `json:"value"`

	// ValidFrom and ValidTo bound the validity window (calendar dates).
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`

	// TimeOfDay is the HH:MM stamp of when the price was read.
	TimeOfDay string `json:"time_of_day"`

	CompanyID int `json:"company_id"`
	UserID    int `json:"user_id"`

	// ID is the internal price id. Zero until matched to an existing row.
	ID int64 `json:"id,omitempty"`

	// ProductID is the internal product id. Required before any write.
	ProductID int64 `json:"product_id,omitempty"`
}

// Key returns the matching key of p.
func (p *Price) Key() Key {
	return Key{ProductCode: p.ProductCode, BranchID: p.BranchID, Type: p.Type}
}

// Promotion groups product/price pairs under one campaign.
type Promotion struct {
	Name            string          `json:"name"`
	EstablishmentID int             `json:"establishment_id"`
	CompanyID       int             `json:"company_id"`
	UserID          int             `json:"user_id"`
	Date            time.Time       `json:"date"`
	Items           []PromotionItem `json:"items"`
}

// PromotionItem is one product and its promotional price.
type PromotionItem struct {
	Product *Product `json:"product"`
	Price   *Price   `json:"price"`
}

// Batch is the normalized content of one upstream page.
type Batch struct {
	// Seq is the 1-based position of the page in the stream.
	Seq int `json:"seq"`

	Products   []*Product   `json:"products,omitempty"`
	Prices     []*Price     `json:"prices,omitempty"`
	Promotions []*Promotion `json:"promotions,omitempty"`
}

// Empty reports whether the batch carries nothing to write.
func (b *Batch) Empty() bool {
	return len(b.Products) == 0 && len(b.Prices) == 0 && len(b.Promotions) == 0
}

// Outcome is the final state of one batch.
type Outcome string

const (
	// OutcomeCommitted means the batch transaction committed.
	OutcomeCommitted Outcome = "committed"
	// OutcomeRolledBack means the batch failed and its writes were discarded.
	OutcomeRolledBack Outcome = "rolled_back"
	// OutcomeSkipped means nothing in the batch survived normalization.
	OutcomeSkipped Outcome = "skipped"
)

// BatchResult reports what happened to one batch.
type BatchResult struct {
	RunID     string  `json:"run_id"`
	Source    string  `json:"source"`
	Job       string  `json:"job"`
	Partition string  `json:"partition"`
	Seq       int     `json:"seq"`
	Outcome   Outcome `json:"outcome"`

	ProductsInserted int `json:"products_inserted"`
	ProductsUpdated  int `json:"products_updated"`
	PricesInserted   int `json:"prices_inserted"`
	PricesUpdated    int `json:"prices_updated"`
	Dropped          int `json:"dropped"`
	Projected        int `json:"projected"`

	// Prices lists the rows written by a committed batch.
	Prices []*Price `json:"-"`

	// Batch is kept for rolled back batches so it can be archived.
	Batch *Batch `json:"-"`

	Err error `json:"-"`
}

// RunSummary aggregates the batches of one engine run.
type RunSummary struct {
	RunID     string `json:"run_id"`
	Source    string `json:"source"`
	Job       string `json:"job"`
	Partition string `json:"partition"`

	Batches    int `json:"batches"`
	Committed  int `json:"committed"`
	RolledBack int `json:"rolled_back"`

	ProductsInserted int `json:"products_inserted"`
	ProductsUpdated  int `json:"products_updated"`
	PricesInserted   int `json:"prices_inserted"`
	PricesUpdated    int `json:"prices_updated"`
	RecordsDropped   int `json:"records_dropped"`
	Projected        int `json:"projected"`

	// Truncated is set when the stream ended on retry exhaustion.
	Truncated bool `json:"truncated"`

	Elapsed time.Duration `json:"elapsed"`
}

// Clean reports whether every batch committed and the stream was not truncated.
func (s *RunSummary) Clean() bool {
	return !s.Truncated && s.RolledBack == 0
}

func (s *RunSummary) add(res BatchResult) {
	s.Batches++
	s.RecordsDropped += res.Dropped
	switch res.Outcome {
	case OutcomeCommitted:
		s.Committed++
		s.ProductsInserted += res.ProductsInserted
		s.ProductsUpdated += res.ProductsUpdated
		s.PricesInserted += res.PricesInserted
		s.PricesUpdated += res.PricesUpdated
		s.Projected += res.Projected
	case OutcomeRolledBack:
		s.RolledBack++
		// products created in their own sub-transaction stay committed
		s.ProductsInserted += res.ProductsInserted
	}
}
