package reconcile

import "context"

// Job names understood by the engine and the sources.
const (
	// JobProducts reconciles catalog entries only.
	JobProducts = "products"
	// JobPrices reconciles prices, creating missing products first.
	JobPrices = "prices"
	// JobCatalog reconciles products together with their prices.
	JobCatalog = "catalog"
	// JobPromotions reconciles promotional prices and projects them for printing.
	JobPromotions = "promotions"
)

// RawRecord is one upstream record, in whatever shape the source decodes it.
type RawRecord any

// Cursor locates a page in an upstream stream. Sources use the field that
// matches their pagination style.
type Cursor struct {
	// Page is a 1-based page counter.
	Page int
	// Offset is a row offset.
	Offset int
	// After is the last key seen on the previous page.
	After int64
}

// Page is one fetched page of raw records.
type Page struct {
	// Records holds the raw records. An empty slice ends the stream.
	Records []RawRecord
	// Next is the cursor of the following page.
	Next Cursor
	// HasMore is false when the source reports this is the last page.
	HasMore bool
}

// PageFetcher is the transport boundary of a source.
type PageFetcher interface {
	// FetchPage fetches the page at cursor holding at most size records.
	// Errors are treated as transient and the same cursor is retried.
	FetchPage(ctx context.Context, cursor Cursor, size int) (Page, error)
}

// FetcherFunc adapts a function to PageFetcher.
type FetcherFunc func(ctx context.Context, cursor Cursor, size int) (Page, error)

// FetchPage calls f(ctx, cursor, size).
func (f FetcherFunc) FetchPage(ctx context.Context, cursor Cursor, size int) (Page, error) {
	return f(ctx, cursor, size)
}

// Normalized is what one raw record maps to.
type Normalized struct {
	Products   []*Product
	Prices     []*Price
	Promotions []*Promotion
}

// Normalizer maps raw records into canonical entities.
// Implementations must be pure: no I/O and no downstream access.
type Normalizer interface {
	// Normalize maps one raw record. An error drops the record only.
	Normalize(raw RawRecord) (Normalized, error)
}

// NormalizerFunc adapts a function to Normalizer.
type NormalizerFunc func(raw RawRecord) (Normalized, error)

// Normalize calls f(raw).
func (f NormalizerFunc) Normalize(raw RawRecord) (Normalized, error) {
	return f(raw)
}

// Packaging is one sale packaging of a product.
type Packaging struct {
	// GTIN is the barcode of the packaging.
	GTIN string
	// Unit is the packaging descriptor (e.g. "UN", "CX12").
	Unit string
	// Active reports whether the packaging is currently sold.
	Active bool
}

// CategoryLevel is one level of a product's category path.
type CategoryLevel struct {
	// Level is 1 for section, 2 for group and 3 for subgroup.
	Level int
	// Description is the category name.
	Description string
}

// Enricher fetches per-product data that pages do not carry.
type Enricher interface {
	// FetchPackaging returns the sale packagings of the product.
	FetchPackaging(ctx context.Context, code int64) ([]Packaging, error)

	// FetchCategories returns the category path of the product.
	FetchCategories(ctx context.Context, code int64) ([]CategoryLevel, error)
}

// ProductResolver looks up products referenced by prices but absent from both
// the batch and the downstream store.
type ProductResolver interface {
	// ResolveProducts fetches the products with the given codes.
	// Codes unknown upstream are silently omitted.
	ResolveProducts(ctx context.Context, codes []int64) ([]*Product, error)
}

// Tx is the write side of the downstream store, bound to one transaction.
// None of its methods commit or roll back on their own.
type Tx interface {
	// LoadIndex reads the index inside the transaction.
	LoadIndex(ctx context.Context, codes []int64) (Index, error)

	// InsertProducts bulk-inserts new products and sets their ID.
	InsertProducts(ctx context.Context, products []*Product) error

	// UpdateProducts bulk-updates products matched by ID.
	UpdateProducts(ctx context.Context, products []*Product) error

	// InsertPrices bulk-inserts new prices.
	InsertPrices(ctx context.Context, prices []*Price) error

	// UpdatePrices bulk-updates prices matched by ID.
	UpdatePrices(ctx context.Context, prices []*Price) error

	Commit() error
	Rollback() error
}

// Store is the downstream store.
type Store interface {
	// LoadIndex returns the index for codes. An empty set returns an empty
	// index without querying.
	LoadIndex(ctx context.Context, codes []int64) (Index, error)

	// Begin opens a transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Projector derives extra rows from a batch inside its transaction.
type Projector interface {
	// Project runs after the batch writes and before commit.
	// It returns the number of rows it wrote.
	Project(ctx context.Context, tx Tx, batch *Batch) (int, error)
}

// Observer is notified of batch outcomes. It must not fail the batch.
type Observer interface {
	// BatchDone is called once per batch, after commit or rollback.
	BatchDone(ctx context.Context, res BatchResult)

	// StreamTruncated is called when a run stops on retry exhaustion.
	StreamTruncated(ctx context.Context, summary RunSummary, err error)
}

// Pipeline is the source-specific part of an engine run.
type Pipeline struct {
	// Fetcher reads pages. Required.
	Fetcher PageFetcher
	// Start is the cursor of the first page.
	Start Cursor
	// Normalizer maps raw records. Required.
	Normalizer Normalizer
	// Enricher fetches packaging and categories. Optional.
	Enricher Enricher
	// Resolver fetches missing products referenced by prices. Optional.
	Resolver ProductResolver
	// Projector derives rows after the batch writes. Optional.
	Projector Projector
}

// Partition is one independent upstream stream of a job, usually a branch.
type Partition struct {
	// Name identifies the partition in logs and reports.
	Name string `json:"name"`
	// BranchID is the branch the partition is scoped to, zero for all.
	BranchID int `json:"branch_id,omitempty"`
}

// AllPartition is the single partition of sources that are not split.
var AllPartition = Partition{Name: "all"}

// Source is a configured upstream integration.
type Source interface {
	// Name is the client name, used in routes, log paths and reports.
	Name() string

	// Jobs lists the jobs the source supports.
	Jobs() []string

	// Login authenticates against the upstream. Failure aborts the run.
	Login(ctx context.Context) error

	// Partitions lists the independent streams of job.
	Partitions(ctx context.Context, job string) ([]Partition, error)

	// Pipeline builds the pipeline reading job for one partition.
	Pipeline(job string, partition Partition) (Pipeline, error)
}

// Supports reports whether src supports job.
func Supports(src Source, job string) bool {
	for _, j := range src.Jobs() {
		if j == job {
			return true
		}
	}
	return false
}
