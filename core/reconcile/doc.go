// Package reconcile brings a downstream catalog of products and prices in
// line with an upstream source, one page at a time.
//
// A run reads the source through a Reader, normalizes each page into a Batch
// of canonical products, prices and promotions, enriches the products, and
// diffs the batch against an Index of what already exists downstream. The
// resulting inserts and updates are written in a single transaction per
// batch. A failing batch is rolled back and skipped; the run continues with
// the next page.
//
// Products are matched by code. Prices are matched by product, branch and
// commercial type, so a regular and a promotional price of the same product
// and branch never overwrite each other.
//
// Sources plug in through Pipeline: a PageFetcher, a Normalizer and the
// optional Enricher, ProductResolver and Projector. Storage plugs in through
// Store and Tx.
package reconcile
