// Package store implements the reconcile store over the downstream catalog
// tables.
//
// The index is read with a single query joining cf_produto to cf_valor.
// Inserts go through GORM's bulk Create so generated ids flow back to the
// canonical entities. Updates are issued as one statement per chunk with a
// CASE expression per column, keyed by the row id.
package store
