// Package sources builds the configured upstream integrations.
//
// Each subpackage adapts one upstream shape to reconcile.Source:
//
//   - pagedapi: REST API with page-counter pagination and bearer login.
//   - keysetapi: per-branch REST listing paged by the last product code.
//   - sqlextract: offset-paginated query against an upstream database.
//
// Sources are registered under their client name, which the sync routes and
// the log directories use.
package sources
