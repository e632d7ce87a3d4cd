// Package pagedapi reads an ERP REST API paginated with a page counter.
//
// The source supports the products, prices and promotions jobs. It
// authenticates with a bearer token, enriches products with their sale
// packagings and category path, and resolves products that prices reference
// but the catalog does not hold yet. Promotions are read per active branch,
// one partition per branch.
package pagedapi
