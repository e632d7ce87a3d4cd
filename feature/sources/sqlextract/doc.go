// Package sqlextract reads products and prices straight from an upstream
// database.
//
// The extract query is configured per deployment. It receives the page size
// and the row offset as its two parameters and selects the columns named by
// the Col constants. Postgres, MySQL and SQL Server drivers are registered;
// placeholders follow the driver, so a SQL Server query reads
//
//	SELECT ... ORDER BY code OFFSET @p2 ROWS FETCH NEXT @p1 ROWS ONLY
package sqlextract
