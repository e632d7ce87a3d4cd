package store

import (
	"fmt"
	"sort"

	"price-sync/core/database"
	"price-sync/feature/catalog/models"
)

// VerifySchema reports, per table, the columns the writer needs but the
// database lacks. An empty map means the schema is usable.
func (s *Store) VerifySchema() (map[string][]string, error) {
	tables := make([]string, 0, len(models.Columns))
	for table := range models.Columns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	report := map[string][]string{}
	for _, table := range tables {
		missing, err := database.MissingColumns(s.db, table, models.Columns[table])
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
		}
		if len(missing) > 0 {
			report[table] = missing
		}
	}
	return report, nil
}

// Migrate creates or alters the catalog tables. Used for local sqlite runs.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&models.Product{}, &models.Price{}, &models.DailyPrint{})
}
