// Package database opens the downstream catalog database and inspects its
// schema.
//
// Connect wraps GORM and picks the dialector from the configured driver:
// MySQL for production, SQLite for local runs and tests.
//
// GetTableColumns and MissingColumns let the schema command verify that the
// catalog tables carry every column the writer touches.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	missing, err := database.MissingColumns(db, "cf_valor", []string{"vlr_id", "vlr_valores"})
package database
