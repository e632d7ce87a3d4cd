package cmd

import (
	"fmt"

	"price-sync/core/config"
	"price-sync/core/database"
	"price-sync/feature/catalog/store"

	"github.com/spf13/cobra"
)

var migrateSchema bool

// schemaCmd checks the catalog tables the writer depends on.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Verify the catalog database schema",
	Long: `Checks that cf_produto, cf_valor and cf_dailyprint exist with every column
the writer uses. With --migrate the missing tables and columns are created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to catalog database: %w", err)
		}
		catalog := store.New(db, nil)

		if migrateSchema {
			if err := catalog.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema migrated.")
		}

		missing, err := catalog.VerifySchema()
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema OK.")
			return nil
		}
		for table, cols := range missing {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: missing %v\n", table, cols)
		}
		return fmt.Errorf("schema has %d incomplete tables", len(missing))
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&migrateSchema, "migrate", false, "Create missing tables and columns")
	RootCmd.AddCommand(schemaCmd)
}
