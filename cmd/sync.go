package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"price-sync/core/reconcile"

	"github.com/spf13/cobra"
)

// syncCmd runs one job without the HTTP server.
var syncCmd = &cobra.Command{
	Use:   "sync <source> <job>",
	Short: "Run one sync job and print its report",
	Long: `Runs a job for a configured source and prints the run report as JSON.

Jobs: products, prices, catalog, promotions. Use "sources" to see which jobs a
source supports.

Examples:
  price-sync sync arroz prices
  price-sync sync america catalog`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		report, err := rt.service.Run(ctx, args[0], args[1])
		if report != nil {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
		if err != nil {
			return err
		}
		if !report.Success {
			return fmt.Errorf("run %s finished with failures", report.RunID)
		}
		return nil
	},
}

// sourcesCmd lists the configured sources.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and their jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		infos := rt.service.Sources()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sources enabled.")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %v\n", info.Name, info.Jobs)
		}
		return nil
	},
}

// jobsCmd prints the job names the engine understands.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job names",
	Run: func(cmd *cobra.Command, args []string) {
		for _, job := range []string{reconcile.JobProducts, reconcile.JobPrices, reconcile.JobCatalog, reconcile.JobPromotions} {
			fmt.Fprintln(cmd.OutOrStdout(), job)
		}
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
	RootCmd.AddCommand(sourcesCmd)
	RootCmd.AddCommand(jobsCmd)
}
