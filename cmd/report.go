package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/output"
	"github.com/chrisdamba/retailiq/internal/reports"
)

var (
	exportReport bool
	forecastDays int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute a report and print it as JSON",
}

func reportCommand(use, kind, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, a *app, args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := run(cmd, a, args)
			if err != nil {
				return err
			}
			if err := printJSON(result); err != nil {
				return err
			}
			if exportReport {
				return export(kind, result)
			}
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func export(kind string, v any) error {
	dest, err := output.NewDestination(cfg, log)
	if err != nil {
		return err
	}
	dispatcher := output.NewDispatcher(dest, analytics.SystemClock, log)
	if err := dispatcher.ExportReport(kind, v); err != nil {
		dest.Close()
		return err
	}
	return dest.Close()
}

func init() {
	reportCmd.PersistentFlags().BoolVar(&exportReport, "export", false, "also write the report to the configured output destination")

	forecastCmd := reportCommand("forecast <productId>", reports.KindForecast, "Simulate daily demand and stock for one product", cobra.ExactArgs(1),
		func(cmd *cobra.Command, a *app, args []string) (any, error) {
			if forecastDays < 0 {
				return nil, fmt.Errorf("--days must not be negative")
			}
			return a.reporter.Forecast(cmd.Context(), args[0], forecastDays)
		})
	forecastCmd.Flags().IntVar(&forecastDays, "days", 0, "forecast horizon in days (default analytics.forecast_days)")

	reportCmd.AddCommand(
		reportCommand("revenue", reports.KindRevenue, "Revenue, margin and trend metrics", cobra.NoArgs,
			func(cmd *cobra.Command, a *app, _ []string) (any, error) { return a.reporter.Revenue(cmd.Context()) }),
		reportCommand("customers", reports.KindCustomers, "Portfolio customer intelligence", cobra.NoArgs,
			func(cmd *cobra.Command, a *app, _ []string) (any, error) { return a.reporter.Customers(cmd.Context()) }),
		reportCommand("customer <customerId>", reports.KindCustomer, "Metrics for one customer", cobra.ExactArgs(1),
			func(cmd *cobra.Command, a *app, args []string) (any, error) {
				return a.reporter.Customer(cmd.Context(), args[0])
			}),
		reportCommand("retention", reports.KindRetention, "Retention campaign targeting lists", cobra.NoArgs,
			func(cmd *cobra.Command, a *app, _ []string) (any, error) { return a.reporter.Retention(cmd.Context()) }),
		reportCommand("inventory", reports.KindInventory, "Stockout risk, reorder and supplier analytics", cobra.NoArgs,
			func(cmd *cobra.Command, a *app, _ []string) (any, error) { return a.reporter.Inventory(cmd.Context()) }),
		forecastCmd,
	)
	rootCmd.AddCommand(reportCmd)
}
