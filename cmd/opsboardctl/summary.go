package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"opsboard/internal/backend"
	"opsboard/internal/core"
	"opsboard/internal/services"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetch the data backend and print the dashboard figures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		registry, store, err := openRegistry(nil)
		if err != nil {
			return err
		}
		endpoint, err := registry.Load(ctx)
		store.Close()
		if err != nil {
			return err
		}

		backendCfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return err
		}
		factory := backend.NewFactory(logger)
		res, err := factory.CreateBackend(ctx, backendCfg, endpoint)
		if err != nil {
			return err
		}
		if res.Cleanup != nil {
			defer res.Cleanup()
		}

		svc := services.NewDashboardService(res.Source, services.DashboardServiceConfig{
			FetchTimeout: cfg.FetchTimeout,
		})
		dash, err := svc.Dashboard(ctx)
		if err != nil {
			return err
		}

		if summaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dash)
		}
		printSummary(cmd.OutOrStdout(), message.NewPrinter(cfg.Locale()), dash)
		return nil
	},
}

func printSummary(out io.Writer, p *message.Printer, dash core.Dashboard) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Components\t%s\n", p.Sprintf("%d", dash.Totals.ComponentCount))
	fmt.Fprintf(tw, "Active projects\t%s\n", p.Sprintf("%d", dash.Totals.ActiveProjectCount))
	fmt.Fprintf(tw, "Suppliers\t%s\n", p.Sprintf("%d", dash.Totals.SupplierCount))
	fmt.Fprintf(tw, "Total project value\t%s %s\n", p.Sprintf("%.2f", dash.Totals.TotalProjectValue), cfg.CurrencySuffix)
	tw.Flush()

	printSeries(out, p, "Components by type", dash.ComponentsByType)
	printSeries(out, p, "Projects by status", dash.ProjectsByStatus)
}

func printSeries(out io.Writer, p *message.Printer, title string, series core.ChartSeries) {
	fmt.Fprintf(out, "\n%s\n", title)
	if len(series) == 0 {
		fmt.Fprintln(out, "  (no data)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range series {
		label := e.Label
		if label == "" {
			label = "(none)"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", label, p.Sprintf("%d", e.Count))
	}
	tw.Flush()
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the dashboard as JSON")
	rootCmd.AddCommand(summaryCmd)
}
