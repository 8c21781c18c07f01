package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"opsboard/internal/amqp"
	"opsboard/internal/settings"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show or change the data backend endpoint",
}

var endpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored endpoint and its state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, store, err := openRegistry(nil)
		if err != nil {
			return err
		}
		defer store.Close()

		endpoint, err := registry.Load(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "state:   %s\n", endpoint.State())
		if endpoint.Configured() {
			fmt.Fprintf(out, "url:     %s\n", endpoint.URL)
		}
		fmt.Fprintf(out, "backend: %s\n", cfg.DataBackend)
		return nil
	},
}

var endpointSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Store a new endpoint",
	Long: `Store a new endpoint. The value is saved exactly as given; an empty string
clears it. When AMQP_URL is set the change is published so running servers pick it
up, otherwise they must be restarted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		var (
			opts      []settings.Option
			broadcast *publishOutcome
		)
		if cfg.AMQPURL != "" {
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				logger.Warn("AMQP unavailable, change will not be broadcast", "error", err)
			} else {
				defer client.Close()
				broadcast = &publishOutcome{next: client}
				opts = append(opts, settings.WithNotifier(broadcast))
			}
		}

		registry, store, err := openRegistry(nil, opts...)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := registry.Save(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(out, "endpoint %s\n", settings.Endpoint{URL: args[0]}.State())
		switch {
		case broadcast == nil:
			fmt.Fprintln(out, "restart running servers to apply the change")
		case broadcast.err != nil:
			fmt.Fprintf(out, "publish failed: %v\n", broadcast.err)
			fmt.Fprintln(out, "restart running servers to apply the change")
		default:
			fmt.Fprintln(out, "change published to running servers")
		}
		return nil
	},
}

// publishOutcome remembers the result of the broadcast the registry performs after a
// save, which the registry itself only logs.
type publishOutcome struct {
	next settings.Notifier
	err  error
}

func (p *publishOutcome) EndpointChanged(ctx context.Context, url string) error {
	p.err = p.next.EndpointChanged(ctx, url)
	return p.err
}

func init() {
	endpointCmd.AddCommand(endpointShowCmd)
	endpointCmd.AddCommand(endpointSetCmd)
	rootCmd.AddCommand(endpointCmd)
}
