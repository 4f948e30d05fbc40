// Command epwctl decodes EnergyPlus weather files, derives comfort metrics
// from them and serves the results over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "epwctl",
		Short: "EnergyPlus weather file toolkit",
		Long: `epwctl reads EnergyPlus weather (EPW) files, filters their hourly records,
derives comfort metrics such as heat index and wind chill, and exports or
publishes the resulting tables. "epwctl serve" runs the HTTP API used by
the viewer front end.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newInspectCmd(),
		newExportCmd(),
		newPublishCmd(),
		newFieldsCmd(),
	)
	return root
}
