package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

type inspectReport struct {
	Location epw.Location `json:"location"`
	Coverage epw.Coverage `json:"coverage"`
	Headers  []string     `json:"headers"`
}

func newInspectCmd() *cobra.Command {
	var (
		asJSON    bool
		allowGaps bool
	)
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Validate an EPW file and describe its station and coverage",
		Long: `Decode an EPW file and print the station, the period covered and how
many records it holds against a full year. Decoding errors are reported
with the offending line number. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []epw.Option
			if allowGaps {
				opts = append(opts, epw.WithAllowGaps())
			}
			f, err := decodeArg(cmd, args[0], opts...)
			if err != nil {
				return err
			}
			report := inspectReport{Location: f.Location, Coverage: f.Coverage(), Headers: f.Headers}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd, report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&allowGaps, "allow-gaps", false, "accept files with missing intervals")
	return cmd
}

func printReport(cmd *cobra.Command, r inspectReport) error {
	loc, cov := r.Location, r.Coverage
	state := "partial"
	if cov.Complete {
		state = "complete"
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Station:\t%s, %s, %s\n", loc.City, loc.Region, loc.Country)
	fmt.Fprintf(tw, "WMO:\t%s\n", loc.WMO)
	fmt.Fprintf(tw, "Source:\t%s\n", loc.Source)
	fmt.Fprintf(tw, "Position:\t%.4f, %.4f at %g m\n", loc.Latitude, loc.Longitude, loc.Elevation)
	fmt.Fprintf(tw, "Time zone:\tUTC%+g\n", loc.TimeZone)
	fmt.Fprintf(tw, "Records:\t%d of %d (%s), %d per hour\n", cov.Records, cov.Expected, state, cov.RecordsPerHour)
	fmt.Fprintf(tw, "Period:\t%s to %s\n", cov.First.Format("01-02 15:04"), cov.Last.Format("01-02 15:04"))
	fmt.Fprintf(tw, "Headers:\t%d\n", len(r.Headers))
	return tw.Flush()
}
