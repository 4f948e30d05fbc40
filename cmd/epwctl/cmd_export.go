package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		table  tableFlags
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Filter an EPW file and write the derived table",
		Long: `Decode an EPW file, select rows by date range and hour of day, add the
requested metrics and write the table as JSON, CSV or Parquet.

Example:
  epwctl export denver.epw --start 06-01 --end 08-31 --hour-from 9 --hour-to 17 \
      --vars temp_air,rh --metrics heat_index --format csv -o summer.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			req, err := table.request(cmd)
			if err != nil {
				return err
			}
			file, err := decodeArg(cmd, args[0], table.decodeOptions()...)
			if err != nil {
				return err
			}
			t, err := derive.Build(file.Records, req)
			if err != nil {
				return err
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, out.Close()) }()
			return export.Write(out, f, file.Location, t)
		},
	}
	table.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: json, csv or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}
