package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// tableFlags are the row and column selection flags shared by export and
// publish. Flags given on the command line override a request file.
type tableFlags struct {
	requestFile string
	start       string
	end         string
	hourFrom    int
	hourTo      int
	vars        []string
	metrics     []string
	missing     string
	allowGaps   bool
}

func (f *tableFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.requestFile, "request", "r", "", "YAML request file")
	fs.StringVar(&f.start, "start", "", "first interval to include: date, month-day or RFC 3339 time")
	fs.StringVar(&f.end, "end", "", "last interval to include; a date alone covers the whole day")
	fs.IntVar(&f.hourFrom, "hour-from", 0, "first hour of day to include (0-23)")
	fs.IntVar(&f.hourTo, "hour-to", 23, "last hour of day to include (0-23); below hour-from wraps midnight")
	fs.StringSliceVar(&f.vars, "vars", nil, "measurement columns (default: the standard set)")
	fs.StringSliceVar(&f.metrics, "metrics", nil, "derived metrics to add")
	fs.StringVar(&f.missing, "missing", "", `metric with a missing input: "fail" or "blank"`)
	fs.BoolVar(&f.allowGaps, "allow-gaps", false, "accept files with missing intervals")
}

func (f *tableFlags) request(cmd *cobra.Command) (derive.Request, error) {
	var req derive.Request
	if f.requestFile != "" {
		data, err := os.ReadFile(f.requestFile)
		if err != nil {
			return req, fmt.Errorf("read request file: %w", err)
		}
		if req, err = derive.ParseRequestYAML(data); err != nil {
			return req, fmt.Errorf("%s: %w", f.requestFile, err)
		}
	}

	fs := cmd.Flags()
	var err error
	if fs.Changed("start") {
		if req.Start, err = derive.ParseBound(f.start, false); err != nil {
			return req, err
		}
	}
	if fs.Changed("end") {
		if req.End, err = derive.ParseBound(f.end, true); err != nil {
			return req, err
		}
	}
	if fs.Changed("hour-from") {
		req.HourFrom = &f.hourFrom
	}
	if fs.Changed("hour-to") {
		req.HourTo = &f.hourTo
	}
	if fs.Changed("vars") {
		req.Variables = f.vars
	}
	if fs.Changed("metrics") {
		req.Metrics = f.metrics
	}
	if fs.Changed("missing") {
		req.OnMissing = derive.MissingPolicy(f.missing)
	}
	return req, req.Validate()
}

func (f *tableFlags) decodeOptions() []epw.Option {
	if f.allowGaps {
		return []epw.Option{epw.WithAllowGaps()}
	}
	return nil
}

// decodeArg decodes the file named by a command argument; "-" reads stdin.
func decodeArg(cmd *cobra.Command, path string, opts ...epw.Option) (*epw.File, error) {
	if path == "-" {
		return epw.Decode(cmd.InOrStdin(), opts...)
	}
	return epw.DecodeFile(path, opts...)
}

// openOutput returns stdout for "" or "-", else a new file.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
