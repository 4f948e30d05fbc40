package derive

import (
	"sort"
	"time"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// DefaultVariables are the columns selected when a request names none.
var DefaultVariables = []epw.Field{
	epw.TempAir,
	epw.TempDew,
	epw.RelativeHumidity,
	epw.WindSpeed,
	epw.WindDirection,
	epw.DirectNormalRadiation,
	epw.DiffuseHorizontalRadiation,
	epw.GlobalHorizontalRadiation,
	epw.HorizontalInfraredRadiation,
	epw.DirectNormalIlluminance,
	epw.DiffuseHorizontalIlluminance,
	epw.GlobalHorizontalIlluminance,
	epw.TotalSkyCover,
	epw.AtmosphericPressure,
}

// Column describes one column of a Table.
type Column struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Unit    string `json:"unit"`
	Derived bool   `json:"derived"`
}

// Row holds one value per table column, in column order.
type Row struct {
	Time   time.Time     `json:"time"`
	Values []epw.Reading `json:"values"`
}

// Table is a filtered, row-aligned view of a file's records.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Build selects the records matching req and evaluates the requested fields
// and metrics on each of them. records must be in ascending time order, as
// Decode returns them. The records are not modified.
func Build(records []epw.HourlyRecord, req Request) (*Table, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	vars, err := resolveVariables(req.Variables)
	if err != nil {
		return nil, err
	}
	mets, err := resolveMetrics(req.Metrics)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Columns: make([]Column, 0, len(vars)+len(mets)),
		Rows:    []Row{},
	}
	for _, f := range vars {
		fi := f.Info()
		t.Columns = append(t.Columns, Column{Name: fi.Name, Label: fi.Label, Unit: fi.Unit})
	}
	for _, m := range mets {
		t.Columns = append(t.Columns, Column{Name: m.Name, Label: m.Label, Unit: m.Unit, Derived: true})
	}

	window := req.hourWindow()
	selected := selectRange(records, req.Start, req.End)
	for i := range selected {
		rec := &selected[i]
		if !window.contains(rec.Time.Hour()) {
			continue
		}
		row := Row{Time: rec.Time, Values: make([]epw.Reading, 0, len(t.Columns))}
		for _, f := range vars {
			row.Values = append(row.Values, rec.Get(f))
		}
		for _, m := range mets {
			r, err := m.Apply(rec)
			if err != nil {
				if req.OnMissing != MissingBlank {
					return nil, err
				}
				r = epw.Reading{}
			}
			row.Values = append(row.Values, r)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func resolveVariables(names []string) ([]epw.Field, error) {
	if len(names) == 0 {
		return DefaultVariables, nil
	}
	out := make([]epw.Field, 0, len(names))
	for _, name := range names {
		f, ok := epw.LookupField(name)
		if !ok {
			return nil, &UnknownFieldError{Kind: "variable", Name: name}
		}
		out = append(out, f)
	}
	return out, nil
}

func resolveMetrics(names []string) ([]Metric, error) {
	out := make([]Metric, 0, len(names))
	for _, name := range names {
		m, ok := LookupMetric(name)
		if !ok {
			return nil, &UnknownFieldError{Kind: "metric", Name: name}
		}
		out = append(out, m)
	}
	return out, nil
}

// selectRange returns the records whose time falls in [start, end], in the
// order the range visits them. Bounds are moved onto the records' reference
// year. A range whose bounds both carry a year and that runs from one year
// into the next wraps: December records come before January ones. Reversed
// bounds select nothing.
func selectRange(records []epw.HourlyRecord, start, end time.Time) []epw.HourlyRecord {
	n := len(records)
	if n == 0 {
		return nil
	}
	year := records[0].Time.Year()

	if !start.IsZero() && !end.IsZero() && start.Year() != 0 && end.Year() != 0 {
		if start.After(end) {
			return nil
		}
		if years := end.Year() - start.Year(); years > 0 {
			from, to := rebase(start, year), rebaseEnd(end, year)
			if years > 1 || !from.After(to) {
				return records
			}
			lo, hi := searchFrom(records, from), searchTo(records, to)
			out := make([]epw.HourlyRecord, 0, n-lo+hi)
			out = append(out, records[lo:]...)
			return append(out, records[:hi]...)
		}
	}

	lo, hi := 0, n
	if !start.IsZero() {
		lo = searchFrom(records, rebase(start, year))
	}
	if !end.IsZero() {
		hi = searchTo(records, rebaseEnd(end, year))
	}
	if lo >= hi {
		return nil
	}
	return records[lo:hi]
}

// searchFrom is the index of the first record at or after t.
func searchFrom(records []epw.HourlyRecord, t time.Time) int {
	return sort.Search(len(records), func(i int) bool { return !records[i].Time.Before(t) })
}

// searchTo is the index just past the last record at or before t.
func searchTo(records []epw.HourlyRecord, t time.Time) int {
	return sort.Search(len(records), func(i int) bool { return records[i].Time.After(t) })
}

// rebase moves t onto year. February 29 becomes March 1 in a common year,
// which is where a start bound on that day should land.
func rebase(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// rebaseEnd is rebase for an end bound: February 29 is clamped to the 28th
// in a common year so the bound does not spill into March.
func rebaseEnd(t time.Time, year int) time.Time {
	day := t.Day()
	if t.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
