package derive

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// PivotBy selects the horizontal axis of a pivot.
type PivotBy string

const (
	ByMonth PivotBy = "month"
	ByDay   PivotBy = "day"
)

// Approximate northern-hemisphere daylight saving period, by month.
const (
	dstFirstMonth = time.April
	dstLastMonth  = time.October
)

// Pivot is an hour-of-day by month (or day-of-year) grid of mean values.
type Pivot struct {
	Column string  `json:"column"`
	By     PivotBy `json:"by"`
	DST    bool    `json:"dst"`
	// Keys are the months (1..12) or days of year present in the table.
	Keys  []int `json:"keys"`
	Hours []int `json:"hours"`
	// Cells is indexed [hour][key]. A cell with no valid value is missing.
	Cells [][]epw.Reading `json:"cells"`
}

// PivotMean averages a table column per hour of day and month or day of
// year. With dst set, hours from April to October are shifted forward one
// hour to approximate clock time.
func PivotMean(t *Table, column string, by PivotBy, dst bool) (*Pivot, error) {
	col := t.ColumnIndex(column)
	if col < 0 {
		return nil, &UnknownFieldError{Kind: "column", Name: column}
	}
	var keyOf func(time.Time) int
	switch by {
	case ByMonth:
		keyOf = func(ts time.Time) int { return int(ts.Month()) }
	case ByDay:
		keyOf = func(ts time.Time) int { return ts.YearDay() }
	default:
		return nil, fmt.Errorf("%w: pivot axis must be %q or %q, got %q", ErrInvalidRequest, ByMonth, ByDay, by)
	}

	type acc struct {
		sum float64
		n   int
	}
	sums := map[[2]int]*acc{}
	keySet := map[int]bool{}
	for _, row := range t.Rows {
		key := keyOf(row.Time)
		keySet[key] = true
		r := row.Values[col]
		if !r.Valid {
			continue
		}
		h := clockHour(row.Time, dst)
		a := sums[[2]int{h, key}]
		if a == nil {
			a = &acc{}
			sums[[2]int{h, key}] = a
		}
		a.sum += r.Value
		a.n++
	}

	p := &Pivot{Column: column, By: by, DST: dst, Keys: make([]int, 0, len(keySet))}
	for k := range keySet {
		p.Keys = append(p.Keys, k)
	}
	sort.Ints(p.Keys)

	p.Hours = make([]int, 24)
	p.Cells = make([][]epw.Reading, 24)
	for h := range p.Hours {
		p.Hours[h] = h
		p.Cells[h] = make([]epw.Reading, len(p.Keys))
		for i, k := range p.Keys {
			if a := sums[[2]int{h, k}]; a != nil {
				p.Cells[h][i] = epw.Present(a.sum / float64(a.n))
			}
		}
	}
	return p, nil
}

func clockHour(ts time.Time, dst bool) int {
	h := ts.Hour()
	if dst && ts.Month() >= dstFirstMonth && ts.Month() <= dstLastMonth {
		h = (h + 1) % 24
	}
	return h
}

// Range is the observed extent of a column with padded display limits.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Lower and Upper pad the extent by 5% (at least 0.1, or 0.5 for a
	// constant column) and are rounded to two decimals.
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	// BoundLower and BoundUpper are the wider limits a range control may
	// offer: 20% padding, at least 0.5, or 1.0 for a constant column.
	BoundLower float64 `json:"bound_lower"`
	BoundUpper float64 `json:"bound_upper"`
}

// ValueRange computes the range of the valid values in a table column.
func ValueRange(t *Table, column string) (Range, error) {
	col := t.ColumnIndex(column)
	if col < 0 {
		return Range{}, &UnknownFieldError{Kind: "column", Name: column}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range t.Rows {
		if r := row.Values[col]; r.Valid {
			lo = math.Min(lo, r.Value)
			hi = math.Max(hi, r.Value)
		}
	}
	if math.IsInf(lo, 1) {
		return Range{}, fmt.Errorf("column %s: %w", column, ErrNoData)
	}

	rg := Range{Min: lo, Max: hi}
	rg.Lower, rg.Upper = pad(lo, hi, 0.05, 0.1, 0.5, 0.2)
	rg.BoundLower, rg.BoundUpper = pad(lo, hi, 0.2, 0.5, 1.0, 1.0)
	return rg, nil
}

// pad widens [lo, hi] by frac of its span, never by less than floor, or by
// flat when the span is zero. If rounding collapses the result, upper is
// set to lower plus minGap.
func pad(lo, hi, frac, floor, flat, minGap float64) (float64, float64) {
	span := math.Abs(hi - lo)
	buf := flat
	if span > 1e-9 {
		buf = math.Max(span*frac, floor)
	}
	lower, upper := round2(lo-buf), round2(hi+buf)
	if lower >= upper {
		upper = lower + minGap
	}
	return lower, upper
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DayExtremes is the minimum, mean and maximum of a column on one day.
type DayExtremes struct {
	Date time.Time   `json:"date"`
	Min  epw.Reading `json:"min"`
	Mean epw.Reading `json:"mean"`
	Max  epw.Reading `json:"max"`
}

// DailyExtremes returns per-day minimum, mean and maximum of a column, one
// entry per day present in the table, in order. The mean covers valid
// readings only; a day without any is missing throughout.
func DailyExtremes(t *Table, column string) ([]DayExtremes, error) {
	col := t.ColumnIndex(column)
	if col < 0 {
		return nil, &UnknownFieldError{Kind: "column", Name: column}
	}

	out := []DayExtremes{}
	var sum float64
	var count int
	closeDay := func() {
		if count > 0 {
			out[len(out)-1].Mean = epw.Present(sum / float64(count))
		}
		sum, count = 0, 0
	}
	for _, row := range t.Rows {
		y, m, d := row.Time.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if len(out) == 0 || !out[len(out)-1].Date.Equal(date) {
			if len(out) > 0 {
				closeDay()
			}
			out = append(out, DayExtremes{Date: date})
		}
		r := row.Values[col]
		if !r.Valid {
			continue
		}
		day := &out[len(out)-1]
		if !day.Min.Valid || r.Value < day.Min.Value {
			day.Min = r
		}
		if !day.Max.Valid || r.Value > day.Max.Value {
			day.Max = r
		}
		sum += r.Value
		count++
	}
	if len(out) > 0 {
		closeDay()
	}
	return out, nil
}
