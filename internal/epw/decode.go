package epw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// headerKeywords introduce the optional header lines that follow LOCATION.
var headerKeywords = []string{
	"DESIGN CONDITIONS",
	"TYPICAL/EXTREME PERIODS",
	"GROUND TEMPERATURES",
	"HOLIDAYS/DAYLIGHT SAVINGS",
	"COMMENTS 1",
	"COMMENTS 2",
	"DATA PERIODS",
}

const maxLineBytes = 1 << 20

// Option configures Decode.
type Option func(*decoder)

// WithAllowGaps accepts missing intervals between records. Records must still
// be strictly ascending.
func WithAllowGaps() Option {
	return func(d *decoder) { d.allowGaps = true }
}

// WithMinColumns accepts data lines truncated to at least n columns. Columns
// beyond the end of a short line decode as missing readings. n is clamped to
// [6, StandardColumns].
func WithMinColumns(n int) Option {
	return func(d *decoder) {
		d.minColumns = min(max(n, minColumnsFloor), StandardColumns)
	}
}

type decoder struct {
	allowGaps  bool
	minColumns int
}

// Decode reads a complete EPW file. It stops at the first error and returns no
// partial result.
func Decode(r io.Reader, opts ...Option) (*File, error) {
	d := decoder{minColumns: StandardColumns}
	for _, opt := range opts {
		opt(&d)
	}
	return d.decode(r)
}

// DecodeFile opens path, decodes it and closes it again.
func DecodeFile(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open epw file: %w", err)
	}
	defer f.Close()
	return Decode(f, opts...)
}

func (d *decoder) decode(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	file := &File{RecordsPerHour: 1}
	step := time.Hour
	inHeader := true
	leap := false
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")

		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
			loc, err := parseLocation(text)
			if err != nil {
				return nil, err
			}
			file.Location = loc
			file.LocationLine = text
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		parts := strings.Split(text, ",")
		if inHeader {
			if kw := headerKeyword(parts[0]); kw != "" {
				if kw == "DATA PERIODS" {
					rph, err := parseRecordsPerHour(line, parts)
					if err != nil {
						return nil, err
					}
					file.RecordsPerHour = rph
					step = stepFor(rph)
				}
				file.Headers = append(file.Headers, text)
				continue
			}
			inHeader = false
		}

		rec, err := d.parseRecord(line, parts, step)
		if err != nil {
			return nil, err
		}
		if n := len(file.Records); n > 0 {
			if err := d.checkSequence(&file.Records[n-1], &rec, step); err != nil {
				return nil, err
			}
		}
		if rec.isLeapDay() {
			leap = true
		}
		file.Columns = max(file.Columns, len(parts))
		file.Records = append(file.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read epw: %w", err)
	}
	if line == 0 {
		return nil, &HeaderParseError{Line: 1, Reason: "empty file"}
	}
	if len(file.Records) == 0 {
		return nil, ErrNoRecords
	}

	file.RefYear = commonRefYear
	if leap {
		file.RefYear = leapRefYear
	}
	for i := range file.Records {
		file.Records[i].Time = file.Records[i].start(file.RefYear, step)
	}
	return file, nil
}

func headerKeyword(first string) string {
	first = strings.ToUpper(strings.TrimSpace(first))
	for _, kw := range headerKeywords {
		if first == kw {
			return kw
		}
	}
	return ""
}

func parseLocation(text string) (Location, error) {
	parts := strings.Split(text, ",")
	if !strings.EqualFold(strings.TrimSpace(parts[0]), "LOCATION") {
		return Location{}, &HeaderParseError{Line: 1, Reason: "first line is not a LOCATION header"}
	}
	if len(parts) < 10 {
		return Location{}, &HeaderParseError{
			Line:   1,
			Reason: fmt.Sprintf("expected at least 10 fields, got %d", len(parts)),
		}
	}

	loc := Location{
		City:    strings.TrimSpace(parts[1]),
		Region:  strings.TrimSpace(parts[2]),
		Country: strings.TrimSpace(parts[3]),
		Source:  strings.TrimSpace(parts[4]),
		WMO:     strings.TrimSpace(parts[5]),
	}
	coords := []struct {
		name     string
		raw      string
		dst      *float64
		min, max float64
	}{
		{"latitude", parts[6], &loc.Latitude, -90, 90},
		{"longitude", parts[7], &loc.Longitude, -180, 180},
		{"time zone", parts[8], &loc.TimeZone, -12, 14},
		{"elevation", parts[9], &loc.Elevation, -1000, 9999.9},
	}
	for _, c := range coords {
		raw := strings.TrimSpace(c.raw)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) {
			return Location{}, &HeaderParseError{Line: 1, Field: c.name, Raw: raw, Reason: "not a number"}
		}
		if v < c.min || v > c.max {
			return Location{}, &HeaderParseError{
				Line:   1,
				Field:  c.name,
				Raw:    raw,
				Reason: fmt.Sprintf("out of range [%g, %g]", c.min, c.max),
			}
		}
		*c.dst = v
	}
	return loc, nil
}

// parseRecordsPerHour reads field 3 of "DATA PERIODS,<n>,<records/hour>,...".
func parseRecordsPerHour(line int, parts []string) (int, error) {
	if len(parts) < 3 {
		return 0, &HeaderParseError{Line: line, Field: "records per hour", Reason: "missing"}
	}
	raw := strings.TrimSpace(parts[2])
	rph, err := strconv.Atoi(raw)
	if err != nil || rph < 1 || rph > 60 || 60%rph != 0 {
		return 0, &HeaderParseError{
			Line:   line,
			Field:  "records per hour",
			Raw:    raw,
			Reason: "must be a divisor of 60",
		}
	}
	return rph, nil
}

func (d *decoder) parseRecord(line int, parts []string, step time.Duration) (HourlyRecord, error) {
	n := len(parts)
	if n > StandardColumns || n < d.minColumns {
		return HourlyRecord{}, &RecordParseError{Line: line, Got: n, Want: StandardColumns}
	}

	rec := HourlyRecord{Line: line}
	calendar := []struct {
		col      int
		name     string
		dst      *int
		min, max int
	}{
		{colYear, "year", &rec.Year, 1, 9999},
		{colMonth, "month", &rec.Month, 1, 12},
		{colDay, "day", &rec.Day, 1, 31},
		{colHour, "hour", &rec.Hour, 1, 24},
		{colMinute, "minute", &rec.Minute, 0, 60},
	}
	for _, c := range calendar {
		raw := strings.TrimSpace(parts[c.col])
		v, err := strconv.Atoi(raw)
		if err != nil {
			return HourlyRecord{}, &FieldTypeError{Line: line, Column: c.col + 1, Field: c.name, Raw: raw, Err: err}
		}
		if v < c.min || v > c.max {
			return HourlyRecord{}, &FieldTypeError{
				Line:   line,
				Column: c.col + 1,
				Field:  c.name,
				Raw:    raw,
				Err:    fmt.Errorf("out of range [%d, %d]", c.min, c.max),
			}
		}
		*c.dst = v
	}
	if days := daysIn(rec.Month, rec.Year); rec.Day > days {
		return HourlyRecord{}, &FieldTypeError{
			Line:   line,
			Column: colDay + 1,
			Field:  "day",
			Raw:    strings.TrimSpace(parts[colDay]),
			Err:    fmt.Errorf("month %d of %d has %d days", rec.Month, rec.Year, days),
		}
	}
	if stepMinutes := int(step / time.Minute); rec.Minute%stepMinutes != 0 {
		return HourlyRecord{}, &FieldTypeError{
			Line:   line,
			Column: colMinute + 1,
			Field:  "minute",
			Raw:    strings.TrimSpace(parts[colMinute]),
			Err:    fmt.Errorf("not aligned to %d-minute intervals", stepMinutes),
		}
	}

	rec.DataSource = strings.TrimSpace(parts[colDataSource])
	if n > colPresentWeatherCodes {
		rec.PresentWeatherCodes = strings.TrimSpace(parts[colPresentWeatherCodes])
	}

	for i := range fields {
		fi := &fields[i]
		if fi.Column >= n {
			continue
		}
		raw := strings.TrimSpace(parts[fi.Column])
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = errors.New("not a finite number")
		}
		if err != nil {
			return HourlyRecord{}, &FieldTypeError{Line: line, Column: fi.Column + 1, Field: fi.Name, Raw: raw, Err: err}
		}
		if !fi.isMissing(v) {
			rec.Readings[i] = Present(v)
		}
	}
	return rec, nil
}

// checkSequence enforces strictly ascending records and, unless gaps are
// allowed, exactly one step between neighbours. Files that drop February 29
// from a leap source year go straight from February 28 to March 1.
func (d *decoder) checkSequence(prev, cur *HourlyRecord, step time.Duration) error {
	p, c := ordinal(prev.Timestamp, step), ordinal(cur.Timestamp, step)
	if c <= p {
		return &SequenceError{Line: cur.Line, Prev: prev.Timestamp, Got: cur.Timestamp}
	}
	if d.allowGaps {
		return nil
	}
	diff := c - p
	if diff == step {
		return nil
	}
	skippedLeapDay := diff == step+24*time.Hour &&
		prev.Month == 2 && prev.Day == 28 && cur.Month == 3 && cur.Day == 1
	if skippedLeapDay {
		return nil
	}
	return &SequenceError{Line: cur.Line, Prev: prev.Timestamp, Got: cur.Timestamp, Gap: true}
}

func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
