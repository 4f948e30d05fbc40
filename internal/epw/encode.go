package epw

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Encode writes f back out in EPW layout. Header lines are written as read;
// a File built in code gets a LOCATION line formatted from Location. Valid
// readings are written in their shortest exact form and missing readings as
// the column's sentinel, so a decode of the output yields the same values.
func Encode(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)

	if f.LocationLine != "" {
		bw.WriteString(f.LocationLine)
	} else {
		bw.WriteString(formatLocation(f.Location))
	}
	bw.WriteByte('\n')

	for _, h := range f.Headers {
		bw.WriteString(h)
		bw.WriteByte('\n')
	}

	cols := f.Columns
	if cols == 0 {
		cols = StandardColumns
	}
	parts := make([]string, cols)
	for i := range f.Records {
		encodeRecord(parts, &f.Records[i])
		bw.WriteString(strings.Join(parts, ","))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatLocation(loc Location) string {
	return strings.Join([]string{
		"LOCATION",
		loc.City,
		loc.Region,
		loc.Country,
		loc.Source,
		loc.WMO,
		formatFloat(loc.Latitude),
		formatFloat(loc.Longitude),
		formatFloat(loc.TimeZone),
		formatFloat(loc.Elevation),
	}, ",")
}

func encodeRecord(parts []string, rec *HourlyRecord) {
	parts[colYear] = strconv.Itoa(rec.Year)
	parts[colMonth] = strconv.Itoa(rec.Month)
	parts[colDay] = strconv.Itoa(rec.Day)
	parts[colHour] = strconv.Itoa(rec.Hour)
	parts[colMinute] = strconv.Itoa(rec.Minute)
	parts[colDataSource] = rec.DataSource
	if len(parts) > colPresentWeatherCodes {
		parts[colPresentWeatherCodes] = rec.PresentWeatherCodes
	}
	for i := range fields {
		fi := &fields[i]
		if fi.Column >= len(parts) {
			continue
		}
		if r := rec.Readings[i]; r.Valid {
			parts[fi.Column] = formatFloat(r.Value)
		} else {
			parts[fi.Column] = formatFloat(fi.Sentinel)
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
