// Package epwtest builds small EPW documents for tests.
package epwtest

import (
	"fmt"
	"strings"
	"time"
)

// Location is the LOCATION header used by every fixture.
const Location = "LOCATION,DENVER CENTENNIAL,CO,USA,TMY3,724666,39.57,-104.85,-7.0,1793.0"

const (
	sourceFlags = "?9?9?9?9E0?9?9?9?9?9?9?9?9?9?9?9?9*9*9?9?9?9"
	// Columns 7..34 after temp_air.
	tail = "-3.9,81,98400,0,0,266,0,0,0,0,0,0,0,270,2.6,10,9,11.3,77777,9,999999999,8,0.1120,0,88,0.000,0.0,0.0"
)

// Line is one data line. temp_air is hour-1, so each hour of the day has a
// distinct value.
func Line(year, month, day, hour, minute int) string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%s,%d,%s", year, month, day, hour, minute, sourceFlags, hour-1, tail)
}

// Hourly returns n consecutive hourly lines starting January 1, hour 1, of
// a non-leap year.
func Hourly(n int) []string {
	lines := make([]string, n)
	t := time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range lines {
		lines[i] = Line(t.Year(), int(t.Month()), t.Day(), t.Hour()+1, 60)
		t = t.Add(time.Hour)
	}
	return lines
}

// Text joins the LOCATION header and lines into a document.
func Text(lines ...string) string {
	return strings.Join(append([]string{Location}, lines...), "\n") + "\n"
}

// Days returns a document holding n whole days of hourly records.
func Days(n int) string {
	return Text(Hourly(24 * n)...)
}

// WithColumn replaces the 0-based column col of a data line.
func WithColumn(line string, col int, v string) string {
	parts := strings.Split(line, ",")
	parts[col] = v
	return strings.Join(parts, ",")
}
