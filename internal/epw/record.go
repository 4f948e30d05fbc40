package epw

import (
	"fmt"
	"time"
)

// Location is the station metadata from the LOCATION header line.
type Location struct {
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Source    string  `json:"source"`
	WMO       string  `json:"wmo"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeZone  float64 `json:"time_zone"`
	Elevation float64 `json:"elevation"`
}

// StationID returns the WMO number, falling back to the city name.
func (l Location) StationID() string {
	if l.WMO != "" {
		return l.WMO
	}
	return l.City
}

// Timestamp holds the calendar columns exactly as written in the file.
type Timestamp struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d hour %d minute %d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute)
}

// start returns the beginning of the interval in the given year.
func (ts Timestamp) start(year int, step time.Duration) time.Time {
	minute := ts.Minute
	if minute == 0 {
		minute = 60
	}
	return time.Date(year, time.Month(ts.Month), ts.Day, ts.Hour-1, minute, 0, 0, time.UTC).Add(-step)
}

func (ts Timestamp) isLeapDay() bool {
	return ts.Month == 2 && ts.Day == 29
}

// HourlyRecord is one data line.
type HourlyRecord struct {
	Timestamp
	// Time is the interval start on the file's reference year, in local
	// standard time expressed as UTC.
	Time                time.Time
	Line                int
	DataSource          string
	PresentWeatherCodes string
	Readings            [numFields]Reading
}

// Get returns the reading for f.
func (r *HourlyRecord) Get(f Field) Reading {
	return r.Readings[f]
}

// File is a fully decoded EPW file.
type File struct {
	Location Location
	// LocationLine is the LOCATION header as read, without a byte order
	// mark. Encode writes it verbatim when set.
	LocationLine string
	// Headers holds the header lines after LOCATION, verbatim.
	Headers        []string
	RecordsPerHour int
	// Columns is the widest data line seen; Encode writes this many columns.
	Columns int
	RefYear int
	Records []HourlyRecord
}

// Step is the interval between consecutive records.
func (f *File) Step() time.Duration {
	return stepFor(f.RecordsPerHour)
}

// Coverage summarizes how much of a year the records span.
type Coverage struct {
	Records        int       `json:"records"`
	Expected       int       `json:"expected"`
	Complete       bool      `json:"complete"`
	Leap           bool      `json:"leap"`
	RecordsPerHour int       `json:"records_per_hour"`
	First          time.Time `json:"first"`
	Last           time.Time `json:"last"`
}

// Coverage reports the record count against a full year of the file's
// reference calendar: 8760 hours, or 8784 when February 29 is present.
func (f *File) Coverage() Coverage {
	leap := f.RefYear == leapRefYear
	days := 365
	if leap {
		days = 366
	}
	rph := f.RecordsPerHour
	if rph <= 0 {
		rph = 1
	}
	c := Coverage{
		Records:        len(f.Records),
		Expected:       days * 24 * rph,
		Leap:           leap,
		RecordsPerHour: rph,
	}
	c.Complete = c.Records == c.Expected
	if len(f.Records) > 0 {
		c.First = f.Records[0].Time
		c.Last = f.Records[len(f.Records)-1].Time
	}
	return c
}

const (
	leapRefYear   = 2000
	commonRefYear = 2001
)

func stepFor(recordsPerHour int) time.Duration {
	if recordsPerHour <= 0 {
		return time.Hour
	}
	return time.Hour / time.Duration(recordsPerHour)
}

// ordinal places a timestamp on the leap reference calendar so records from
// different source years compare by position within the year.
func ordinal(ts Timestamp, step time.Duration) time.Duration {
	jan1 := time.Date(leapRefYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	return ts.start(leapRefYear, step).Sub(jan1)
}
