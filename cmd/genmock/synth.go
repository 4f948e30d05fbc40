package main

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

const (
	sourceFlags  = "?9?9?9?9E0?9?9?9?9?9?9?9?9?9?9?9?9*9*9?9?9?9"
	weatherCodes = "999999999"
	// Magnus coefficients over water.
	magnusB = 17.625
	magnusC = 243.04
)

// site is the station and the climate the generator models.
type site struct {
	epw.Location
	MeanTemp      float64
	SeasonalSwing float64
	DiurnalSwing  float64
}

func defaultSite() site {
	return site{
		Location: epw.Location{
			City:      "SYNTHETIC",
			Region:    "CO",
			Country:   "USA",
			Source:    "genmock",
			WMO:       "999001",
			Latitude:  39.57,
			Longitude: -104.85,
			TimeZone:  -7,
			Elevation: 1793,
		},
		MeanTemp:      10,
		SeasonalSwing: 12,
		DiurnalSwing:  7,
	}
}

// generate builds a full year of hourly records. A leap year yields 8784.
func generate(s site, year int) *epw.File {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	pressure := round(101325*math.Pow(1-2.25577e-5*s.Elevation, 5.25588), 0)

	file := &epw.File{
		Location: s.Location,
		Headers: []string{
			fmt.Sprintf("COMMENTS 1,Synthetic %d weather; mean %.1f C", year, s.MeanTemp),
			"DATA PERIODS,1,1,Data,Sunday, 1/ 1,12/31",
		},
		RecordsPerHour: 1,
		Columns:        epw.StandardColumns,
		RefYear:        year,
		Records:        make([]epw.HourlyRecord, 0, int(end.Sub(start)/time.Hour)),
	}

	for t := start; t.Before(end); t = t.Add(time.Hour) {
		rec := epw.HourlyRecord{
			Timestamp: epw.Timestamp{
				Year:   year,
				Month:  int(t.Month()),
				Day:    t.Day(),
				Hour:   t.Hour() + 1,
				Minute: 60,
			},
			Time:                t,
			Line:                len(file.Records) + len(file.Headers) + 2,
			DataSource:          sourceFlags,
			PresentWeatherCodes: weatherCodes,
		}
		s.fill(&rec, t, pressure)
		file.Records = append(file.Records, rec)
	}
	return file
}

func (s site) fill(rec *epw.HourlyRecord, t time.Time, pressure float64) {
	doy := float64(t.YearDay())
	hour := float64(t.Hour()) + 0.5

	// Coldest in mid January, warmest at 15:00.
	season := -math.Cos(2 * math.Pi * (doy - 15) / 365)
	day := math.Cos(2 * math.Pi * (hour - 15) / 24)

	temp := round(s.MeanTemp+s.SeasonalSwing*season+s.DiurnalSwing*day, 1)
	dew := round(temp-(4+3*(day+1)), 1)
	rh := round(100*saturation(dew)/saturation(temp), 0)

	r := &rec.Readings
	r[epw.TempAir] = epw.Present(temp)
	r[epw.TempDew] = epw.Present(dew)
	r[epw.RelativeHumidity] = epw.Present(min(rh, 100))
	r[epw.AtmosphericPressure] = epw.Present(pressure)
	r[epw.WindSpeed] = epw.Present(round(3+1.5*day+0.5*season, 1))
	r[epw.WindDirection] = epw.Present(round(math.Mod(270+60*season+360, 360), 0))

	sinAlt := s.sunElevation(doy, hour)
	if sinAlt <= 0 {
		r[epw.GlobalHorizontalRadiation] = epw.Present(0)
		r[epw.DirectNormalRadiation] = epw.Present(0)
		r[epw.DiffuseHorizontalRadiation] = epw.Present(0)
		return
	}
	dni := round(850*math.Sqrt(sinAlt), 0)
	dhi := round(60+80*sinAlt, 0)
	r[epw.DirectNormalRadiation] = epw.Present(dni)
	r[epw.DiffuseHorizontalRadiation] = epw.Present(dhi)
	r[epw.GlobalHorizontalRadiation] = epw.Present(round(dni*sinAlt+dhi, 0))
}

// sunElevation returns the sine of the solar altitude at local standard
// hour on day of year doy, ignoring the equation of time.
func (s site) sunElevation(doy, hour float64) float64 {
	decl := radians(23.44) * math.Sin(2*math.Pi*(284+doy)/365)
	solarHour := hour + (s.Longitude-15*s.TimeZone)/15
	ha := radians(15 * (solarHour - 12))
	lat := radians(s.Latitude)
	return math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(ha)
}

func saturation(t float64) float64 {
	return math.Exp(magnusB * t / (magnusC + t))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
