// Command genmock writes a synthetic EPW file for demos and load tests. Each
// hour's temperature, humidity, wind and solar columns follow smooth seasonal
// and diurnal cycles for the given site; every other column is missing. The
// output is decoded again before the command exits, so a file it writes is
// always one the viewer accepts.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/synthetic.epw -lat 39.57 -lon -104.85 -tz -7 -elev 1793
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("genmock", flag.ContinueOnError)
	out := fs.String("out", "", "output path for the EPW file")
	year := fs.Int("year", 2001, "reference year written in every record")
	s := defaultSite()
	fs.StringVar(&s.City, "city", s.City, "station city")
	fs.StringVar(&s.WMO, "wmo", s.WMO, "station WMO number")
	fs.Float64Var(&s.Latitude, "lat", s.Latitude, "latitude in degrees north")
	fs.Float64Var(&s.Longitude, "lon", s.Longitude, "longitude in degrees east")
	fs.Float64Var(&s.TimeZone, "tz", s.TimeZone, "time zone offset from UTC in hours")
	fs.Float64Var(&s.Elevation, "elev", s.Elevation, "elevation in meters")
	fs.Float64Var(&s.MeanTemp, "mean", s.MeanTemp, "annual mean dry bulb temperature, C")
	fs.Float64Var(&s.SeasonalSwing, "seasonal", s.SeasonalSwing, "half the summer-winter temperature difference, C")
	fs.Float64Var(&s.DiurnalSwing, "diurnal", s.DiurnalSwing, "half the day-night temperature difference, C")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return errors.New("missing required flag: -out")
	}

	file := generate(s, *year)
	if err := writeEPW(*out, file); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d records: %s", len(file.Records), *out)

	check, err := epw.DecodeFile(*out)
	if err != nil {
		return fmt.Errorf("decode written file: %w", err)
	}
	printStats(check)
	return nil
}

func writeEPW(path string, file *epw.File) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	return epw.Encode(f, file)
}

func printStats(f *epw.File) {
	cov := f.Coverage()
	log.Printf("station %s (%s): %d of %d records, complete=%t",
		f.Location.City, f.Location.StationID(), cov.Records, cov.Expected, cov.Complete)

	lo, hi := f.Records[0].Get(epw.TempAir).Value, f.Records[0].Get(epw.TempAir).Value
	for i := range f.Records {
		v := f.Records[i].Get(epw.TempAir).Value
		lo, hi = min(lo, v), max(hi, v)
	}
	log.Printf("temp_air range: %.1f .. %.1f C", lo, hi)
}
