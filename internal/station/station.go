// Package station describes where a weather file was recorded.
package station

import (
	"context"
	"log/slog"
	"strings"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// Where a Place came from.
const (
	SourceReverse  = "reverse"
	SourceOriginal = "original"
	SourceFailed   = "failed"
)

// Place is the human-readable location of a station.
type Place struct {
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Confidence       float64 `json:"confidence"` // 0.0–1.0 provider confidence score
	Source           string  `json:"source"`
}

// Geocoder resolves coordinates to place details.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}

// Resolve names the station at loc. If geocoder is nil, the coordinates are
// unset, or geocoding fails, the place is built from the LOCATION header
// with Source set accordingly.
func Resolve(ctx context.Context, loc epw.Location, geocoder Geocoder, logger *slog.Logger) Place {
	place := Place{
		Name:             loc.City,
		FormattedAddress: headerAddress(loc),
		Source:           SourceOriginal,
	}
	if geocoder == nil || (loc.Latitude == 0 && loc.Longitude == 0) {
		return place
	}

	result, err := geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"station", loc.StationID(),
			"lat", loc.Latitude,
			"lon", loc.Longitude,
			"error", err,
		)
		place.Source = SourceFailed
		return place
	}
	if result.FormattedAddress == "" {
		return place
	}

	result.Source = SourceReverse
	if result.Name == "" {
		result.Name = loc.City
	}
	return result
}

func headerAddress(loc epw.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.Region, loc.Country} {
		if p = strings.TrimSpace(p); p != "" && p != "-" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
