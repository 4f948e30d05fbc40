package station

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result Place
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (Place, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var denver = epw.Location{
	City:      "DENVER CENTENNIAL",
	Region:    "CO",
	Country:   "USA",
	WMO:       "724666",
	Latitude:  39.57,
	Longitude: -104.85,
}

// --- tests ---

func TestResolve_NilGeocoder(t *testing.T) {
	place := Resolve(context.Background(), denver, nil, discardLogger())

	assert.Equal(t, Place{
		Name:             "DENVER CENTENNIAL",
		FormattedAddress: "DENVER CENTENNIAL, CO, USA",
		Source:           SourceOriginal,
	}, place)
}

func TestResolve_ReverseGeocode(t *testing.T) {
	geo := &mockGeocoder{result: Place{
		Name:             "Centennial",
		FormattedAddress: "Centennial, Colorado, United States",
		Confidence:       0.9,
	}}

	place := Resolve(context.Background(), denver, geo, discardLogger())

	assert.Equal(t, "Centennial", place.Name)
	assert.Equal(t, "Centennial, Colorado, United States", place.FormattedAddress)
	assert.Equal(t, 0.9, place.Confidence)
	assert.Equal(t, SourceReverse, place.Source)
	assert.Equal(t, 1, geo.calls)
}

func TestResolve_GeocodeError(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("mapbox down")}

	place := Resolve(context.Background(), denver, geo, discardLogger())

	assert.Equal(t, SourceFailed, place.Source)
	assert.Equal(t, "DENVER CENTENNIAL, CO, USA", place.FormattedAddress)
}

func TestResolve_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}

	place := Resolve(context.Background(), denver, geo, discardLogger())

	assert.Equal(t, SourceOriginal, place.Source)
	assert.Equal(t, 1, geo.calls)
}

func TestResolve_NoCoordinates(t *testing.T) {
	geo := &mockGeocoder{result: Place{FormattedAddress: "Null Island"}}
	loc := epw.Location{City: "SOMEWHERE", Region: "-", Country: "XYZ"}

	place := Resolve(context.Background(), loc, geo, discardLogger())

	assert.Equal(t, "SOMEWHERE, XYZ", place.FormattedAddress)
	assert.Zero(t, geo.calls)
}

func TestResolve_ReverseKeepsCityWhenNameEmpty(t *testing.T) {
	geo := &mockGeocoder{result: Place{FormattedAddress: "Colorado, United States"}}

	place := Resolve(context.Background(), denver, geo, discardLogger())

	assert.Equal(t, "DENVER CENTENNIAL", place.Name)
	assert.Equal(t, SourceReverse, place.Source)
}
