package mapbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/epw-viewer/internal/observability"
	"github.com/couchcryptid/epw-viewer/internal/station"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result station.Place
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (station.Place, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: station.Place{Name: "Centennial", FormattedAddress: "Centennial, CO"}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, clockwork.NewFakeClock(), metrics)

	p1, err := cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	require.NoError(t, err)
	assert.Equal(t, "Centennial", p1.Name)

	p2, err := cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")))
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: station.Place{FormattedAddress: "Somewhere"}}
	cached := NewCachedGeocoder(inner, 10, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	_, _ = cached.ReverseGeocode(context.Background(), 40.01, -105.27)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	_, _ = cached.ReverseGeocode(context.Background(), 39.57, -104.85)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	require.Error(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EntriesExpire(t *testing.T) {
	inner := &countingGeocoder{result: station.Place{FormattedAddress: "Centennial, CO"}}
	clock := clockwork.NewFakeClock()
	cached := NewCachedGeocoder(inner, 10, clock, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 39.57, -104.85)
	clock.Advance(placeTTL + time.Minute)
	_, _ = cached.ReverseGeocode(context.Background(), 39.57, -104.85)

	assert.Equal(t, 2, inner.calls)
}
