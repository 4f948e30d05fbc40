package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// --- tests ---

func TestGenerate_FullYear(t *testing.T) {
	f := generate(defaultSite(), 2001)
	assert.Len(t, f.Records, 8760)
	assert.Equal(t, epw.Timestamp{Year: 2001, Month: 12, Day: 31, Hour: 24, Minute: 60}, f.Records[8759].Timestamp)

	leap := generate(defaultSite(), 2004)
	assert.Len(t, leap.Records, 8784)
}

func TestGenerate_PhysicalRanges(t *testing.T) {
	f := generate(defaultSite(), 2001)
	for i := range f.Records {
		rec := &f.Records[i]
		temp, dew := rec.Get(epw.TempAir).Value, rec.Get(epw.TempDew).Value
		require.LessOrEqual(t, dew, temp, "record %d", i)

		rh := rec.Get(epw.RelativeHumidity).Value
		require.True(t, rh > 0 && rh <= 100, "record %d rh %v", i, rh)
		require.GreaterOrEqual(t, rec.Get(epw.GlobalHorizontalRadiation).Value, 0.0)
		assert.False(t, rec.Get(epw.Visibility).Valid)
	}
}

func TestGenerate_SummerWarmerThanWinter(t *testing.T) {
	f := generate(defaultSite(), 2001)
	// Noon on January 15 and July 15.
	jan := f.Records[14*24+12].Get(epw.TempAir).Value
	jul := f.Records[195*24+12].Get(epw.TempAir).Value
	assert.Greater(t, jul, jan+15)

	// Midnight has no sun.
	assert.Zero(t, f.Records[195*24].Get(epw.GlobalHorizontalRadiation).Value)
	assert.Positive(t, f.Records[195*24+12].Get(epw.GlobalHorizontalRadiation).Value)
}

func TestRun_WritesDecodableFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mock", "synthetic.epw")
	require.NoError(t, run([]string{"-out", out, "-city", "TESTVILLE", "-mean", "20"}))

	f, err := epw.DecodeFile(out)
	require.NoError(t, err)
	assert.Equal(t, "TESTVILLE", f.Location.City)
	assert.True(t, f.Coverage().Complete)
	assert.Len(t, f.Headers, 2)

	want := generate(defaultSite(), 2001)
	assert.Equal(t, want.Records[100].Get(epw.WindSpeed), f.Records[100].Get(epw.WindSpeed))
}

func TestRun_RequiresOut(t *testing.T) {
	assert.Error(t, run([]string{"-year", "2001"}))
}
