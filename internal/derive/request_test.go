package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestYAML(t *testing.T) {
	doc := []byte(`
start: 2001-07-01T00:00:00Z
end: 2001-07-31T23:00:00Z
hour_from: 22
hour_to: 4
variables: [temp_air, rh]
metrics:
  - heat_index
on_missing: blank
`)

	req, err := ParseRequestYAML(doc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2001, time.July, 1, 0, 0, 0, 0, time.UTC), req.Start.UTC())
	assert.Equal(t, time.Date(2001, time.July, 31, 23, 0, 0, 0, time.UTC), req.End.UTC())
	require.NotNil(t, req.HourFrom)
	assert.Equal(t, 22, *req.HourFrom)
	assert.Equal(t, 4, *req.HourTo)
	assert.Equal(t, []string{"temp_air", "rh"}, req.Variables)
	assert.Equal(t, []string{"heat_index"}, req.Metrics)
	assert.Equal(t, MissingBlank, req.OnMissing)
}

func TestParseRequestYAML_BoundForms(t *testing.T) {
	req, err := ParseRequestYAML([]byte("start: 06-01\nend: 2001-06-30 12:00\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(0, time.June, 1, 0, 0, 0, 0, time.UTC), req.Start)
	assert.Equal(t, time.Date(2001, time.June, 30, 12, 0, 0, 0, time.UTC), req.End)

	req, err = ParseRequestYAML([]byte("end: 2001-06-30\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2001, time.June, 30, 23, 59, 59, 0, time.UTC), req.End)

	_, err = ParseRequestYAML([]byte("start: midsummer\n"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseRequestYAML_Empty(t *testing.T) {
	req, err := ParseRequestYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Request{}, req)
}

func TestParseRequestYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "colour: red\n"},
		{"bad policy", "on_missing: ignore\n"},
		{"hour out of range", "hour_to: 30\n"},
		{"not a mapping", "- temp_air\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequestYAML([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestHourWindow(t *testing.T) {
	w := hourWindow{from: 22, to: 2}
	assert.True(t, w.contains(23))
	assert.True(t, w.contains(0))
	assert.False(t, w.contains(12))

	w = hourWindow{from: 8, to: 8}
	assert.True(t, w.contains(8))
	assert.False(t, w.contains(9))
}

func TestRequest_ForColumn(t *testing.T) {
	base := Request{Variables: []string{"rh"}, Metrics: []string{"humidex"}, OnMissing: MissingBlank}

	field := base.ForColumn("temp_air")
	assert.Equal(t, []string{"temp_air"}, field.Variables)
	assert.Empty(t, field.Metrics)
	assert.Equal(t, MissingBlank, field.OnMissing)

	metric := base.ForColumn("wind_chill")
	assert.Equal(t, []string{"wind_chill"}, metric.Metrics)
	assert.Equal(t, []string{"temp_air", "wind_speed"}, metric.Variables)
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in   string
		end  bool
		want time.Time
	}{
		{"", false, time.Time{}},
		{"2001-07-01", false, time.Date(2001, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"2001-07-01", true, time.Date(2001, time.July, 1, 23, 59, 59, 0, time.UTC)},
		{"07-15", false, time.Date(0, time.July, 15, 0, 0, 0, 0, time.UTC)},
		{"02-29", true, time.Date(0, time.February, 29, 23, 59, 59, 0, time.UTC)},
		{"2001-07-01T06:00", true, time.Date(2001, time.July, 1, 6, 0, 0, 0, time.UTC)},
		{"2001-07-01 06:30", false, time.Date(2001, time.July, 1, 6, 30, 0, 0, time.UTC)},
		{"2001-07-01T06:00:00Z", true, time.Date(2001, time.July, 1, 6, 0, 0, 0, time.UTC)},
		{"2001-01-01T05:00:00+02:00", true, time.Date(2001, time.January, 1, 5, 0, 0, 0, time.UTC)},
		{"2001-01-01T00:30:00-07:00", false, time.Date(2001, time.January, 1, 0, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseBound(tt.in, tt.end)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%q: want %s, got %s", tt.in, tt.want, got)
	}

	_, err := ParseBound("July 4th", false)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
