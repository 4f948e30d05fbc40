package derive

import "github.com/couchcryptid/epw-viewer/internal/epw"

// Display categories.
const (
	CategoryTemperature = "temperature"
	CategoryHumidity    = "humidity"
	CategoryRadiation   = "radiation"
	CategoryIlluminance = "illuminance"
	CategoryWind        = "wind"
	CategoryPressure    = "pressure"
	CategorySky         = "sky"
	CategoryOther       = "other"
	CategoryDerived     = "derived"
)

const defaultColorscale = "viridis"

// CatalogEntry is the presentation metadata for a field or metric.
type CatalogEntry struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Unit       string   `json:"unit"`
	Category   string   `json:"category"`
	Colorscale string   `json:"colorscale"`
	Default    bool     `json:"default"`
	Derived    bool     `json:"derived"`
	Inputs     []string `json:"inputs,omitempty"`
}

var fieldCategory = map[epw.Field]struct {
	category, colorscale string
}{
	epw.TempAir:                      {CategoryTemperature, "rdylbu_r"},
	epw.TempDew:                      {CategoryTemperature, "rdylbu_r"},
	epw.RelativeHumidity:             {CategoryHumidity, "ylgnbu_r"},
	epw.DirectNormalRadiation:        {CategoryRadiation, "inferno"},
	epw.DiffuseHorizontalRadiation:   {CategoryRadiation, "inferno"},
	epw.GlobalHorizontalRadiation:    {CategoryRadiation, "inferno"},
	epw.HorizontalInfraredRadiation:  {CategoryRadiation, "inferno"},
	epw.DirectNormalIlluminance:      {CategoryIlluminance, "ylorrd"},
	epw.DiffuseHorizontalIlluminance: {CategoryIlluminance, "ylorrd"},
	epw.GlobalHorizontalIlluminance:  {CategoryIlluminance, "ylorrd"},
	epw.WindSpeed:                    {CategoryWind, "blues"},
	epw.WindDirection:                {CategoryWind, "hsv"},
	epw.AtmosphericPressure:          {CategoryPressure, "plasma"},
	epw.TotalSkyCover:                {CategorySky, "greys"},
}

// Catalog lists every measurement field followed by every metric.
func Catalog() []CatalogEntry {
	defaults := make(map[epw.Field]bool, len(DefaultVariables))
	for _, f := range DefaultVariables {
		defaults[f] = true
	}

	fields := epw.Fields()
	out := make([]CatalogEntry, 0, len(fields)+len(metrics))
	for _, fi := range fields {
		e := CatalogEntry{
			Name:       fi.Name,
			Label:      fi.Label,
			Unit:       fi.Unit,
			Category:   CategoryOther,
			Colorscale: defaultColorscale,
			Default:    defaults[fi.Field],
		}
		if c, ok := fieldCategory[fi.Field]; ok {
			e.Category, e.Colorscale = c.category, c.colorscale
		}
		out = append(out, e)
	}
	for _, m := range metrics {
		out = append(out, CatalogEntry{
			Name:       m.Name,
			Label:      m.Label,
			Unit:       m.Unit,
			Category:   CategoryDerived,
			Colorscale: defaultColorscale,
			Derived:    true,
			Inputs:     m.InputNames(),
		})
	}
	return out
}

// Colorscale returns the default colour scale for a field or metric name.
func Colorscale(name string) string {
	if f, ok := epw.LookupField(name); ok {
		if c, ok := fieldCategory[f]; ok {
			return c.colorscale
		}
	}
	return defaultColorscale
}
