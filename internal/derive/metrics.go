package derive

import (
	"math"
	"strings"

	"github.com/couchcryptid/epw-viewer/internal/epw"
)

const maxInputs = 3

// Metric is a per-row value computed from one or more measurement fields.
type Metric struct {
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Unit   string      `json:"unit"`
	Inputs []epw.Field `json:"-"`
	// compute receives the inputs in declaration order. ok is false when the
	// result is undefined for these inputs.
	compute func(in []float64) (v float64, ok bool)
}

var metrics = []Metric{
	{
		Name:    "heat_index",
		Label:   "Heat Index",
		Unit:    "C",
		Inputs:  []epw.Field{epw.TempAir, epw.RelativeHumidity},
		compute: heatIndex,
	},
	{
		Name:    "wind_chill",
		Label:   "Wind Chill",
		Unit:    "C",
		Inputs:  []epw.Field{epw.TempAir, epw.WindSpeed},
		compute: windChill,
	},
	{
		Name:    "humidex",
		Label:   "Humidex",
		Unit:    "C",
		Inputs:  []epw.Field{epw.TempAir, epw.TempDew},
		compute: humidex,
	},
	{
		Name:    "apparent_temperature",
		Label:   "Apparent Temperature",
		Unit:    "C",
		Inputs:  []epw.Field{epw.TempAir, epw.RelativeHumidity, epw.WindSpeed},
		compute: apparentTemperature,
	},
	{
		Name:    "wet_bulb",
		Label:   "Wet Bulb Temperature",
		Unit:    "C",
		Inputs:  []epw.Field{epw.TempAir, epw.RelativeHumidity},
		compute: wetBulb,
	},
	{
		Name:    "humidity_ratio",
		Label:   "Humidity Ratio",
		Unit:    "g/kg",
		Inputs:  []epw.Field{epw.TempAir, epw.RelativeHumidity, epw.AtmosphericPressure},
		compute: humidityRatioGramsPerKg,
	},
	{
		Name:    "enthalpy",
		Label:   "Moist Air Enthalpy",
		Unit:    "kJ/kg",
		Inputs:  []epw.Field{epw.TempAir, epw.RelativeHumidity, epw.AtmosphericPressure},
		compute: enthalpy,
	},
}

// Metrics lists the available metrics.
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics)
	return out
}

// LookupMetric resolves a metric name, ignoring case and surrounding space.
func LookupMetric(name string) (Metric, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// InputNames returns the field names the metric reads.
func (m Metric) InputNames() []string {
	out := make([]string, len(m.Inputs))
	for i, f := range m.Inputs {
		out[i] = f.String()
	}
	return out
}

// Apply evaluates the metric on one record.
func (m Metric) Apply(rec *epw.HourlyRecord) (epw.Reading, error) {
	var buf [maxInputs]float64
	in := buf[:len(m.Inputs)]
	for i, f := range m.Inputs {
		r := rec.Get(f)
		if !r.Valid {
			return epw.Reading{}, &MissingInputError{Metric: m.Name, Field: f.String(), Time: rec.Time}
		}
		in[i] = r.Value
	}
	v, ok := m.compute(in)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return epw.Reading{}, nil
	}
	return epw.Present(v), nil
}

// heatIndex follows the NWS procedure: the simple Steadman estimate, replaced
// by the Rothfusz regression with its low and high humidity adjustments once
// the estimate reaches 80 F.
func heatIndex(in []float64) (float64, bool) {
	rh := in[1]
	f := in[0]*9/5 + 32

	hi := 0.5 * (f + 61.0 + (f-68.0)*1.2 + rh*0.094)
	if (hi+f)/2 >= 80 {
		hi = -42.379 + 2.04901523*f + 10.14333127*rh -
			0.22475541*f*rh - 0.00683783*f*f - 0.05481717*rh*rh +
			0.00122874*f*f*rh + 0.00085282*f*rh*rh - 0.00000199*f*f*rh*rh
		switch {
		case rh < 13 && f >= 80 && f <= 112:
			hi -= (13 - rh) / 4 * math.Sqrt((17-math.Abs(f-95))/17)
		case rh > 85 && f >= 80 && f <= 87:
			hi += (rh - 85) / 10 * (87 - f) / 5
		}
	}
	return (hi - 32) * 5 / 9, true
}

// windChill is the 2001 NWS/MSC index. Outside its domain (above 10 C or at
// or below 4.8 km/h) it returns the air temperature.
func windChill(in []float64) (float64, bool) {
	t := in[0]
	v := in[1] * 3.6
	if t > 10 || v <= 4.8 {
		return t, true
	}
	p := math.Pow(v, 0.16)
	return 13.12 + 0.6215*t - 11.37*p + 0.3965*t*p, true
}

func humidex(in []float64) (float64, bool) {
	t, td := in[0], in[1]
	e := 6.11 * math.Exp(5417.7530*(1/273.16-1/(273.15+td)))
	return t + 0.5555*(e-10), true
}

// apparentTemperature is Steadman's non-radiative formula.
func apparentTemperature(in []float64) (float64, bool) {
	t, rh, ws := in[0], in[1], in[2]
	e := rh / 100 * 6.105 * math.Exp(17.27*t/(237.7+t))
	return t + 0.33*e - 0.70*ws - 4.00, true
}

// wetBulb is Stull's 2011 empirical fit at sea-level pressure.
func wetBulb(in []float64) (float64, bool) {
	t, rh := in[0], in[1]
	return t*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(t+rh) - math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) -
		4.686035, true
}

// humidityRatio returns kg of water vapour per kg of dry air.
func humidityRatio(t, rh, p float64) (float64, bool) {
	pws := 611.2 * math.Exp(17.67*t/(t+243.5))
	pw := rh / 100 * pws
	if p-pw <= 0 {
		return 0, false
	}
	return 0.621945 * pw / (p - pw), true
}

func humidityRatioGramsPerKg(in []float64) (float64, bool) {
	w, ok := humidityRatio(in[0], in[1], in[2])
	return w * 1000, ok
}

func enthalpy(in []float64) (float64, bool) {
	t := in[0]
	w, ok := humidityRatio(t, in[1], in[2])
	if !ok {
		return 0, false
	}
	return 1.006*t + w*(2501+1.86*t), true
}
