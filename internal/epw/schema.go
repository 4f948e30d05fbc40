package epw

import "strings"

// Field identifies a numeric measurement column of the data section.
type Field int

const (
	TempAir Field = iota
	TempDew
	RelativeHumidity
	AtmosphericPressure
	ExtraterrestrialHorizontalRadiation
	ExtraterrestrialDirectNormalRadiation
	HorizontalInfraredRadiation
	GlobalHorizontalRadiation
	DirectNormalRadiation
	DiffuseHorizontalRadiation
	GlobalHorizontalIlluminance
	DirectNormalIlluminance
	DiffuseHorizontalIlluminance
	ZenithLuminance
	WindDirection
	WindSpeed
	TotalSkyCover
	OpaqueSkyCover
	Visibility
	CeilingHeight
	PresentWeatherObservation
	PrecipitableWater
	AerosolOpticalDepth
	SnowDepth
	DaysSinceLastSnowfall
	Albedo
	LiquidPrecipitationDepth
	LiquidPrecipitationQuantity

	numFields
)

// NumFields is the number of numeric measurement columns.
const NumFields = int(numFields)

// Positions of the non-measurement columns.
const (
	colYear = iota
	colMonth
	colDay
	colHour
	colMinute
	colDataSource
	colPresentWeatherCodes = 27
)

// StandardColumns is the column count of a complete EPW data line.
const StandardColumns = 35

// minColumnsFloor keeps the calendar fields and source flags mandatory.
const minColumnsFloor = colDataSource + 1

// FieldInfo describes one measurement column.
type FieldInfo struct {
	Field  Field
	Name   string
	Label  string
	Unit   string
	Column int
	// MissingAt is the threshold at or above which a value is missing.
	MissingAt float64
	// Sentinel is the value written back for a missing reading.
	Sentinel float64
}

var fields = [numFields]FieldInfo{
	{TempAir, "temp_air", "Dry Bulb Temperature", "C", 6, 99.9, 99.9},
	{TempDew, "temp_dew", "Dew Point Temperature", "C", 7, 99.9, 99.9},
	{RelativeHumidity, "rh", "Relative Humidity", "%", 8, 999, 999},
	{AtmosphericPressure, "atmospheric_pressure", "Barometric Pressure", "Pa", 9, 999999, 999999},
	{ExtraterrestrialHorizontalRadiation, "extraterrestrial_horizontal_radiation", "Extraterrestrial Horizontal Radiation", "Wh/m2", 10, 9999, 9999},
	{ExtraterrestrialDirectNormalRadiation, "extraterrestrial_direct_normal_radiation", "Extraterrestrial Direct Normal Radiation", "Wh/m2", 11, 9999, 9999},
	{HorizontalInfraredRadiation, "horizontal_infrared_radiation", "Horizontal Infrared Radiation", "Wh/m2", 12, 9999, 9999},
	{GlobalHorizontalRadiation, "ghi", "Global Horizontal Radiation", "Wh/m2", 13, 9999, 9999},
	{DirectNormalRadiation, "dni", "Direct Normal Radiation", "Wh/m2", 14, 9999, 9999},
	{DiffuseHorizontalRadiation, "dhi", "Diffuse Horizontal Radiation", "Wh/m2", 15, 9999, 9999},
	{GlobalHorizontalIlluminance, "global_horizontal_illuminance", "Global Horizontal Illuminance", "lux", 16, 999900, 999999},
	{DirectNormalIlluminance, "direct_normal_illuminance", "Direct Normal Illuminance", "lux", 17, 999900, 999999},
	{DiffuseHorizontalIlluminance, "diffuse_horizontal_illuminance", "Diffuse Horizontal Illuminance", "lux", 18, 999900, 999999},
	{ZenithLuminance, "zenith_luminance", "Zenith Luminance", "Cd/m2", 19, 9999, 9999},
	{WindDirection, "wind_direction", "Wind Direction", "deg", 20, 999, 999},
	{WindSpeed, "wind_speed", "Wind Speed", "m/s", 21, 999, 999},
	{TotalSkyCover, "total_sky_cover", "Total Sky Cover", "tenths", 22, 99, 99},
	{OpaqueSkyCover, "opaque_sky_cover", "Opaque Sky Cover", "tenths", 23, 99, 99},
	{Visibility, "visibility", "Visibility", "km", 24, 9999, 9999},
	{CeilingHeight, "ceiling_height", "Ceiling Height", "m", 25, 99999, 99999},
	{PresentWeatherObservation, "present_weather_observation", "Present Weather Observation", "", 26, 9, 9},
	{PrecipitableWater, "precipitable_water", "Precipitable Water", "mm", 28, 999, 999},
	{AerosolOpticalDepth, "aerosol_optical_depth", "Aerosol Optical Depth", "thousandths", 29, 0.999, 0.999},
	{SnowDepth, "snow_depth", "Snow Depth", "cm", 30, 999, 999},
	{DaysSinceLastSnowfall, "days_since_last_snowfall", "Days Since Last Snowfall", "days", 31, 99, 99},
	{Albedo, "albedo", "Albedo", "", 32, 999, 999},
	{LiquidPrecipitationDepth, "liquid_precipitation_depth", "Liquid Precipitation Depth", "mm", 33, 999, 999},
	{LiquidPrecipitationQuantity, "liquid_precipitation_quantity", "Liquid Precipitation Quantity", "hr", 34, 99, 99},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, fi := range fields {
		m[fi.Name] = fi.Field
	}
	return m
}()

// Fields returns the measurement column table in column order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(fields))
	copy(out, fields[:])
	return out
}

// Info returns the column description for f.
func (f Field) Info() FieldInfo {
	return fields[f]
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fields[f].Name
}

// LookupField resolves a column name such as "temp_air". Matching is
// case-insensitive and ignores surrounding whitespace.
func LookupField(name string) (Field, bool) {
	f, ok := fieldsByName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

func (fi FieldInfo) isMissing(v float64) bool {
	return v >= fi.MissingAt
}
