// Package epw decodes and encodes EnergyPlus Weather (EPW) files.
//
// # File Layout
//
// An EPW file is plain comma-separated text. The first line is the LOCATION
// header:
//
//	LOCATION,<city>,<state/province>,<country>,<source>,<WMO>,<lat>,<lon>,<tz>,<elevation>
//
// Latitude is degrees north (south negative), longitude degrees east (west
// negative), time zone is hours from GMT (west negative) and elevation is
// meters above sea level.
//
// Seven more header lines usually follow, each introduced by a keyword:
// DESIGN CONDITIONS, TYPICAL/EXTREME PERIODS, GROUND TEMPERATURES,
// HOLIDAYS/DAYLIGHT SAVINGS, COMMENTS 1, COMMENTS 2 and DATA PERIODS. They are
// optional here and preserved verbatim. The third field of DATA PERIODS is the
// number of records per hour.
//
// # Data Lines
//
// Every remaining line is one interval of 35 positional columns. The first
// five are calendar integers (year, month, day, hour, minute). Hour runs 1..24
// and labels the interval that ends at that hour, so hour 1 covers 00:00-01:00.
// For hourly files the minute is either 0 or 60; both mean the full hour.
//
// Typical meteorological years (TMY) stitch months from different source years
// together, so the year column is not monotonic. Records are therefore placed
// on a single reference year: 2000 when the file carries February 29, 2001
// otherwise. Ordering and gap checks use that timeline.
//
// # Missing Values
//
// Each measurement column has a documented sentinel, e.g. 99.9 for dry-bulb
// temperature or 999 for wind speed. Any value at or above the column's
// threshold decodes to a missing [Reading], never to the sentinel itself.
// See [Fields] for the full column table.
package epw
