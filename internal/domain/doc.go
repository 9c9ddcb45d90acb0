// Package domain derives presentation values from NOAA Local Climatological
// Data (LCD) observation fields.
//
// # Data Source
//
// Observations come from LCD CSV exports (https://www.ncei.noaa.gov/products/land-based-station/local-climatological-data).
// Each row is one station reading; the DATE column is local standard time in
// "2006-01-02T15:04:05" form and rows are ordered by it. Stations do not record
// every field on every reading, so most columns are frequently blank.
//
// # LCD Field Conventions
//
// Temperatures (HourlyDryBulbTemperature, HourlyDewPointTemperature):
//
//	Whole degrees Fahrenheit, e.g. "72".
//
// Relative humidity (HourlyRelativeHumidity):
//
//	Whole percent, 0-100.
//
// Visibility (HourlyVisibility):
//
//	Statute miles as a decimal, e.g. "10.00"; truncated to whole miles.
//
// Wind (HourlyWindDirection, HourlyWindSpeed):
//
//	Direction in degrees from true north; "0" with calm air. Speed in mph.
//	Degrees map onto a 16-point compass by round(deg / 22.5) mod 16.
//
// Sky conditions (HourlySkyConditions):
//
//	Repeated "CCC:NN HHH" chunks, e.g. "FEW:02 70 SCT:04 200 BKN:07 250".
//	CCC is cloud cover (CLR, FEW, SCT, BKN, OVC), NN the layer coverage in
//	oktas and HHH the layer height in hundreds of feet. The last chunk is
//	the best summary of the sky.
//
// Present weather (HourlyPresentWeatherType):
//
//	Pipe-separated groups of AU, AW and MW codes, e.g. "-RA:02 BR:1 |RA |RA".
//	The first uppercase run of each group names the phenomenon.
//
// # Heat Index
//
// The NWS Rothfusz regression, applied only at 80°F and above with relative
// humidity of 40% or more. See [HeatIndex].
//
// # Simulation Year
//
// A forecast reads historical data but is displayed in a future year chosen
// so the weekday of today's date matches. See [SimulationYear].
package domain
