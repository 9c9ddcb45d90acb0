package domain

// LCD column names read by the forecast.
const (
	FieldDate                = "DATE"
	FieldDryBulbTemperature  = "HourlyDryBulbTemperature"
	FieldDewPointTemperature = "HourlyDewPointTemperature"
	FieldRelativeHumidity    = "HourlyRelativeHumidity"
	FieldSkyConditions       = "HourlySkyConditions"
	FieldWindDirection       = "HourlyWindDirection"
	FieldWindSpeed           = "HourlyWindSpeed"
	FieldPresentWeatherType  = "HourlyPresentWeatherType"
	FieldVisibility          = "HourlyVisibility"
)

// ObservationFields lists every column the forecast reads, DATE first.
var ObservationFields = []string{
	FieldDate,
	FieldDryBulbTemperature,
	FieldDewPointTemperature,
	FieldRelativeHumidity,
	FieldSkyConditions,
	FieldWindDirection,
	FieldWindSpeed,
	FieldPresentWeatherType,
	FieldVisibility,
}

// DateLayout is the LCD DATE column format.
const DateLayout = "2006-01-02T15:04:05"

// skyConditions maps LCD cloud cover codes to prose.
var skyConditions = map[string]string{
	"CLR": "clear sky",
	"FEW": "few clouds",
	"SCT": "scattered clouds",
	"BKN": "broken clouds",
	"OVC": "overcast",
}

// weatherTypes maps present-weather codes to prose.
var weatherTypes = map[string]string{
	"FG":   "fog",
	"TS":   "thunder",
	"PL":   "sleet",
	"GR":   "hail",
	"GL":   "ice sheeting",
	"DU":   "dust",
	"HZ":   "haze",
	"BLSN": "drifting snow",
	"FC":   "funnel cloud",
	"WIND": "high winds",
	"BLPY": "blowing spray",
	"BR":   "mist",
	"DZ":   "drizzle",
	"FZDZ": "freezing drizzle",
	"RA":   "rain",
	"FZRA": "freezing rain",
	"SN":   "snow",
	"UP":   "precipitation",
	"MIFG": "ground fog",
	"FZFG": "freezing fog",
}

// compassPoints is the 16-point compass starting at north.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// carbonCounts is a rough atmospheric CO2 estimate in ppm for each degree
// Fahrenheit of warming, starting from 0.
// Source: National Academies, "Warming World" (2011).
var carbonCounts = [...]int{410, 480, 550, 630, 700, 800, 900, 1000, 1200, 1400}
