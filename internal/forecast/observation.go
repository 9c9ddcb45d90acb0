package forecast

import (
	"fmt"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/dataset"
	"github.com/johnjung/speculative-weather-report/internal/domain"
	"github.com/johnjung/speculative-weather-report/internal/observability"
)

// Observation derives typed readings from the dataset as of one moment.
type Observation struct {
	ds      *dataset.Dataset
	at      time.Time
	cache   *summaryCache
	metrics *observability.Metrics
}

// NewObservation binds ds to the moment at.
func NewObservation(ds *dataset.Dataset, at time.Time) *Observation {
	return &Observation{ds: ds, at: at}
}

// AsOf returns the DATE of the reading in effect at the bound moment.
func (o *Observation) AsOf() (time.Time, error) {
	i, err := o.ds.ClosestPastIndex(o.at)
	if err != nil {
		return time.Time{}, err
	}
	date, err := o.ds.Date(i)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: DATE %q", domain.ErrParse, date)
	}
	return t, nil
}

// Temperature returns the dry-bulb temperature in °F.
func (o *Observation) Temperature() (int, error) {
	return o.whole(domain.FieldDryBulbTemperature)
}

// RelativeHumidity returns relative humidity in percent.
func (o *Observation) RelativeHumidity() (int, error) {
	return o.whole(domain.FieldRelativeHumidity)
}

// DewPoint returns the dew point temperature in °F.
func (o *Observation) DewPoint() (int, error) {
	return o.whole(domain.FieldDewPointTemperature)
}

// Visibility returns visibility in whole miles.
func (o *Observation) Visibility() (int, error) {
	raw, err := o.raw(domain.FieldVisibility)
	if err != nil {
		return 0, err
	}
	v, err := domain.ParseTruncated(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", domain.FieldVisibility, err)
	}
	return v, nil
}

// HeatIndex returns the heat index and true, or false when it does not
// apply. Humidity is only read once the temperature guard passes.
func (o *Observation) HeatIndex() (int, bool, error) {
	t, err := o.Temperature()
	if err != nil {
		return 0, false, err
	}
	if t < 80 {
		return 0, false, nil
	}
	r, err := o.RelativeHumidity()
	if err != nil {
		return 0, false, err
	}
	hi, ok := domain.HeatIndex(t, r)
	return hi, ok, nil
}

// WindDirectionAndSpeed returns e.g. "13mph SW" or "still".
func (o *Observation) WindDirectionAndSpeed() (string, error) {
	dir, err := o.raw(domain.FieldWindDirection)
	if err != nil {
		return "", err
	}
	speed, err := o.raw(domain.FieldWindSpeed)
	if err != nil {
		return "", err
	}
	return domain.WindDescription(dir, speed)
}

// SkyConditions describes the top reported cloud layer.
func (o *Observation) SkyConditions() (string, error) {
	raw, err := o.raw(domain.FieldSkyConditions)
	if err != nil {
		return "", err
	}
	return domain.SkyCondition(raw)
}

// WeatherType describes present weather, e.g. "rain, mist".
func (o *Observation) WeatherType() (string, error) {
	raw, err := o.raw(domain.FieldPresentWeatherType)
	if err != nil {
		return "", err
	}
	return domain.WeatherType(raw)
}

// TemperatureSummary reduces every temperature reading on the bound
// moment's calendar day.
func (o *Observation) TemperatureSummary(kind domain.SummaryKind) (int, error) {
	var pick func(daySummary) int
	switch kind {
	case domain.SummaryMin:
		pick = func(s daySummary) int { return s.Min }
	case domain.SummaryMean:
		pick = func(s daySummary) int { return s.Mean }
	case domain.SummaryMax:
		pick = func(s daySummary) int { return s.Max }
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidSummary, kind)
	}

	s, err := o.daySummary()
	if err != nil {
		return 0, err
	}
	return pick(s), nil
}

func (o *Observation) daySummary() (daySummary, error) {
	key := o.ds.PinKey(o.at)[:len("2006-01-02")]
	if o.cache != nil {
		if s, ok := o.cache.get(key); ok {
			o.countCache("hit")
			return s, nil
		}
		o.countCache("miss")
	}

	temps, err := o.ds.DayRange(domain.FieldDryBulbTemperature, o.at)
	if err != nil {
		return daySummary{}, err
	}
	var s daySummary
	for _, r := range []struct {
		kind domain.SummaryKind
		dst  *int
	}{
		{domain.SummaryMin, &s.Min},
		{domain.SummaryMean, &s.Mean},
		{domain.SummaryMax, &s.Max},
	} {
		v, err := domain.Summarize(r.kind, temps)
		if err != nil {
			return daySummary{}, fmt.Errorf("%s on %s: %w", r.kind, key, err)
		}
		*r.dst = v
	}

	if o.cache != nil {
		o.cache.put(key, s)
	}
	return s, nil
}

func (o *Observation) countCache(result string) {
	if o.metrics != nil {
		o.metrics.SummaryCache.WithLabelValues(result).Inc()
	}
}

func (o *Observation) raw(field string) (string, error) {
	v, err := o.ds.GetAt(field, o.at)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func (o *Observation) whole(field string) (int, error) {
	raw, err := o.raw(field)
	if err != nil {
		return 0, err
	}
	v, err := domain.ParseWhole(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}
