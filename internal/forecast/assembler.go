// Package forecast turns historical observations into a speculative
// forecast: one current point, an hourly series and a daily series.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/dataset"
	"github.com/johnjung/speculative-weather-report/internal/domain"
	"github.com/johnjung/speculative-weather-report/internal/observability"
)

// MaxHourlyFallback bounds how many earlier hours an hourly temperature
// lookup retries after a parse failure.
const MaxHourlyFallback = 24

// Label formats.
const (
	asOfLayout    = "3:04PM"
	currentLayout = "Monday, January 2"
	hourlyLayout  = "3PM"
	dailyLayout   = "Mon"
)

// NewsSource supplies the canned news and advertisement shown beside a
// forecast.
type NewsSource interface {
	News() []string
	Advertisement() string
}

// Options sizes a forecast.
type Options struct {
	SimulationMinYear int
	HourlyCount       int
	DailyCount        int
	CarbonIndex       int
	SummaryCacheSize  int
}

// DefaultOptions returns 24 hourly and 6 daily points displayed from 2060.
func DefaultOptions() Options {
	return Options{
		SimulationMinYear: 2060,
		HourlyCount:       24,
		DailyCount:        6,
		CarbonIndex:       0,
		SummaryCacheSize:  64,
	}
}

// Assembler builds forecast points from a dataset. It is safe for
// concurrent use.
type Assembler struct {
	ds      *dataset.Dataset
	opts    Options
	news    NewsSource
	cache   *summaryCache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAssembler creates an Assembler over ds. news may be nil.
func NewAssembler(ds *dataset.Dataset, opts Options, news NewsSource, logger *slog.Logger, metrics *observability.Metrics) *Assembler {
	metrics.DatasetRecords.Set(float64(ds.Len()))
	return &Assembler{
		ds:      ds,
		opts:    opts,
		news:    news,
		cache:   newSummaryCache(opts.SummaryCacheSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Options returns the options the assembler was built with.
func (a *Assembler) Options() Options { return a.opts }

// CheckReadiness reports an error when the dataset holds no records.
func (a *Assembler) CheckReadiness(_ context.Context) error {
	if a.ds.Len() == 0 {
		return errors.New("historical dataset has no records")
	}
	return nil
}

// Observe binds the dataset to t, sharing the assembler's summary cache.
func (a *Assembler) Observe(t time.Time) *Observation {
	return &Observation{ds: a.ds, at: t, cache: a.cache, metrics: a.metrics}
}

// Assemble builds the current point with HourlyCount hourly and DailyCount
// daily points, plus news when a source is wired.
func (a *Assembler) Assemble(t time.Time) Forecast {
	return a.AssembleSeries(t, a.opts.HourlyCount, a.opts.DailyCount)
}

// AssembleSeries is Assemble with explicit series lengths.
func (a *Assembler) AssembleSeries(t time.Time, hours, days int) Forecast {
	start := time.Now()
	f := Forecast{
		Current: a.Current(t),
		Hourly:  a.Hourly(t, hours),
		Daily:   a.Daily(t, days),
	}
	if a.news != nil {
		f.hasNews = true
		f.News = a.news.News()
		f.Advertisement = a.news.Advertisement()
	}
	a.metrics.ForecastsAssembled.WithLabelValues("full").Inc()
	a.metrics.AssembleDuration.Observe(time.Since(start).Seconds())
	return f
}

// Current builds the full field set for t.
func (a *Assembler) Current(t time.Time) Point {
	obs := a.Observe(t)
	p := Point{Granularity: Current, At: t}

	asOf, err := obs.AsOf()
	a.set(&p, "as_of", asOf.Format(asOfLayout), err)
	a.set(&p, "human_readable_datetime", t.Format(currentLayout), nil)

	year, err := domain.SimulationYear(t, a.opts.SimulationMinYear)
	a.set(&p, "simulation_year", year, err)

	carbon, err := domain.CarbonCount(a.opts.CarbonIndex)
	a.set(&p, "carbon_count", carbon, err)

	dew, err := obs.DewPoint()
	a.set(&p, "dew_point", dew, err)

	hi, ok, err := obs.HeatIndex()
	var heat any
	if ok {
		heat = hi
	}
	a.set(&p, "heat_index", heat, err)

	rh, err := obs.RelativeHumidity()
	a.set(&p, "relative_humidity", rh, err)

	sky, err := obs.SkyConditions()
	a.set(&p, "sky_conditions", sky, err)

	temp, err := obs.Temperature()
	a.set(&p, "temperature", temp, err)

	a.setSummaries(&p, obs)

	vis, err := obs.Visibility()
	a.set(&p, "visibility", vis, err)

	wt, err := obs.WeatherType()
	a.set(&p, "weather_type", wt, err)

	wind, err := obs.WindDirectionAndSpeed()
	a.set(&p, "wind_direction_and_speed", wind, err)

	a.metrics.ForecastsAssembled.WithLabelValues(Current.String()).Inc()
	return p
}

// Hourly builds n points at whole hours 1..n after t.
func (a *Assembler) Hourly(t time.Time, n int) Series {
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	series := make(Series, 0, n)
	for h := 1; h <= n; h++ {
		target := base.Add(time.Duration(h) * time.Hour)
		p := Point{Granularity: Hourly, At: target}

		temp, readAt, err := a.hourlyTemperature(target)

		a.set(&p, "dt", target.Format(domain.DateLayout), nil)
		if err != nil {
			// Counted once, under temperature.
			p.set("as_of", nil, err)
		} else {
			asOf, asOfErr := a.Observe(readAt).AsOf()
			a.set(&p, "as_of", asOf.Format(asOfLayout), asOfErr)
		}
		a.set(&p, "human_readable_datetime", target.Format(hourlyLayout), nil)
		a.set(&p, "temperature", temp, err)

		a.metrics.ForecastsAssembled.WithLabelValues(Hourly.String()).Inc()
		series = append(series, p)
	}
	return series
}

// hourlyTemperature reads the temperature at target, stepping back one hour
// at a time while the reading fails to parse.
func (a *Assembler) hourlyTemperature(target time.Time) (int, time.Time, error) {
	var last error
	for step := 0; step <= MaxHourlyFallback; step++ {
		at := target.Add(-time.Duration(step) * time.Hour)
		v, err := a.Observe(at).Temperature()
		if err == nil {
			return v, at, nil
		}
		if !errors.Is(err, domain.ErrParse) {
			return 0, at, err
		}
		last = err
	}
	return 0, target, fmt.Errorf("%w: %d earlier hours tried, last error: %v",
		domain.ErrFallbackExhausted, MaxHourlyFallback, last)
}

// Daily builds n points at calendar days 1..n after t.
func (a *Assembler) Daily(t time.Time, n int) Series {
	base := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	series := make(Series, 0, n)
	for d := 1; d <= n; d++ {
		target := base.AddDate(0, 0, d)
		p := Point{Granularity: Daily, At: target}

		obs := a.Observe(target)

		a.set(&p, "dt", target.Format(domain.DateLayout), nil)
		asOf, err := obs.AsOf()
		a.set(&p, "as_of", asOf.Format(asOfLayout), err)
		a.set(&p, "human_readable_datetime", target.Format(dailyLayout), nil)
		a.setSummaries(&p, obs)

		a.metrics.ForecastsAssembled.WithLabelValues(Daily.String()).Inc()
		series = append(series, p)
	}
	return series
}

func (a *Assembler) setSummaries(p *Point, obs *Observation) {
	for _, kind := range []domain.SummaryKind{domain.SummaryMin, domain.SummaryMean, domain.SummaryMax} {
		v, err := obs.TemperatureSummary(kind)
		a.set(p, "temperature_"+string(kind), v, err)
	}
}

func (a *Assembler) set(p *Point, name string, value any, err error) {
	if err != nil {
		a.metrics.FieldErrors.WithLabelValues(name, domain.Reason(err)).Inc()
		a.logger.Debug("field unavailable",
			"granularity", p.Granularity.String(),
			"field", name,
			"at", p.At.Format(domain.DateLayout),
			"error", err,
		)
	}
	p.set(name, value, err)
}
