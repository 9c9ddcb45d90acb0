package forecast

import (
	"testing"

	"github.com/johnjung/speculative-weather-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservation_Readings(t *testing.T) {
	ds := loadFixture(t, fixtureCSV)
	obs := NewObservation(ds, at("2019-05-01T19:00:00"))

	temp, err := obs.Temperature()
	require.NoError(t, err)
	assert.Equal(t, 70, temp)

	vis, err := obs.Visibility()
	require.NoError(t, err)
	assert.Equal(t, 0, vis)

	asOf, err := obs.AsOf()
	require.NoError(t, err)
	assert.Equal(t, at("2019-05-01T18:00:00"), asOf)

	wind, err := obs.WindDirectionAndSpeed()
	require.NoError(t, err)
	assert.Equal(t, "6mph SW", wind)

	sky, err := obs.SkyConditions()
	require.NoError(t, err)
	assert.Equal(t, "overcast", sky)
}

func TestObservation_StillAir(t *testing.T) {
	obs := NewObservation(loadFixture(t, fixtureCSV), at("2019-05-01T01:00:00"))

	wind, err := obs.WindDirectionAndSpeed()
	require.NoError(t, err)
	assert.Equal(t, "still", wind)
}

func TestObservation_HeatIndexSkipsHumidityWhenCool(t *testing.T) {
	body := "DATE,HourlyDryBulbTemperature,HourlyRelativeHumidity\n" +
		"2019-07-01T12:00:00,75,n/a\n" +
		"2019-07-01T13:00:00,91,n/a\n"
	ds := loadFixture(t, body)

	_, ok, err := NewObservation(ds, at("2019-07-01T12:30:00")).HeatIndex()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = NewObservation(ds, at("2019-07-01T13:30:00")).HeatIndex()
	require.ErrorIs(t, err, domain.ErrParse)
}

func TestObservation_TemperatureSummary(t *testing.T) {
	obs := NewObservation(loadFixture(t, fixtureCSV), at("2019-05-01T03:00:00"))

	lo, err := obs.TemperatureSummary(domain.SummaryMin)
	require.NoError(t, err)
	mean, err := obs.TemperatureSummary(domain.SummaryMean)
	require.NoError(t, err)
	hi, err := obs.TemperatureSummary(domain.SummaryMax)
	require.NoError(t, err)

	assert.Equal(t, []int{60, 69, 84}, []int{lo, mean, hi})

	_, err = obs.TemperatureSummary("median")
	require.ErrorIs(t, err, domain.ErrInvalidSummary)
}

func TestObservation_UnknownColumn(t *testing.T) {
	ds := loadFixture(t, "DATE,HourlyDryBulbTemperature\n2019-05-01T00:00:00,60\n")
	obs := NewObservation(ds, at("2019-05-01T03:00:00"))

	_, err := obs.Visibility()
	require.ErrorIs(t, err, domain.ErrUnknownField)
	_, err = obs.WeatherType()
	require.ErrorIs(t, err, domain.ErrUnknownField)
}
