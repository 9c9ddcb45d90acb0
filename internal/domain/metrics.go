package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// skyChunkRe matches the final cloud layer at the end of an LCD sky string,
	// e.g. "FEW:02 70 SCT:04 200 BKN:07 250" -> BKN.
	skyChunkRe = regexp.MustCompile(`([A-Z]{3}):(\d{2})(?: \d{1,3})?\s*$`)

	// weatherCodeRe picks the first uppercase run of a present-weather group,
	// e.g. "-RA:02 BR:1 " -> RA.
	weatherCodeRe = regexp.MustCompile(`[A-Z]+`)
)

// maxSimulationYearSearch bounds SimulationYear. Weekday/leap-year alignment
// repeats within 28 years, so a match always exists well inside the bound.
const maxSimulationYearSearch = 50

// SummaryKind selects the reduction applied by Summarize.
type SummaryKind string

const (
	SummaryMin  SummaryKind = "min"
	SummaryMax  SummaryKind = "max"
	SummaryMean SummaryKind = "mean"
)

// ParseWhole parses a whole-number field such as a temperature.
func ParseWhole(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrParse)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	return v, nil
}

// ParseTruncated parses a decimal field and truncates it toward zero,
// e.g. visibility "10.00" -> 10.
func ParseTruncated(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrParse)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrParse, raw)
	}
	return int(v), nil
}

// HeatIndex evaluates the NWS Rothfusz regression for temperature t (°F) and
// relative humidity r (%), truncated to whole degrees. It reports false when
// the regression does not apply: below 80°F or below 40% humidity.
// See https://en.wikipedia.org/wiki/Heat_index.
func HeatIndex(t, r int) (int, bool) {
	if t < 80 || r < 40 {
		return 0, false
	}
	ft, fr := float64(t), float64(r)
	hi := -42.379 +
		2.04901523*ft +
		10.14333127*fr -
		0.22475541*ft*fr -
		6.83783e-03*ft*ft -
		5.481717e-02*fr*fr +
		1.22874e-03*ft*ft*fr +
		8.5282e-04*ft*fr*fr -
		1.99e-06*ft*ft*fr*fr
	return int(hi), true
}

// CompassPoint maps degrees from true north onto the 16-point compass.
func CompassPoint(degrees float64) string {
	i := int(math.Round(degrees/22.5)) % 16
	if i < 0 {
		i += 16
	}
	return compassPoints[i]
}

// WindDescription formats LCD wind direction and speed, e.g. "13mph SW".
// Calm air (direction 0) is "still".
func WindDescription(direction, speed string) (string, error) {
	d, err := ParseWhole(direction)
	if err != nil {
		return "", fmt.Errorf("wind direction: %w", err)
	}
	if d == 0 {
		return "still", nil
	}
	s, err := ParseWhole(speed)
	if err != nil {
		return "", fmt.Errorf("wind speed: %w", err)
	}
	return fmt.Sprintf("%dmph %s", s, CompassPoint(float64(d))), nil
}

// SkyCondition describes the last cloud layer of an LCD sky string.
// It returns "" when the string has no layer chunk at its end.
func SkyCondition(raw string) (string, error) {
	m := skyChunkRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return "", nil
	}
	prose, ok := skyConditions[m[1]]
	if !ok {
		return "", fmt.Errorf("%w: sky condition %q", ErrUnknownCode, m[1])
	}
	return prose, nil
}

// WeatherType describes LCD present-weather groups, e.g. "FG:2 |TS |RA" ->
// "fog, thunder, rain". Only the first code of each group is read, and
// duplicates are dropped keeping first-seen order.
func WeatherType(raw string) (string, error) {
	var (
		seen  = make(map[string]bool)
		types []string
	)
	for _, group := range strings.Split(raw, "|") {
		code := weatherCodeRe.FindString(group)
		if code == "" {
			continue
		}
		prose, ok := weatherTypes[code]
		if !ok {
			return "", fmt.Errorf("%w: weather type %q", ErrUnknownCode, code)
		}
		if seen[prose] {
			continue
		}
		seen[prose] = true
		types = append(types, prose)
	}
	return strings.Join(types, ", "), nil
}

// Summarize reduces whole-number readings by kind. Blank readings are
// skipped; mean is truncated toward zero.
func Summarize(kind SummaryKind, raws []string) (int, error) {
	switch kind {
	case SummaryMin, SummaryMax, SummaryMean:
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSummary, kind)
	}

	values := make([]int, 0, len(raws))
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := ParseWhole(raw)
		if err != nil {
			return 0, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return 0, ErrEmptyAggregation
	}

	switch kind {
	case SummaryMin:
		m := values[0]
		for _, v := range values[1:] {
			m = min(m, v)
		}
		return m, nil
	case SummaryMax:
		m := values[0]
		for _, v := range values[1:] {
			m = max(m, v)
		}
		return m, nil
	default:
		sum := 0
		for _, v := range values {
			sum += v
		}
		return sum / len(values), nil
	}
}

// CarbonCount estimates atmospheric CO2 (ppm) for a warming of i °F.
func CarbonCount(i int) (int, error) {
	if i < 0 || i >= len(carbonCounts) {
		return 0, fmt.Errorf("%w: carbon count %d", ErrIndexOutOfRange, i)
	}
	return carbonCounts[i], nil
}

// SimulationYear returns the first year >= minYear in which t's month and
// day fall on the same weekday as t. Years where the date does not exist
// (February 29 outside leap years) are skipped.
func SimulationYear(t time.Time, minYear int) (int, error) {
	want := t.Weekday()
	for y := minYear; y < minYear+maxSimulationYearSearch; y++ {
		c := time.Date(y, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if c.Month() != t.Month() {
			continue
		}
		if c.Weekday() == want {
			return y, nil
		}
	}
	return 0, fmt.Errorf("%w: no year in [%d, %d) matches %s",
		ErrSearchBoundExceeded, minYear, minYear+maxSimulationYearSearch, want)
}
