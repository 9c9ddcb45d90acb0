package main

import (
	"io"
	"strings"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/dataset"
	"github.com/johnjung/speculative-weather-report/internal/domain"
)

// gapThreshold is the longest spacing between consecutive observations
// before it is reported.
const gapThreshold = 6 * time.Hour

// table is an unvalidated CSV: headers plus rows of any length.
type table struct {
	headers []string
	rows    [][]string
	col     map[string]int
}

func loadTable(r io.Reader) (*table, error) {
	headers, rows, err := dataset.ReadRaw(r)
	if err != nil {
		return nil, err
	}
	t := &table{headers: headers, rows: rows, col: make(map[string]int, len(headers))}
	for i, h := range headers {
		t.col[strings.TrimSpace(h)] = i
	}
	return t, nil
}

// cell returns the trimmed value of name in row, and false when the column
// is missing or the row is too short.
func (t *table) cell(row []string, name string) (string, bool) {
	i, ok := t.col[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

// lineNum is the 1-based file line of data row i.
func lineNum(i int) int { return i + 2 }

// ── Phase 1: Header ──

func validateHeader(t *table) *phase {
	p := &phase{name: "Phase 1: Header"}
	if len(t.headers) == 0 {
		p.errorf("file has no header row")
		return p
	}

	known := make(map[string]bool, len(domain.ObservationFields))
	for _, f := range domain.ObservationFields {
		known[f] = true
		if _, ok := t.col[f]; !ok {
			p.errorf("missing column %q", f)
		}
	}

	var extra int
	for name := range t.col {
		if !known[name] {
			extra++
		}
	}
	if extra > 0 {
		p.notef("%d columns not read by the forecast", extra)
	}
	return p
}

// ── Phase 2: Row Shape ──

func validateRowShape(t *table) *phase {
	p := &phase{name: "Phase 2: Row Shape"}
	for i, row := range t.rows {
		if len(row) != len(t.headers) {
			p.errorf("line %d: %d fields, header has %d", lineNum(i), len(row), len(t.headers))
		}
	}
	if len(t.rows) == 0 {
		p.notef("no data rows")
	}
	return p
}

// ── Phase 3: DATE Order ──

func validateDateOrder(t *table) *phase {
	p := &phase{name: "Phase 3: DATE Order"}
	if _, ok := t.col[domain.FieldDate]; !ok {
		p.errorf("no %s column", domain.FieldDate)
		return p
	}

	var (
		prev       time.Time
		first      time.Time
		duplicates int
		gaps       int
	)
	for i, row := range t.rows {
		raw, _ := t.cell(row, domain.FieldDate)
		at, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			p.errorf("line %d: unparseable %s %q", lineNum(i), domain.FieldDate, raw)
			continue
		}
		if first.IsZero() {
			first = at
		}
		switch {
		case prev.IsZero():
		case at.Before(prev):
			p.errorf("line %d: %s %s is before %s", lineNum(i), domain.FieldDate,
				at.Format(domain.DateLayout), prev.Format(domain.DateLayout))
		case at.Equal(prev):
			duplicates++
		case at.Sub(prev) > gapThreshold:
			gaps++
		}
		if at.After(prev) {
			prev = at
		}
	}

	if !first.IsZero() {
		p.notef("range: %s .. %s", first.Format(domain.DateLayout), prev.Format(domain.DateLayout))
	}
	if duplicates > 0 {
		p.notef("%d rows share a DATE with the previous row", duplicates)
	}
	if gaps > 0 {
		p.notef("%d gaps longer than %s", gaps, gapThreshold)
	}
	return p
}

// ── Phase 4: Field Quality ──

// fieldCheck parses one column the way the forecast would.
type fieldCheck struct {
	field string
	parse func(raw string) error
}

func whole(raw string) error {
	_, err := domain.ParseWhole(raw)
	return err
}

var fieldChecks = []fieldCheck{
	{domain.FieldDryBulbTemperature, whole},
	{domain.FieldDewPointTemperature, whole},
	{domain.FieldRelativeHumidity, whole},
	{domain.FieldWindDirection, whole},
	{domain.FieldWindSpeed, whole},
	{domain.FieldVisibility, func(raw string) error {
		_, err := domain.ParseTruncated(raw)
		return err
	}},
	{domain.FieldSkyConditions, func(raw string) error {
		_, err := domain.SkyCondition(raw)
		return err
	}},
	{domain.FieldPresentWeatherType, func(raw string) error {
		_, err := domain.WeatherType(raw)
		return err
	}},
}

func validateFieldQuality(t *table, maxBadRate float64) *phase {
	p := &phase{name: "Phase 4: Field Quality"}
	for _, c := range fieldChecks {
		if _, ok := t.col[c.field]; !ok {
			continue
		}

		var present, blank, bad int
		var example string
		for _, row := range t.rows {
			raw, ok := t.cell(row, c.field)
			if !ok {
				continue
			}
			if raw == "" {
				blank++
				continue
			}
			present++
			if err := c.parse(raw); err != nil {
				if bad == 0 {
					example = raw
				}
				bad++
			}
		}

		rate := 0.0
		if present > 0 {
			rate = float64(bad) / float64(present)
		}
		p.notef("%-26s %6d readings %6d blank %6d unparseable (%.1f%%)", c.field, present, blank, bad, rate*100)
		if rate > maxBadRate {
			p.errorf("%s: %.1f%% unparseable exceeds %.1f%% (e.g. %q)", c.field, rate*100, maxBadRate*100, example)
		}
	}
	return p
}

// ── Phase 5: Load ──

func validateLoad(t *table) *phase {
	p := &phase{name: "Phase 5: Dataset Load"}
	ds, err := dataset.New(t.headers, t.rows)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.notef("%d records, reference year %d", ds.Len(), ds.ReferenceYear())
	return p
}
