// Package dataset loads LCD observation CSVs and answers closest-past
// lookups against them.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one observation row; every record has one value per schema field.
type Record []string

// Schema resolves field names to record offsets.
type Schema struct {
	names   []string
	offsets map[string]int
}

func newSchema(headers []string) Schema {
	s := Schema{
		names:   make([]string, len(headers)),
		offsets: make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		s.names[i] = h
		if _, dup := s.offsets[h]; !dup {
			s.offsets[h] = i
		}
	}
	return s
}

// Offset returns the record offset for field.
func (s Schema) Offset(field string) (int, error) {
	i, ok := s.offsets[field]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	return i, nil
}

// Has reports whether field is part of the schema.
func (s Schema) Has(field string) bool {
	_, ok := s.offsets[field]
	return ok
}

// Names returns the header names in file order.
func (s Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.names)
}

// Dataset is an immutable, DATE-ordered set of observation records. It is
// safe for concurrent readers.
type Dataset struct {
	schema  Schema
	records []Record
	dateOff int
	refYear int
}

// Option configures a Dataset at construction.
type Option func(*options)

type options struct {
	referenceYear int
}

// WithReferenceYear pins every query to year instead of the year most
// records fall in.
func WithReferenceYear(year int) Option {
	return func(o *options) {
		o.referenceYear = year
	}
}

// Load reads the CSV at path.
func Load(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}
	defer f.Close()

	ds, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads a CSV stream: a header row followed by observations.
func Parse(r io.Reader, opts ...Option) (*Dataset, error) {
	headers, rows, err := ReadRaw(r)
	if err != nil {
		return nil, err
	}
	return New(headers, rows, opts...)
}

// ReadRaw returns the header row and data rows without validating them.
// Rows may differ in length. An empty stream returns nil headers.
func ReadRaw(r io.Reader) ([]string, [][]string, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	var (
		headers []string
		rows    [][]string
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
		}
		if headers == nil {
			headers = rec
			continue
		}
		rows = append(rows, rec)
	}
	return headers, rows, nil
}

// New builds a Dataset from a header row and data rows. It fails with
// domain.ErrDataLoad when the header is missing or lacks DATE, when a row's
// length differs from the header, or when DATE values are malformed or out
// of order.
func New(headers []string, rows [][]string, opts ...Option) (*Dataset, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no header row", domain.ErrDataLoad)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	schema := newSchema(headers)
	dateOff, err := schema.Offset(domain.FieldDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}

	records := make([]Record, len(rows))
	years := make(map[int]int)
	prev := ""
	for i, row := range rows {
		line := i + 2
		if len(row) != schema.Len() {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				domain.ErrDataLoad, line, len(row), schema.Len())
		}
		date := strings.TrimSpace(row[dateOff])
		at, err := time.Parse(domain.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid DATE %q", domain.ErrDataLoad, line, row[dateOff])
		}
		years[at.Year()]++
		if date < prev {
			return nil, fmt.Errorf("%w: line %d: DATE %s before %s", domain.ErrDataLoad, line, date, prev)
		}
		prev = date

		rec := make(Record, len(row))
		copy(rec, row)
		rec[dateOff] = date
		records[i] = rec
	}

	refYear := o.referenceYear
	if refYear == 0 {
		refYear = dominantYear(years)
	}

	return &Dataset{
		schema:  schema,
		records: records,
		dateOff: dateOff,
		refYear: refYear,
	}, nil
}

// dominantYear returns the year holding the most records, preferring the
// later year on a tie. It returns 0 for an empty dataset.
func dominantYear(years map[int]int) int {
	var year, most int
	for y, n := range years {
		if n > most || (n == most && y > year) {
			year, most = y, n
		}
	}
	return year
}

// Schema returns the header schema.
func (d *Dataset) Schema() Schema { return d.schema }

// Headers returns the header names in file order.
func (d *Dataset) Headers() []string { return d.schema.Names() }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// ReferenceYear returns the year queries are pinned to.
func (d *Dataset) ReferenceYear() int { return d.refYear }

// Date returns the DATE value of record i.
func (d *Dataset) Date(i int) (string, error) {
	if i < 0 || i >= len(d.records) {
		return "", fmt.Errorf("%w: record %d of %d", domain.ErrLookupNotFound, i, len(d.records))
	}
	return d.records[i][d.dateOff], nil
}
