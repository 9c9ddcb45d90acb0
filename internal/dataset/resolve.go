package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/domain"
)

// Get returns field at record index. A blank reading is filled from the
// nearest earlier non-blank reading; "" means every reading up to index is
// blank.
func (d *Dataset) Get(field string, index int) (string, error) {
	off, err := d.schema.Offset(field)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(d.records) {
		return "", fmt.Errorf("%w: record %d of %d", domain.ErrLookupNotFound, index, len(d.records))
	}
	for i := index; i >= 0; i-- {
		if v := d.records[i][off]; strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", nil
}

// GetAt returns field as of t: the closest-past record, filled back.
func (d *Dataset) GetAt(field string, t time.Time) (string, error) {
	if !d.schema.Has(field) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	i, err := d.ClosestPastIndex(t)
	if err != nil {
		return "", err
	}
	return d.Get(field, i)
}

// GetRange returns raw values of field, blanks included, for every record
// with lo <= DATE < hi after pinning both bounds.
func (d *Dataset) GetRange(field string, lo, hi time.Time) ([]string, error) {
	return d.rangeKeys(field, d.PinKey(lo), d.PinKey(hi))
}

// DayRange returns raw values of field for every record on t's calendar day.
func (d *Dataset) DayRange(field string, t time.Time) ([]string, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.rangeKeys(field, d.PinKey(day), d.dayEndKey(day))
}

func (d *Dataset) rangeKeys(field, loKey, hiKey string) ([]string, error) {
	off, err := d.schema.Offset(field)
	if err != nil {
		return nil, err
	}
	start, end := d.search(loKey), d.search(hiKey)
	if end <= start {
		return nil, nil
	}
	values := make([]string, 0, end-start)
	for _, rec := range d.records[start:end] {
		values = append(values, rec[off])
	}
	return values, nil
}
