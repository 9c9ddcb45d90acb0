package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/domain"
)

// PinKey formats t as a DATE key in the reference year. Month, day and
// clock time are kept verbatim, so February 29 stays a valid key in any year.
func (d *Dataset) PinKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		d.refYear, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// dayEndKey is the exclusive upper bound of t's day. T24:00:00 sorts after
// every reading of the day and before the next day's midnight.
func (d *Dataset) dayEndKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02dT24:00:00", d.refYear, int(t.Month()), t.Day())
}

// search returns the position of the first record whose DATE is >= key.
func (d *Dataset) search(key string) int {
	return sort.Search(len(d.records), func(i int) bool {
		return d.records[i][d.dateOff] >= key
	})
}

// ClosestPastIndex returns the index of the latest record strictly before t,
// after pinning t to the reference year. A record exactly at t is excluded.
func (d *Dataset) ClosestPastIndex(t time.Time) (int, error) {
	return d.ClosestPastKey(d.PinKey(t))
}

// ClosestPastKey is ClosestPastIndex for an already formatted DATE key.
func (d *Dataset) ClosestPastKey(key string) (int, error) {
	i := d.search(key) - 1
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", domain.ErrLookupNotFound, key)
	}
	return i, nil
}
