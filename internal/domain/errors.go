package domain

import "errors"

// Errors returned by dataset lookups and metric derivations. Callers match
// them with errors.Is; the wrapped message carries the offending value.
var (
	// ErrDataLoad means the historical CSV could not be read or is malformed.
	ErrDataLoad = errors.New("historical data load failed")

	// ErrLookupNotFound means no observation precedes the requested time.
	ErrLookupNotFound = errors.New("no observation before requested time")

	// ErrUnknownField means the column name is not in the header schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrParse means a resolved value is not numeric where a number was expected.
	ErrParse = errors.New("unparseable value")

	// ErrUnknownCode means a sky-condition or weather-type code has no mapping.
	ErrUnknownCode = errors.New("unknown code")

	// ErrEmptyAggregation means a daily summary had no usable readings.
	ErrEmptyAggregation = errors.New("no readings to aggregate")

	// ErrInvalidSummary means the summary kind is not min, max or mean.
	ErrInvalidSummary = errors.New("invalid summary kind")

	// ErrIndexOutOfRange means a table index is outside the table.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrSearchBoundExceeded means a bounded search gave up.
	ErrSearchBoundExceeded = errors.New("search bound exceeded")

	// ErrFallbackExhausted means every earlier hour in the fallback window failed too.
	ErrFallbackExhausted = errors.New("hourly fallback exhausted")
)

// Reason returns a short label for err suitable for a metric label.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrLookupNotFound):
		return "lookup_not_found"
	case errors.Is(err, ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrUnknownCode):
		return "unknown_code"
	case errors.Is(err, ErrEmptyAggregation):
		return "empty_aggregation"
	case errors.Is(err, ErrInvalidSummary):
		return "invalid_summary"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	case errors.Is(err, ErrSearchBoundExceeded):
		return "search_bound_exceeded"
	case errors.Is(err, ErrFallbackExhausted):
		return "fallback_exhausted"
	default:
		return "other"
	}
}
