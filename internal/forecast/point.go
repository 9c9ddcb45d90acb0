package forecast

import (
	"encoding/json"
	"time"
)

// Unavailable replaces the value of a field that could not be derived.
const Unavailable = "unavailable"

// Granularity selects the label format and field set of a Point.
type Granularity int

const (
	Current Granularity = iota
	Hourly
	Daily
)

func (g Granularity) String() string {
	switch g {
	case Current:
		return "current"
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	default:
		return "unknown"
	}
}

// Field is one named value of a Point. Err is set when the value could not
// be derived; Value is then nil.
type Field struct {
	Name  string
	Value any
	Err   error
}

// Available reports whether the field holds a value.
func (f Field) Available() bool { return f.Err == nil }

// Display returns the value, or Unavailable when Err is set.
func (f Field) Display() any {
	if f.Err != nil {
		return Unavailable
	}
	return f.Value
}

// Point is a presentation-ready set of fields for one moment.
type Point struct {
	Granularity Granularity
	At          time.Time
	Fields      []Field
}

func (p *Point) set(name string, value any, err error) {
	if err != nil {
		value = nil
	}
	p.Fields = append(p.Fields, Field{Name: name, Value: value, Err: err})
}

// Field returns the named field.
func (p Point) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Errors returns the fields that could not be derived.
func (p Point) Errors() []Field {
	var failed []Field
	for _, f := range p.Fields {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Mapping returns the fields as a plain map, with failed fields set to
// Unavailable.
func (p Point) Mapping() map[string]any {
	m := make(map[string]any, len(p.Fields))
	for _, f := range p.Fields {
		m[f.Name] = f.Display()
	}
	return m
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Mapping())
}

// Series is an ordered run of points at fixed offsets from an anchor.
type Series []Point

// Mappings returns Mapping for every point in order.
func (s Series) Mappings() []map[string]any {
	out := make([]map[string]any, len(s))
	for i, p := range s {
		out[i] = p.Mapping()
	}
	return out
}

// Forecast is the current point with its hourly and daily series.
type Forecast struct {
	Current       Point
	Hourly        Series
	Daily         Series
	News          []string
	Advertisement string

	hasNews bool
}

// Mapping returns the presentation mapping: the current point's fields at
// the top level plus "hourly", "daily" and, when a news source is wired,
// "news" and "advertisement".
func (f Forecast) Mapping() map[string]any {
	m := f.Current.Mapping()
	m["hourly"] = f.Hourly.Mappings()
	m["daily"] = f.Daily.Mappings()
	if f.hasNews {
		news := f.News
		if news == nil {
			news = []string{}
		}
		m["news"] = news
		m["advertisement"] = f.Advertisement
	}
	return m
}

func (f Forecast) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Mapping())
}
