package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/johnjung/speculative-weather-report/internal/forecast"
)

const (
	reportWidth  = 60
	hoursPerLine = 12
)

// renderReport writes the plain-text weather report for f.
func renderReport(w io.Writer, f forecast.Forecast) error {
	bw := bufio.NewWriter(w)
	cur := f.Current

	fmt.Fprintf(bw, "\n%s\n", center(value(cur, "human_readable_datetime")+", "+value(cur, "simulation_year"), reportWidth))
	fmt.Fprintf(bw, "\n%s\n", center("-CURRENT WEATHER AS OF "+value(cur, "as_of")+"-", reportWidth))
	fmt.Fprintf(bw, "\n%s\n\n", center(fmt.Sprintf("%s, %s. Wind %s.",
		value(cur, "sky_conditions"),
		value(cur, "weather_type"),
		value(cur, "wind_direction_and_speed"),
	), reportWidth))

	fmt.Fprintf(bw, "%20s: %-7s\n", "Current Temp", value(cur, "temperature"))
	fmt.Fprintf(bw, "%20s: %-7s %20s: %-7s\n", "High", value(cur, "temperature_max"), "Rel. Humidity", value(cur, "relative_humidity"))
	fmt.Fprintf(bw, "%20s: %-7s %20s: %-7s\n", "Low", value(cur, "temperature_min"), "Carbon Count", value(cur, "carbon_count"))

	fmt.Fprintf(bw, "\n%s\n\n", center("-YOUR HOURLY FORECAST-", reportWidth))
	for start := 0; start < len(f.Hourly); start += hoursPerLine {
		if start > 0 {
			fmt.Fprintln(bw)
		}
		line := f.Hourly[start:min(start+hoursPerLine, len(f.Hourly))]
		writeColumns(bw, line, "temperature", "%4s ")
		writeColumns(bw, line, "human_readable_datetime", "%4s ")
	}

	fmt.Fprintf(bw, "\n%s\n\n", center("-YOUR DAILY FORECAST-", reportWidth))
	for _, row := range []struct{ label, field string }{
		{"low temperature:", "temperature_min"},
		{"mean temperature:", "temperature_mean"},
		{"high temperature:", "temperature_max"},
		{"", "human_readable_datetime"},
	} {
		fmt.Fprintf(bw, "%23s", row.label)
		writeColumns(bw, f.Daily, row.field, "%6s")
	}
	fmt.Fprintln(bw)

	return bw.Flush()
}

func writeColumns(w io.Writer, s forecast.Series, field, format string) {
	for _, p := range s {
		fmt.Fprintf(w, format, value(p, field))
	}
	fmt.Fprintln(w)
}

// value renders a field for display; missing fields render empty.
func value(p forecast.Point, name string) string {
	f, ok := p.Field(name)
	if !ok {
		return ""
	}
	v := f.Display()
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
