// Command genmock writes a synthetic LCD observations CSV for local runs and
// tests. Output is deterministic for a given seed, so fixtures can be
// regenerated without churn.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/observations.csv \
//	  -start 2019-01-01 \
//	  -days 365 \
//	  -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated CSV")
	start := flag.String("start", "2019-01-01", "first day to generate (YYYY-mm-dd)")
	days := flag.Int("days", 365, "number of days to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	station := flag.String("station", "72530094846", "STATION column value")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	first, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if *days < 1 {
		return fmt.Errorf("invalid -days: must be at least 1")
	}

	g := newGenerator(genConfig{Start: first, Days: *days, Seed: *seed, Station: *station})
	rows := g.rows()

	if err := writeCSV(*out, header, rows); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %s", *out)

	printStats(rows)
	return nil
}

func writeCSV(path string, head []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(head); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func printStats(rows [][]string) {
	s := collectStats(rows)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d (hourly=%d, summary=%d)\n", len(rows), s.hourly, s.summary)
	fmt.Printf("First: %s\n", s.first)
	fmt.Printf("Last: %s\n", s.last)
	fmt.Printf("Blank temperatures: %d\n", s.blankTemp)
	fmt.Printf("Suspect temperatures: %d\n", s.suspectTemp)
	fmt.Printf("Variable wind: %d\n", s.variableWind)
	fmt.Printf("Temperature range: %d..%d\n", s.minTemp, s.maxTemp)
}

// stats holds aggregated counts for printStats reporting.
type stats struct {
	hourly, summary        int
	blankTemp, suspectTemp int
	variableWind           int
	minTemp, maxTemp       int
	first, last            string
}

func collectStats(rows [][]string) stats {
	s := stats{minTemp: 1 << 30, maxTemp: -1 << 30}
	for i, row := range rows {
		date := row[colIndex(domain.FieldDate)]
		if i == 0 {
			s.first = date
		}
		s.last = date

		if row[colIndex("REPORT_TYPE")] == reportSummary {
			s.summary++
			continue
		}
		s.hourly++

		temp := row[colIndex(domain.FieldDryBulbTemperature)]
		switch v, err := domain.ParseWhole(temp); {
		case temp == "":
			s.blankTemp++
		case err != nil:
			s.suspectTemp++
		default:
			s.minTemp = min(s.minTemp, v)
			s.maxTemp = max(s.maxTemp, v)
		}
		if row[colIndex(domain.FieldWindDirection)] == "VRB" {
			s.variableWind++
		}
	}
	return s
}
