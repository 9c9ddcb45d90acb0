// Command validate checks an LCD observations CSV before it is served: header
// coverage, row shape, DATE ordering, and how many readings each derived
// field would fail to parse.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data data/observations.csv \
//	  -max-bad-rate 0.05
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// maxReported caps the errors listed per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name       string
	errors     []string
	suppressed int
	notes      []string
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) >= maxReported {
		p.suppressed++
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) errorCount() int { return len(p.errors) + p.suppressed }

func main() {
	dataPath := flag.String("data", "", "path to the LCD observations CSV")
	maxBadRate := flag.Float64("max-bad-rate", 0.05, "largest tolerated share of unparseable readings per field")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *dataPath, *maxBadRate); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, dataPath string, maxBadRate float64) int {
	fmt.Fprintln(w, "=== Observation Data Validation ===")
	fmt.Fprintln(w)

	f, err := os.Open(dataPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: open %s: %v\n", dataPath, err)
		return 1
	}
	defer f.Close()

	tbl, err := loadTable(f)
	if err != nil {
		fmt.Fprintf(w, "FATAL: read %s: %v\n", dataPath, err)
		return 1
	}

	phases := []*phase{
		validateHeader(tbl),
		validateRowShape(tbl),
		validateDateOrder(tbl),
		validateFieldQuality(tbl, maxBadRate),
		validateLoad(tbl),
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", p.errorCount())
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d rows, %d columns\n", len(tbl.rows), len(tbl.headers))

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for _, n := range p.notes {
			fmt.Fprintf(w, "  %s\n", n)
		}
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
		if p.suppressed > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", p.suppressed)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}
