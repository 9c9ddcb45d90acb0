package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePath = "../../internal/dataset/testdata/lcd_sample.csv"

func mustTable(t *testing.T, body string) *table {
	t.Helper()
	tbl, err := loadTable(strings.NewReader(body))
	require.NoError(t, err)
	return tbl
}

func TestRun_SamplePasses(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, samplePath, 0.5)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Records: 7 rows, 12 columns")
	assert.Contains(t, out.String(), "range: 2010-05-01T00:51:00 .. 2010-05-02T00:51:00")
}

func TestRun_SampleFailsStrictQuality(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, samplePath, 0.05)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "HourlyWindDirection: 20.0% unparseable")
	assert.Contains(t, out.String(), `"VRB"`)
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, filepath.Join(t.TempDir(), "missing.csv"), 0.05))
	assert.Contains(t, out.String(), "FATAL: open")
}

func TestRun_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, path, 0.05))
	assert.Contains(t, out.String(), "file has no header row")
}

func TestValidateHeader(t *testing.T) {
	p := validateHeader(mustTable(t, "DATE,HourlyDryBulbTemperature,Extra\n"))
	assert.False(t, p.passed())
	assert.Contains(t, p.errors, `missing column "HourlyWindSpeed"`)
	assert.NotContains(t, p.errors, `missing column "DATE"`)
	assert.Contains(t, p.notes, "1 columns not read by the forecast")
}

func TestValidateRowShape(t *testing.T) {
	p := validateRowShape(mustTable(t, "DATE,A\n2019-05-01T00:00:00,1\n2019-05-01T01:00:00\n"))
	require.Len(t, p.errors, 1)
	assert.Equal(t, "line 3: 1 fields, header has 2", p.errors[0])
}

func TestValidateDateOrder(t *testing.T) {
	body := "DATE\n" +
		"2019-05-01T00:00:00\n" +
		"2019-05-01T00:00:00\n" +
		"2019-05-01T12:00:00\n" +
		"2019-05-01T11:00:00\n" +
		"yesterday\n"
	p := validateDateOrder(mustTable(t, body))

	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], "line 5: DATE 2019-05-01T11:00:00 is before 2019-05-01T12:00:00")
	assert.Contains(t, p.errors[1], `line 6: unparseable DATE "yesterday"`)
	assert.Contains(t, p.notes, "1 rows share a DATE with the previous row")
	assert.Contains(t, p.notes, "1 gaps longer than 6h0m0s")
}

func TestPhase_CapsReportedErrors(t *testing.T) {
	p := &phase{name: "test"}
	for range maxReported + 5 {
		p.errorf("bad")
	}
	assert.Len(t, p.errors, maxReported)
	assert.Equal(t, maxReported+5, p.errorCount())
}

func TestValidateLoad(t *testing.T) {
	p := validateLoad(mustTable(t, "DATE,A\n2019-05-01T00:00:00,1\n"))
	assert.True(t, p.passed())
	assert.Equal(t, []string{"1 records, reference year 2019"}, p.notes)

	p = validateLoad(mustTable(t, "A\n1\n"))
	assert.False(t, p.passed())
}
