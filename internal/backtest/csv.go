package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadLegCSV reads the first data row of a daily bhavcopy-style CSV and
// returns its OPEN and CLOSE columns. Headers are case-insensitive and
// extra columns are ignored.
func LoadLegCSV(path string) (LegOHLC, error) {
	f, err := os.Open(path)
	if err != nil {
		return LegOHLC{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return LegOHLC{}, fmt.Errorf("%s: %w", path, err)
	}
	openIdx, closeIdx := -1, -1
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "open":
			openIdx = i
		case "close":
			closeIdx = i
		}
	}
	if openIdx < 0 || closeIdx < 0 {
		return LegOHLC{}, fmt.Errorf("%s: OPEN and CLOSE columns are required", path)
	}
	row, err := r.Read()
	if err == io.EOF {
		return LegOHLC{}, fmt.Errorf("%s: no data rows", path)
	}
	if err != nil {
		return LegOHLC{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(row) <= openIdx || len(row) <= closeIdx {
		return LegOHLC{}, fmt.Errorf("%s: short data row", path)
	}
	open, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[openIdx]), ",", ""), 64)
	if err != nil {
		return LegOHLC{}, fmt.Errorf("%s: bad OPEN: %w", path, err)
	}
	closePrice, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[closeIdx]), ",", ""), 64)
	if err != nil {
		return LegOHLC{}, fmt.Errorf("%s: bad CLOSE: %w", path, err)
	}
	return LegOHLC{Open: open, Close: closePrice}, nil
}
