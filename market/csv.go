package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// csvHeader is the canonical bar CSV layout:
//
//	time,open,high,low,close,volume
//
// time is RFC3339 or one of the naive layouts in timeLayouts.
var csvHeader = []string{"time", "open", "high", "low", "close", "volume"}

// LoadCSV reads a bar CSV file and returns a validated Series.
// A header row ("time,...") is allowed, empty rows are skipped and volume is
// optional.
func LoadCSV(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewSeries(symbol, bars)
}

// ReadCSV parses bar rows from r without validating the result.
func ReadCSV(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var bars []Bar
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 5 {
		return Bar{}, fmt.Errorf("need at least 5 columns (time,open,high,low,close), got %d", len(row))
	}

	t, err := parseTime(row[0])
	if err != nil {
		return Bar{}, err
	}

	vals := make([]float64, 5)
	n := 5
	if len(row) < 6 {
		n = 4
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad %s %q: %w", csvHeader[i+1], row[i+1], err)
		}
		vals[i] = v
	}

	return Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// WriteCSV writes bars in the canonical layout, header included.
func WriteCSV(w io.Writer, bars []Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		err := cw.Write([]string{
			b.Time.UTC().Format(time.RFC3339),
			f(b.Open),
			f(b.High),
			f(b.Low),
			f(b.Close),
			f(b.Volume),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
