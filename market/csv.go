package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// CSV bar datasets use the header:
//
//	date,open,high,low,close,volume
//
// with dates as YYYY-MM-DD or RFC3339.

// LoadBarsCSV reads a bar dataset from path.
func LoadBarsCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	defer f.Close()
	return ReadBars(f)
}

// ReadBars parses a bar dataset from r.
func ReadBars(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bars: header: %w", err)
	}
	if len(header) < 6 || header[0] != "date" {
		return nil, fmt.Errorf("read bars: unexpected header %v", header)
	}

	var bars []Bar
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line+1, err)
		}
		line++

		b, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBar(rec []string) (Bar, error) {
	if len(rec) < 6 {
		return Bar{}, fmt.Errorf("want 6 fields, got %d", len(rec))
	}

	date, err := parseDate(rec[0])
	if err != nil {
		return Bar{}, err
	}

	vals := make([]float64, 5)
	for i, s := range rec[1:6] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}

	return Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t, nil
}
