package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: first column)
	ValueColumn string // Column name for values (default: last column)
	DateFormat  string // Date format (default: "2006-01-02")
	HasHeader   bool   // Whether the CSV has a header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateFormat: "2006-01-02",
		HasHeader:  true,
		Delimiter:  ',',
	}
}

// ReadCSVFile loads a series from a CSV file.
func ReadCSVFile(path, name string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file, name, opts)
}

// ReadCSV loads a series from an io.Reader producing CSV with a date column
// and a value column.
func ReadCSV(r io.Reader, name string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02"
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	dateIdx, valueIdx := -1, -1
	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("read csv header: %w", err)
		}
		for i, h := range header {
			h = strings.TrimSpace(h)
			if opts.DateColumn != "" && h == opts.DateColumn {
				dateIdx = i
			}
			if opts.ValueColumn != "" && h == opts.ValueColumn {
				valueIdx = i
			}
		}
		if dateIdx == -1 {
			if opts.DateColumn != "" {
				return nil, fmt.Errorf("date column %q not found in header", opts.DateColumn)
			}
			dateIdx = 0
		}
		if valueIdx == -1 {
			if opts.ValueColumn != "" {
				return nil, fmt.Errorf("value column %q not found in header", opts.ValueColumn)
			}
			valueIdx = len(header) - 1
		}
	} else {
		dateIdx, valueIdx = 0, 1
	}

	var timestamps []time.Time
	var values []float64
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++
		if dateIdx >= len(record) || valueIdx >= len(record) {
			return nil, fmt.Errorf("csv row %d: not enough columns", line)
		}
		t, err := time.Parse(opts.DateFormat, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		raw := strings.TrimSpace(record[valueIdx])
		if raw == "" {
			// skip missing observations
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		timestamps = append(timestamps, t)
		values = append(values, v)
	}

	return New(name, timestamps, values)
}

// WriteCSV writes the series as date,value rows with a header.
func WriteCSV(w io.Writer, s *Series, dateFormat string) error {
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", s.Name}); err != nil {
		return err
	}
	for i := range s.Values {
		row := []string{
			s.Timestamps[i].Format(dateFormat),
			strconv.FormatFloat(s.Values[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
