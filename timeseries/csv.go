package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrColumnNotFound is returned when a requested column is absent from the header.
var ErrColumnNotFound = errors.New("column not found")

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string   // Column name for dates (optional)
	ValueColumn string   // Column name for values (default: "y")
	Columns     []string // Extra numeric columns to load alongside ValueColumn
	IDColumn    string   // Column name for series ID (optional, for filtering)
	IDFilter    string   // Value to filter by ID column
	DateFormat  string   // Date format (default: "2006-01-02")
	HasHeader   bool     // Whether CSV has header row (default: true)
	Delimiter   rune     // Field delimiter (default: ',')
	SkipRows    int      // Number of rows to skip at start
	NAValues    []string // Cells read as missing (NaN)
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
		NAValues:    []string{"", "NA", "NaN", "nan", "null"},
	}
}

// Frame holds several numeric columns read from one CSV source. All columns
// share the row order of the file.
type Frame struct {
	Timestamps []time.Time
	columns    map[string][]float64
	order      []string
}

// Names returns the loaded column names in file order.
func (f *Frame) Names() []string {
	return slices.Clone(f.order)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.order) == 0 {
		return 0
	}
	return len(f.columns[f.order[0]])
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return slices.Clone(col), nil
}

// Series returns the named column as a series.
func (f *Frame) Series(name string) (*Series, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if len(f.Timestamps) != len(col) {
		return &Series{Values: col, Name: name}, nil
	}
	s, err := NewWithTimestamps(f.Timestamps, col)
	if err != nil {
		return nil, err
	}
	s.Name = name
	return s, nil
}

// LoadCSV loads the value column of a CSV file as a series.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	frame, err := LoadFrame(filename, opts)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	return frame.Series(frame.valueName(opts))
}

// LoadCSVFromReader loads the value column from an io.Reader.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	frame, err := ReadFrame(r, opts)
	if err != nil {
		return nil, err
	}
	return frame.Series(frame.valueName(opts))
}

// LoadCSVColumn loads a specific column from a CSV file as a series.
func LoadCSVColumn(filename string, column string) (*Series, error) {
	opts := DefaultCSVOptions()
	opts.ValueColumn = column
	return LoadCSV(filename, opts)
}

// LoadFrame loads the value column and any extra columns of a CSV file.
func LoadFrame(filename string, opts *CSVOptions) (*Frame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadFrame(file, opts)
}

func (f *Frame) valueName(opts *CSVOptions) string {
	if opts.ValueColumn != "" {
		if _, ok := f.columns[opts.ValueColumn]; ok {
			return opts.ValueColumn
		}
	}
	return f.order[0]
}

// ReadFrame reads numeric columns from r. Cells listed in NAValues become NaN;
// any other unparseable cell is an error naming its row and column.
func ReadFrame(r io.Reader, opts *CSVOptions) (*Frame, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	names, indices, dateIdx, idIdx, err := resolveColumns(reader, opts)
	if err != nil {
		return nil, err
	}

	frame := &Frame{columns: make(map[string][]float64, len(names)), order: names}
	var timestamps []time.Time
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			if clean(record[idIdx]) != opts.IDFilter {
				continue
			}
		}

		for k, name := range names {
			idx := indices[k]
			if idx >= len(record) {
				return nil, fmt.Errorf("row %d: missing column %q", row, name)
			}
			v, err := parseCell(clean(record[idx]), opts.NAValues)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", row, name, err)
			}
			frame.columns[name] = append(frame.columns[name], v)
		}

		if dateIdx >= 0 && dateIdx < len(record) {
			if ts, ok := parseDate(clean(record[dateIdx]), opts.DateFormat); ok {
				timestamps = append(timestamps, ts)
			}
		}
	}

	if frame.Len() == 0 {
		return nil, errors.New("no data rows found in CSV")
	}
	if len(timestamps) == frame.Len() {
		frame.Timestamps = timestamps
	}
	return frame, nil
}

func resolveColumns(reader *csv.Reader, opts *CSVOptions) (names []string, indices []int, dateIdx, idIdx int, err error) {
	dateIdx, idIdx = -1, -1
	wanted := append([]string{opts.ValueColumn}, opts.Columns...)
	if wanted[0] == "" {
		wanted[0] = "y"
	}

	if !opts.HasHeader {
		// Without a header, column 0 is the date and column 1 the value.
		return []string{"y"}, []int{1}, 0, -1, nil
	}

	header, err := reader.Read()
	if err != nil {
		return nil, nil, -1, -1, err
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = clean(h)
		pos[h] = i
		switch {
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case opts.DateColumn == "" && dateIdx == -1 && (h == "ds" || h == "date" || h == "Date" || h == "Month" || h == "Year"):
			dateIdx = i
		case opts.IDColumn != "" && h == opts.IDColumn:
			idIdx = i
		}
	}

	for k, name := range wanted {
		if name == "" {
			continue
		}
		idx, ok := pos[name]
		if !ok {
			if k == 0 && wanted[0] == "y" {
				// Fall back to the last column when the default name is absent.
				idx = len(header) - 1
				name = clean(header[idx])
			} else {
				return nil, nil, -1, -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
			}
		}
		if slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
		indices = append(indices, idx)
	}
	if len(names) == 0 {
		return nil, nil, -1, -1, errors.New("no value column selected")
	}
	return names, indices, dateIdx, idIdx, nil
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

func parseCell(s string, na []string) (float64, error) {
	if slices.Contains(na, s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func parseDate(s, preferred string) (time.Time, bool) {
	formats := []string{
		preferred,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01",
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"2006",
	}
	for _, layout := range formats {
		if layout == "" {
			continue
		}
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
