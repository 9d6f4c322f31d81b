package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedRoster = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx or .csv")
	ErrEmptyRoster       = errors.New("the uploaded file has no header row")
	ErrUnknownRoster     = errors.New("only .xlsx and .csv rosters are supported")
)

// RosterParseError wraps any failure to read an uploaded roster
type RosterParseError struct {
	Err error
}

func (e *RosterParseError) Error() string { return "invalid roster file: " + e.Err.Error() }
func (e *RosterParseError) Unwrap() error { return e.Err }

// RosterRow is one data row of an uploaded roster
type RosterRow struct {
	Email      string
	Name       string
	CourseCode string
	// Cells holds every non-empty cell keyed by its header, used when
	// reporting a rejected row
	Cells map[string]string
}

// String renders the row's cells as JSON
func (r RosterRow) String() string {
	b, err := json.Marshal(r.Cells)
	if err != nil {
		return fmt.Sprintf("%v", r.Cells)
	}
	return string(b)
}

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeZip  = "application/zip"
	mimeOLE  = "application/x-ole-storage"
	mimeText = "text/plain"
)

// ParseRoster reads the first sheet of an XLSX workbook or a CSV file. The
// format is sniffed from the content, not taken from the upload headers.
func ParseRoster(data []byte) ([]RosterRow, error) {
	detected := mimetype.Detect(data)

	var (
		records [][]string
		err     error
	)
	switch {
	case isA(detected, mimeXLSX), isA(detected, mimeZip):
		records, err = readWorkbook(data)
	case isA(detected, mimeXLS), isA(detected, mimeOLE):
		err = ErrUnsupportedRoster
	case isA(detected, mimeText):
		// text/csv and the BOM-marked variants descend from text/plain
		records, err = readCSV(data)
	default:
		err = fmt.Errorf("%w, got %s", ErrUnknownRoster, detected.String())
	}
	if err != nil {
		return nil, &RosterParseError{Err: err}
	}

	rows, err := recordsToRows(records)
	if err != nil {
		return nil, &RosterParseError{Err: err}
	}
	return rows, nil
}

// isA reports whether m is target or one of its descendants
func isA(m *mimetype.MIME, target string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(target) {
			return true
		}
	}
	return false
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyRoster
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordsToRows treats the first record as the header. Blank rows are dropped.
func recordsToRows(records [][]string) ([]RosterRow, error) {
	if len(records) == 0 {
		return nil, ErrEmptyRoster
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]RosterRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := RosterRow{Cells: make(map[string]string)}
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			row.Cells[header[i]] = cell

			switch {
			case strings.EqualFold(header[i], "email"):
				row.Email = cell
			case strings.EqualFold(header[i], "name"):
				row.Name = cell
			case strings.EqualFold(header[i], "courseCode"):
				row.CourseCode = cell
			}
		}
		if len(row.Cells) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
