package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/postcode-geocoder/internal/geocode"
	"github.com/postcode-geocoder/internal/refdata"
)

// Table is an in-memory delimited table: a header row plus data rows.
// Rows may be ragged; missing cells read as empty strings.
type Table struct {
	Header []string
	Rows   [][]string

	columnMap map[string]int
}

// ReadCSV loads a delimited file into a Table.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input table %s: %w", path, err)
	}
	defer file.Close()
	return Read(file)
}

// Read loads a Table from a reader of CSV data.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{Header: header, columnMap: make(map[string]int)}
	for i, col := range header {
		t.columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// Column returns the index of a named column, case-insensitively.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.columnMap[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// SourceValues pulls the designated source column out of every row. The
// column must exist; an absent value on an individual row reads as ""
// and degrades that row rather than failing the batch.
func (t *Table) SourceValues(name string) ([]string, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, &refdata.SchemaMismatchError{Source: "input table", Column: name}
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if col < len(row) {
			values[i] = strings.TrimSpace(row[col])
		}
	}
	return values, nil
}

// Augment appends the geocoding output columns to the table: the
// extracted postcode (when extraction ran) and the two coordinate
// columns, left blank on unmatched rows. Results must be aligned with
// the table's rows.
func (t *Table) Augment(results []geocode.RowResult, extract bool, xName, yName string) {
	base := len(t.Header)
	if extract {
		t.Header = append(t.Header, "extracted_postcode")
	}
	t.Header = append(t.Header, xName, yName, "match_reason")

	for i := range t.Rows {
		if i >= len(results) {
			break
		}
		r := results[i]
		// Pad ragged rows so the new columns line up with the header.
		for len(t.Rows[i]) < base {
			t.Rows[i] = append(t.Rows[i], "")
		}
		if extract {
			t.Rows[i] = append(t.Rows[i], r.Candidate.Raw)
		}
		if r.Match.Matched {
			t.Rows[i] = append(t.Rows[i],
				strconv.FormatFloat(r.Match.X, 'f', -1, 64),
				strconv.FormatFloat(r.Match.Y, 'f', -1, 64),
				"")
		} else {
			t.Rows[i] = append(t.Rows[i], "", "", r.Match.Reason)
		}
	}
}

// WriteCSV writes the table to a delimited file.
func (t *Table) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output table %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
