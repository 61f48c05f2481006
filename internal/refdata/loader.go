package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Columns names the reference-table columns to read. Primary, X and Y
// are required; Alias1 and Alias2 are consulted only when non-empty.
type Columns struct {
	Primary string
	Alias1  string
	Alias2  string
	X       string
	Y       string
}

// DefaultColumns matches the usual ONS postcode extract layout.
func DefaultColumns() Columns {
	return Columns{
		Primary: "pcds",
		Alias1:  "pcd",
		Alias2:  "pcd2",
		X:       "oseast1m",
		Y:       "osnrth1m",
	}
}

// LoadCSV reads a delimited reference table and builds the alias index.
// A missing file is a ReferenceLoadError; a missing configured column is
// a SchemaMismatchError. Rows with a blank primary key or unparsable
// coordinates are skipped and counted, not fatal.
func LoadCSV(path string, cols Columns) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ReferenceLoadError{Path: path, Err: err}
	}
	defer file.Close()

	idx, err := readReference(file, path, cols)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func readReference(r io.Reader, source string, cols Columns) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &ReferenceLoadError{Path: source, Err: fmt.Errorf("failed to read header: %w", err)}
	}

	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	required := []string{cols.Primary, cols.X, cols.Y}
	if cols.Alias1 != "" {
		required = append(required, cols.Alias1)
	}
	if cols.Alias2 != "" {
		required = append(required, cols.Alias2)
	}
	pos := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := columnMap[strings.ToLower(name)]
		if !ok {
			return nil, &SchemaMismatchError{Source: source, Column: name}
		}
		pos[name] = i
	}

	idx := NewIndex()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			idx.skipped++
			continue
		}

		primary := strings.TrimSpace(columnValue(record, pos[cols.Primary]))
		if primary == "" {
			idx.skipped++
			continue
		}

		x, errX := strconv.ParseFloat(strings.TrimSpace(columnValue(record, pos[cols.X])), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(columnValue(record, pos[cols.Y])), 64)
		if errX != nil || errY != nil {
			idx.skipped++
			continue
		}

		rec := &Record{Primary: primary, X: x, Y: y}
		if cols.Alias1 != "" {
			if v := strings.TrimSpace(columnValue(record, pos[cols.Alias1])); v != "" {
				rec.Aliases = append(rec.Aliases, v)
			}
		}
		if cols.Alias2 != "" {
			if v := strings.TrimSpace(columnValue(record, pos[cols.Alias2])); v != "" {
				rec.Aliases = append(rec.Aliases, v)
			}
		}
		idx.Add(rec)
	}

	return idx, nil
}

// columnValue safely extracts a value from a record by position.
func columnValue(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
