package refdata

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// PostgresSource describes a reference table held in Postgres rather
// than a delimited file. Column names follow the same Columns contract
// as the CSV loader.
type PostgresSource struct {
	DSN     string
	Table   string
	Columns Columns
}

// LoadPostgres builds the alias index from a Postgres table. Connection
// or query failure is a ReferenceLoadError; an unknown configured column
// surfaces as a SchemaMismatchError.
func LoadPostgres(src PostgresSource) (*Index, error) {
	db, err := sql.Open("postgres", src.DSN)
	if err != nil {
		return nil, &ReferenceLoadError{Path: src.Table, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, &ReferenceLoadError{Path: src.Table, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	return queryReference(db, src)
}

func queryReference(db *sql.DB, src PostgresSource) (*Index, error) {
	cols := src.Columns
	selected := []string{cols.Primary, cols.X, cols.Y}
	if cols.Alias1 != "" {
		selected = append(selected, cols.Alias1)
	}
	if cols.Alias2 != "" {
		selected = append(selected, cols.Alias2)
	}

	// Identifiers come from operator configuration, not request input.
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selected, ", "), src.Table)
	rows, err := db.Query(query)
	if err != nil {
		// Postgres reports unknown identifiers as undefined_column.
		if strings.Contains(err.Error(), "does not exist") {
			return nil, &SchemaMismatchError{Source: src.Table, Column: strings.Join(selected, ", ")}
		}
		return nil, &ReferenceLoadError{Path: src.Table, Err: err}
	}
	defer rows.Close()

	idx := NewIndex()
	for rows.Next() {
		var primary sql.NullString
		var x, y sql.NullFloat64
		var alias1, alias2 sql.NullString

		dest := []interface{}{&primary, &x, &y}
		if cols.Alias1 != "" {
			dest = append(dest, &alias1)
		}
		if cols.Alias2 != "" {
			dest = append(dest, &alias2)
		}
		if err := rows.Scan(dest...); err != nil {
			idx.skipped++
			continue
		}

		key := strings.TrimSpace(primary.String)
		if key == "" || !x.Valid || !y.Valid {
			idx.skipped++
			continue
		}

		rec := &Record{Primary: key, X: x.Float64, Y: y.Float64}
		if v := strings.TrimSpace(alias1.String); v != "" {
			rec.Aliases = append(rec.Aliases, v)
		}
		if v := strings.TrimSpace(alias2.String); v != "" {
			rec.Aliases = append(rec.Aliases, v)
		}
		idx.Add(rec)
	}

	if err := rows.Err(); err != nil {
		return nil, &ReferenceLoadError{Path: src.Table, Err: err}
	}
	return idx, nil
}
