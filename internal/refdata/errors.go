package refdata

import "fmt"

// ReferenceLoadError means the reference table could not be located or
// read. Fatal: a batch cannot proceed without a reference table.
type ReferenceLoadError struct {
	Path string // file, directory or DSN that failed, "" when discovery found nothing
	Err  error
}

func (e *ReferenceLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("reference table not found: %v", e.Err)
	}
	return fmt.Sprintf("failed to load reference table %s: %v", e.Path, e.Err)
}

func (e *ReferenceLoadError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError means a required column is absent from a reference
// or input schema. Fatal at build time, never per-row.
type SchemaMismatchError struct {
	Source string // file path or table name
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("required column %q not found in %s", e.Column, e.Source)
}
