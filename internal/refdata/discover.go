package refdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var reFileDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Discover locates the reference file in dir by glob pattern. When
// several files match, the one carrying the most recent YYYY-MM-DD date
// in its name wins; undated files sort last, and ties break on the
// lexicographically greatest name so discovery is deterministic. No
// match at all is a ReferenceLoadError.
func Discover(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", &ReferenceLoadError{Path: dir, Err: err}
	}

	best := ""
	bestDate := ""
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		date := reFileDate.FindString(filepath.Base(m))
		if best == "" || date > bestDate || (date == bestDate && m > best) {
			best = m
			bestDate = date
		}
	}

	if best == "" {
		return "", &ReferenceLoadError{Err: fmt.Errorf("no file matching %q in %s", pattern, dir)}
	}
	return best, nil
}

// LoadOptions controls how Load resolves the reference table.
type LoadOptions struct {
	// Path is the explicit reference file. When empty, discovery in Dir
	// by Pattern is used instead.
	Path    string
	Dir     string
	Pattern string
	Columns Columns
	// Fallback, when set, is invoked exactly once after discovery or the
	// initial read fails, to obtain an alternative path. The core never
	// prompts; interactive re-selection is caller-supplied behaviour.
	Fallback func() (string, error)
}

// Load resolves the reference file (explicit path, or discovery) and
// builds the index from it. When the file cannot be found or read, the
// optional fallback is consulted exactly once for a replacement path;
// schema mismatches are never retried.
func Load(opts LoadOptions) (*Index, error) {
	path := opts.Path
	var discoverErr error
	if path == "" {
		path, discoverErr = Discover(opts.Dir, opts.Pattern)
	}

	var loadErr error
	if discoverErr == nil {
		idx, err := LoadCSV(path, opts.Columns)
		if err == nil {
			return idx, nil
		}
		var refErr *ReferenceLoadError
		if !errors.As(err, &refErr) {
			return nil, err
		}
		loadErr = err
	} else {
		loadErr = discoverErr
	}

	if opts.Fallback == nil {
		return nil, loadErr
	}
	fallbackPath, err := opts.Fallback()
	if err != nil || fallbackPath == "" {
		return nil, loadErr
	}
	return LoadCSV(fallbackPath, opts.Columns)
}
