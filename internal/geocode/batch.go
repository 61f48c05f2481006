package geocode

import (
	"fmt"
	"sync"

	"github.com/postcode-geocoder/internal/debug"
	"github.com/postcode-geocoder/internal/postcode"
	"github.com/postcode-geocoder/internal/refdata"
)

// Options controls a batch run.
type Options struct {
	// Extract runs the grammar extractor over each source value before
	// matching. When false the value is treated as a pre-formatted
	// postcode and matched directly.
	Extract bool
	// Workers sets the fan-out width. Values below 2 process rows
	// sequentially. The index is immutable after build, so workers
	// share it without locking.
	Workers int
	Debug   bool
}

// RowResult pairs the extraction candidate with the match outcome for
// one input row. Results are returned in input order.
type RowResult struct {
	Candidate postcode.Candidate
	Match     MatchResult
}

// Summary holds the aggregate counters for one batch run.
type Summary struct {
	Total     int
	Extracted int
	Matched   int
}

// Report renders the human-readable summary lines.
func (s Summary) Report(extract bool) string {
	if extract {
		return fmt.Sprintf("Extracted %d out of %d postcodes\nGeocoded %d out of %d postcodes",
			s.Extracted, s.Total, s.Matched, s.Extracted)
	}
	return fmt.Sprintf("Geocoded %d out of %d postcodes", s.Matched, s.Total)
}

// Run processes every source value independently through
// extraction (optional), normalization and matching, returning one
// result per input in input order plus the batch summary. Row-level
// failures degrade that row to unmatched; only reference-index build
// errors are fatal, and those happen before Run is called.
func Run(sources []string, idx *refdata.Index, opts Options) ([]RowResult, Summary) {
	done := debug.Timing(opts.Debug, fmt.Sprintf("batch of %d rows", len(sources)))
	defer done()

	results := make([]RowResult, len(sources))

	if opts.Workers > 1 && len(sources) > 1 {
		runParallel(sources, idx, opts, results)
	} else {
		for i, src := range sources {
			results[i] = processRow(src, idx, opts.Extract)
			if opts.Debug && (i+1)%1000 == 0 {
				debug.Output(true, "Processed %d/%d rows", i+1, len(sources))
			}
		}
	}

	return results, summarize(results, opts.Extract)
}

// runParallel fans rows out over a bounded worker pool. Each worker owns
// a disjoint chunk and writes results by input index, so output order is
// preserved without a gather channel.
func runParallel(sources []string, idx *refdata.Index, opts Options, results []RowResult) {
	workers := opts.Workers
	if workers > len(sources) {
		workers = len(sources)
	}
	chunkSize := (len(sources) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if start >= len(sources) {
			break
		}
		if end > len(sources) {
			end = len(sources)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i] = processRow(sources[i], idx, opts.Extract)
			}
		}(start, end)
	}
	wg.Wait()
}

func processRow(source string, idx *refdata.Index, extract bool) RowResult {
	if source == "" {
		return RowResult{Match: MatchResult{Reason: ReasonMissingSource}}
	}

	if !extract {
		return RowResult{Match: Match(source, idx)}
	}

	candidate := postcode.Extract(source)
	return RowResult{Candidate: candidate, Match: MatchCandidate(candidate, idx)}
}

func summarize(results []RowResult, extract bool) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if extract && !r.Candidate.Empty() {
			s.Extracted++
		}
		if r.Match.Matched {
			s.Matched++
		}
	}
	if !extract {
		// Direct matching skips extraction; every row counts as having a
		// key so Matched <= Extracted still holds.
		s.Extracted = s.Total
	}
	return s
}
