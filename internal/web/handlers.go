package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/postcode-geocoder/internal/geocode"
	"github.com/postcode-geocoder/internal/spatial"
)

// LookupResponse is the payload for a single postcode lookup.
type LookupResponse struct {
	Postcode string  `json:"postcode"`
	Matched  bool    `json:"matched"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Key      string  `json:"key,omitempty"`
	KeyForm  string  `json:"key_form,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// GeocodeRequest is a JSON batch of source values to geocode.
type GeocodeRequest struct {
	Rows    []string `json:"rows"`
	Extract bool     `json:"extract"`
}

// GeocodeResponse returns per-row results plus the batch summary.
type GeocodeResponse struct {
	Results []RowResponse   `json:"results"`
	Summary geocode.Summary `json:"summary"`
}

// RowResponse is one geocoded row.
type RowResponse struct {
	Extracted string  `json:"extracted,omitempty"`
	Matched   bool    `json:"matched"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// NearestResponse is one spatial query hit.
type NearestResponse struct {
	Postcode string  `json:"postcode"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance_m"`
}

// StatsResponse reports reference-index statistics.
type StatsResponse struct {
	Records   int `json:"records"`
	Aliases   int `json:"aliases"`
	Conflicts int `json:"conflicts"`
	Skipped   int `json:"skipped_rows"`
}

func (s *Server) lookupPostcode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	result := geocode.Match(code, s.index)
	resp := LookupResponse{
		Postcode: code,
		Matched:  result.Matched,
		Reason:   result.Reason,
	}
	if result.Matched {
		resp.X, resp.Y = result.X, result.Y
		resp.Key = result.Key
		resp.KeyForm = string(result.Form)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) geocodeBatch(w http.ResponseWriter, r *http.Request) {
	var req GeocodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results, summary := geocode.Run(req.Rows, s.index, geocode.Options{Extract: req.Extract})

	resp := GeocodeResponse{Summary: summary, Results: make([]RowResponse, len(results))}
	for i, res := range results {
		row := RowResponse{
			Extracted: res.Candidate.Raw,
			Matched:   res.Match.Matched,
			Reason:    res.Match.Reason,
		}
		if res.Match.Matched {
			row.X, row.Y = res.Match.X, res.Match.Y
		}
		resp.Results[i] = row
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) nearest(w http.ResponseWriter, r *http.Request) {
	if s.spatial == nil {
		http.Error(w, "Spatial index not available", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "Parameters x and y are required", http.StatusBadRequest)
		return
	}

	var results []NearestResponse
	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			http.Error(w, "Invalid radius", http.StatusBadRequest)
			return
		}
		results = toNearestResponses(s.spatial.Within(x, y, radius))
	} else {
		k := 1
		if kStr := q.Get("k"); kStr != "" {
			parsed, err := strconv.Atoi(kStr)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid k", http.StatusBadRequest)
				return
			}
			k = parsed
		}
		results = toNearestResponses(s.spatial.Nearest(x, y, k))
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Records:   s.index.Len(),
		Aliases:   s.index.AliasCount(),
		Conflicts: s.index.Conflicts(),
		Skipped:   s.index.Skipped(),
	})
}

func toNearestResponses(results []spatial.Result) []NearestResponse {
	out := make([]NearestResponse, 0, len(results))
	for _, res := range results {
		out = append(out, NearestResponse{
			Postcode: res.Record.Primary,
			X:        res.Record.X,
			Y:        res.Record.Y,
			Distance: res.Distance,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
