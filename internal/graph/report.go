package graph

import (
	"time"
)

// BatchResult records the outcome of loading one chunk of one entity type.
type BatchResult struct {
	Platform string    `json:"platform"`
	Entity   string    `json:"entity"`
	Chunk    int       `json:"chunk"`
	Records  int       `json:"records"`
	Err      error     `json:"-"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Failed reports whether the batch was skipped.
func (b BatchResult) Failed() bool {
	return b.Err != nil
}

// Report aggregates batch results for a whole run. A failed batch never
// aborts the run; it is recorded here so the run can be diagnosed and
// re-run wholesale.
type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Results   []BatchResult `json:"results"`
}

// NewReport starts an empty report for the given run.
func NewReport(runID string) *Report {
	return &Report{
		RunID:     runID,
		StartedAt: time.Now(),
	}
}

// Add records one batch outcome.
func (r *Report) Add(platform, entity string, chunk, records int, err error) {
	res := BatchResult{
		Platform: platform,
		Entity:   entity,
		Chunk:    chunk,
		Records:  records,
		Err:      err,
		LoadedAt: time.Now(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	r.Results = append(r.Results, res)
}

// Merge appends another report's results.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Results = append(r.Results, other.Results...)
}

// Failures returns the batches that were skipped.
func (r *Report) Failures() []BatchResult {
	var out []BatchResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Loaded returns the total number of records in successful batches.
func (r *Report) Loaded() int {
	total := 0
	for _, res := range r.Results {
		if !res.Failed() {
			total += res.Records
		}
	}
	return total
}
