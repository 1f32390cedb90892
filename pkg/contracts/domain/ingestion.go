package domain

import "time"

// SourceReport is the outcome of fetching one feed during a cycle.
type SourceReport struct {
	Region      Region        `json:"region"`
	Granularity Granularity   `json:"granularity"`
	Locator     string        `json:"locator"`
	Records     int           `json:"records"`
	Rows        int           `json:"rows"`
	Dropped     int           `json:"dropped"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Failed reports whether the source contributed nothing because of an error.
func (r SourceReport) Failed() bool {
	return r.Error != ""
}

// RunReport summarizes a complete ingestion cycle.
type RunReport struct {
	TraceID    string         `json:"trace_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`
	Weekly     int            `json:"weekly"`
	Monthly    int            `json:"monthly"`
	Error      string         `json:"error,omitempty"`
}

// FailedSources counts sources that reported an error.
func (r RunReport) FailedSources() int {
	n := 0
	for _, s := range r.Sources {
		if s.Failed() {
			n++
		}
	}
	return n
}
