package model

import "time"

// RunStatus represents the current state of an account-mapping run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusSearching RunStatus = "searching"
	RunStatusFetching  RunStatus = "fetching"
	RunStatusMerging   RunStatus = "merging"
	RunStatusVerifying RunStatus = "verifying"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// Company identifies the organization to map.
type Company struct {
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

// Run represents a single account-mapping run.
type Run struct {
	ID        string      `json:"id"`
	Company   Company     `json:"company"`
	Status    RunStatus   `json:"status"`
	Result    *AccountMap `json:"result,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RunPhase represents a phase within a run.
type RunPhase struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Name      string       `json:"name"`
	Status    PhaseStatus  `json:"status"`
	Result    *PhaseResult `json:"result,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// PhaseStatus represents the current state of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusTimedOut PhaseStatus = "timed_out"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string      `json:"name"`
	Status   PhaseStatus `json:"status"`
	Duration int64       `json:"duration_ms"`
	Calls    int         `json:"calls"`
	Failures int         `json:"failures"`
	Records  int         `json:"records"`
	Error    string      `json:"error,omitempty"`
}
