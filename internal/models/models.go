package models

import (
	"encoding/json"
	"time"
)

const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// Run is one refresh of the dashboard documents as recorded in run history.
type Run struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Status     string          `json:"status"`
	Summary    json.RawMessage `json:"summary"`
}

// Snapshot is the matrix persisted alongside a successful run.
type Snapshot struct {
	RunID       string      `json:"run_id"`
	Project     string      `json:"project"`
	UpdatedAt   time.Time   `json:"updated_at"`
	TotalIssues int         `json:"total_issues"`
	Matrix      Matrix      `json:"matrix"`
	Diagnostics Diagnostics `json:"diagnostics"`
}
