package domain

import "time"

type JobKind string

const (
	JobKindIngest JobKind = "ingest"
	JobKindBuild  JobKind = "build"
)

type JobState string

const (
	JobStateRunning JobState = "running"
	JobStateDone    JobState = "done"
	JobStateError   JobState = "error"
)

// JobRecord tracks one background pipeline run for a (folder, kind) identity.
// At most one live record exists per identity; a new run may start only after
// the previous one reached a terminal state. The record is owned by the
// registry and mutated only by the worker executing the job.
type JobRecord struct {
	RunID       string    `json:"run_id"`
	Folder      string    `json:"folder"`
	Kind        JobKind   `json:"kind"`
	State       JobState  `json:"state"`
	CurrentStep string    `json:"current_step,omitempty"`
	CurrentFile string    `json:"current_file,omitempty"`
	Completed   int       `json:"completed"`
	Total       int       `json:"total"`
	Errors      []string  `json:"errors,omitempty"`
	Result      string    `json:"result,omitempty"`
	OutputPaths []string  `json:"output_paths,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
}

func (s JobState) Terminal() bool {
	return s == JobStateDone || s == JobStateError
}

func (r *JobRecord) Terminal() bool {
	return r.State.Terminal()
}
