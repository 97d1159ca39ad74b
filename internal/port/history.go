package port

import "github.com/evertl/reelpilot/internal/domain"

// JobHistory records terminal job runs so past outcomes survive restarts.
// Live job state lives in the registry only; history is append-only.
type JobHistory interface {
	RecordRun(rec *domain.JobRecord) error
	ListRecent(limit int) ([]*domain.JobRecord, error)
}
