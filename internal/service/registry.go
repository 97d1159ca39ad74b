package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
	"github.com/evertl/reelpilot/internal/port"
)

type jobKey struct {
	folder string
	kind   domain.JobKind
}

// Registry tracks one job state machine per (folder, kind) identity. Start
// is an atomic check-and-insert; two concurrent starts for the same
// identity admit exactly one. The admitted pipeline runs on the
// WorkerRunner outside the registry lock, so long work never blocks
// admission or status reads.
type Registry struct {
	mu      sync.Mutex
	jobs    map[jobKey]*domain.JobRecord
	runner  WorkerRunner
	history port.JobHistory
	bus     *EventBus
}

// NewRegistry builds a registry. history and bus may be nil; terminal runs
// are then not persisted and progress is not broadcast.
func NewRegistry(runner WorkerRunner, history port.JobHistory, bus *EventBus) *Registry {
	return &Registry{
		jobs:    make(map[jobKey]*domain.JobRecord),
		runner:  runner,
		history: history,
		bus:     bus,
	}
}

// WorkFn is one pipeline run. It mutates its job record only through the
// Progress it is handed, making the worker the record's single writer.
type WorkFn func(ctx context.Context, p *Progress) error

// Start admits or rejects a job. domain.ErrAlreadyRunning is returned when
// a live record exists for the identity; a terminal record is superseded.
func (r *Registry) Start(folder string, kind domain.JobKind, work WorkFn) error {
	key := jobKey{folder: folder, kind: kind}

	r.mu.Lock()
	if existing, ok := r.jobs[key]; ok && !existing.Terminal() {
		r.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	rec := &domain.JobRecord{
		RunID:     uuid.NewString(),
		Folder:    folder,
		Kind:      kind,
		State:     domain.JobStateRunning,
		StartedAt: time.Now().UTC(),
	}
	r.jobs[key] = rec
	r.mu.Unlock()

	logger.Info.Printf("job admitted: %s %s (run %s)", kind, logger.SanitizeForLog(folder), rec.RunID)
	r.runner.Run(func() { r.execute(key, work) })
	return nil
}

// Status returns a snapshot copy of the job record, safe to read while the
// worker keeps mutating the original.
func (r *Registry) Status(folder string, kind domain.JobKind) (*domain.JobRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[jobKey{folder: folder, kind: kind}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snapshot(rec), nil
}

// execute is the worker boundary: every pipeline failure, panics included,
// ends as a classified terminal error on the record. Nothing propagates
// past here and no job is left stuck in running.
func (r *Registry) execute(key jobKey, work WorkFn) {
	p := &Progress{registry: r, key: key}

	defer func() {
		if rec := recover(); rec != nil {
			r.finish(key, fmt.Errorf("pipeline panic: %v", rec))
		}
	}()

	err := work(context.Background(), p)
	r.finish(key, err)
}

func (r *Registry) finish(key jobKey, err error) {
	r.mu.Lock()
	rec, ok := r.jobs[key]
	if !ok || rec.Terminal() {
		r.mu.Unlock()
		return
	}
	rec.FinishedAt = time.Now().UTC()
	rec.CurrentStep = ""
	rec.CurrentFile = ""
	if err != nil {
		rec.State = domain.JobStateError
		rec.Result = classify(err)
	} else {
		rec.State = domain.JobStateDone
	}
	done := snapshot(rec)
	r.mu.Unlock()

	if err != nil {
		logger.Error.Printf("job failed: %s %s: %v", key.kind, logger.SanitizeForLog(key.folder), err)
	} else {
		logger.Info.Printf("job done: %s %s: %s", key.kind, logger.SanitizeForLog(key.folder), done.Result)
	}

	if r.history != nil {
		if herr := r.history.RecordRun(done); herr != nil {
			logger.Warn.Printf("failed to record job history: %v", herr)
		}
	}
	r.publish(key, done, done.Result)
}

func (r *Registry) publish(key jobKey, rec *domain.JobRecord, msg string) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(key.folder, Event{
		Kind:      rec.Kind,
		State:     rec.State,
		Step:      rec.CurrentStep,
		File:      rec.CurrentFile,
		Completed: rec.Completed,
		Total:     rec.Total,
		Message:   msg,
	})
}

// classify renders a terminal error with its taxonomy category up front.
func classify(err error) string {
	var se *domain.ServiceError
	var pe *domain.PreconditionError
	var ae *domain.AssemblyError

	switch {
	case errors.As(err, &se) && se.Transient:
		return "service unavailable (retries exhausted): " + err.Error()
	case errors.As(err, &se):
		return "service rejected request: " + err.Error()
	case errors.As(err, &pe):
		return err.Error()
	case errors.As(err, &ae):
		return "defective edit plan: " + err.Error()
	default:
		return err.Error()
	}
}

func snapshot(rec *domain.JobRecord) *domain.JobRecord {
	cp := *rec
	cp.Errors = append([]string(nil), rec.Errors...)
	cp.OutputPaths = append([]string(nil), rec.OutputPaths...)
	return &cp
}

// Progress is the mutation surface a running pipeline gets for its own job
// record. Every method takes the registry lock briefly, so pollers always
// read a consistent record.
type Progress struct {
	registry *Registry
	key      jobKey
}

func (p *Progress) update(fn func(rec *domain.JobRecord)) {
	r := p.registry
	r.mu.Lock()
	rec, ok := r.jobs[p.key]
	if !ok || rec.Terminal() {
		r.mu.Unlock()
		return
	}
	fn(rec)
	cp := snapshot(rec)
	r.mu.Unlock()

	r.publish(p.key, cp, "")
}

// SetStep labels the current stage and in-flight file.
func (p *Progress) SetStep(step, file string) {
	p.update(func(rec *domain.JobRecord) {
		rec.CurrentStep = step
		rec.CurrentFile = file
	})
}

// SetTotal sets the amount of new work this run will do.
func (p *Progress) SetTotal(total int) {
	p.update(func(rec *domain.JobRecord) {
		rec.Total = total
	})
}

// Advance marks one unit of work complete.
func (p *Progress) Advance() {
	p.update(func(rec *domain.JobRecord) {
		rec.Completed++
	})
}

// AddError accumulates a non-fatal per-file failure.
func (p *Progress) AddError(msg string) {
	p.update(func(rec *domain.JobRecord) {
		rec.Errors = append(rec.Errors, msg)
	})
}

// AddOutputs records artifact paths produced by the run.
func (p *Progress) AddOutputs(paths ...string) {
	p.update(func(rec *domain.JobRecord) {
		rec.OutputPaths = append(rec.OutputPaths, paths...)
	})
}

// SetResult sets the success summary reported on completion.
func (p *Progress) SetResult(msg string) {
	p.update(func(rec *domain.JobRecord) {
		rec.Result = msg
	})
}
