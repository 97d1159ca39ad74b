package service

// WorkerRunner decides where admitted jobs execute. The registry hands it
// a fully-bound closure; the runner only chooses the execution context.
type WorkerRunner interface {
	Run(fn func())
}

// GoRunner executes each job on its own goroutine. Production runner.
type GoRunner struct{}

func (GoRunner) Run(fn func()) { go fn() }

// SyncRunner executes jobs inline on the caller. Tests use it to drive the
// job state machine without real concurrency.
type SyncRunner struct{}

func (SyncRunner) Run(fn func()) { fn() }
