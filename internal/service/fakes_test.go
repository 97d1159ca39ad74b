package service

import (
	"context"
	"sync"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]*domain.Sidecar
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]*domain.Sidecar)}
}

func (s *memStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[path]
	return ok
}

func (s *memStore) Load(path string) (*domain.Sidecar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (s *memStore) Save(path string, entry *domain.Sidecar) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries[path] = &cp
	return nil
}

func (s *memStore) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[path]; !ok {
		return domain.ErrNotFound
	}
	delete(s.entries, path)
	return nil
}

type fakeProbe struct {
	results map[string]*domain.ProbeResult
	err     error
}

func (f *fakeProbe) Probe(ctx context.Context, path string) (*domain.ProbeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[path]; ok {
		cp := *r
		return &cp, nil
	}
	return &domain.ProbeResult{FPS: 24, DurationSec: 60, Codec: "h264"}, nil
}

type fakeEncoder struct {
	mu       sync.Mutex
	prepared []string
	err      error
}

func (f *fakeEncoder) NeedsProxy(ctx context.Context, path string) (bool, error) {
	return false, nil
}

func (f *fakeEncoder) Prepare(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.prepared = append(f.prepared, path)
	return path, nil
}

// fakeAnalysis hands back canned per-path sidecars and a canned plan,
// counting calls so tests can assert what the pipeline actually asked for.
type fakeAnalysis struct {
	mu       sync.Mutex
	uploads  []string
	analyzed []string
	planned  int

	sidecars  map[string]*domain.Sidecar
	plan      *domain.EditPlan
	uploadErr error
	planErr   error
}

func (f *fakeAnalysis) UploadMedia(ctx context.Context, path string) (*port.FileRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, path)
	return &port.FileRef{Name: path, URI: "files/" + path}, nil
}

func (f *fakeAnalysis) analyze(ref *port.FileRef) (*domain.Sidecar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, ref.Name)
	if sc, ok := f.sidecars[ref.Name]; ok {
		cp := *sc
		return &cp, nil
	}
	return &domain.Sidecar{}, nil
}

func (f *fakeAnalysis) AnalyzeVideo(ctx context.Context, ref *port.FileRef) (*domain.Sidecar, error) {
	return f.analyze(ref)
}

func (f *fakeAnalysis) AnalyzeAudio(ctx context.Context, ref *port.FileRef) (*domain.Sidecar, error) {
	return f.analyze(ref)
}

func (f *fakeAnalysis) PlanEdit(ctx context.Context, instruction string, sidecars []*domain.Sidecar, refs []*port.FileRef) (*domain.EditPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planned++
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.plan, nil
}

type fakeHost struct {
	mu     sync.Mutex
	pushed []*domain.Timeline
	err    error
	block  chan struct{}
}

func (f *fakeHost) PushTimeline(ctx context.Context, tl *domain.Timeline) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.pushed = append(f.pushed, tl)
	return "imported", nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []*domain.JobRecord
}

func (f *fakeHistory) RecordRun(rec *domain.JobRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) ListRecent(limit int) ([]*domain.JobRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, nil
}
