package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
	"github.com/evertl/reelpilot/internal/port"
	"github.com/evertl/reelpilot/internal/retry"
	"github.com/evertl/reelpilot/internal/timeline"
)

// Build pipeline stage count, for progress reporting: load sidecars,
// upload proxies, request plan, assemble, push to host, write outputs.
const buildStages = 6

// StartBuild admits a background timeline build for folder.
func (o *Orchestrator) StartBuild(folder, instruction string) error {
	folder = filepath.Clean(folder)
	return o.registry.Start(folder, domain.JobKindBuild, func(ctx context.Context, p *Progress) error {
		return o.runBuild(ctx, p, folder, instruction)
	})
}

func (o *Orchestrator) BuildStatus(folder string) (*domain.JobRecord, error) {
	return o.registry.Status(filepath.Clean(folder), domain.JobKindBuild)
}

// runBuild is a single pass over the whole folder. Stages are strictly
// sequential: each depends on every earlier output. No external timeline
// state is touched until plan and assembly have fully succeeded, and the
// edit host push is attempted exactly once.
func (o *Orchestrator) runBuild(ctx context.Context, p *Progress, folder, instruction string) error {
	p.SetTotal(buildStages)

	// Stage 1: load every sidecar. Zero sidecars means there is nothing to
	// edit: a precondition failure, not something to retry.
	p.SetStep("loading sidecars", "")
	sidecars, byPath, err := o.loadSidecars(folder)
	if err != nil {
		return err
	}
	if len(sidecars) == 0 {
		return &domain.PreconditionError{Reason: "no analyzed footage in " + folder + ", run ingest first"}
	}
	p.Advance()

	// Stage 2: make sure every video the planner may look at has an
	// upload-safe proxy, reusing anything cached from ingest.
	p.SetStep("uploading proxies", "")
	refs := o.uploadProxies(ctx, p, sidecars)
	p.Advance()

	// Stage 3: request the edit plan, then validate its shape strictly
	// before anything downstream trusts it.
	p.SetStep("planning edit", "")
	plan, err := retry.DoValue(ctx, o.exec, "plan edit", func(ctx context.Context) (*domain.EditPlan, error) {
		return o.analysis.PlanEdit(ctx, instruction, sidecars, refs)
	})
	if err != nil {
		return err
	}
	durations := make(map[string]float64, len(byPath))
	for path, sc := range byPath {
		durations[path] = sc.Duration
	}
	if err := plan.Validate(durations); err != nil {
		return domain.NewFatalServiceError("plan edit", 0, err.Error())
	}
	p.Advance()

	// Stage 4: frame-accurate assembly.
	p.SetStep("assembling timeline", "")
	tl, err := o.assemble(plan, byPath)
	if err != nil {
		return err
	}
	if len(tl.Placements) < len(plan.Cuts) {
		p.AddError(fmt.Sprintf("placed %d of %d planned cuts", len(tl.Placements), len(plan.Cuts)))
	}
	p.Advance()

	// Stage 5: push to the edit host, once. It operates on live user
	// state, so failure is reported for manual import, never retried.
	p.SetStep("pushing to edit host", "")
	pushDetail, pushErr := o.host.PushTimeline(ctx, tl)
	if pushErr != nil {
		p.AddError("edit host push failed, import the backup XML manually: " + pushErr.Error())
		logger.Warn.Printf("edit host push failed for %s: %v", logger.SanitizeForLog(folder), pushErr)
	}
	p.Advance()

	// Stage 6: backup rendering and supplementary documents.
	p.SetStep("writing outputs", "")
	outputs, err := timeline.WriteBuildOutputs(folder, instruction, plan, tl, byPath, !domain.HasMusic(folder))
	if err != nil {
		return err
	}
	p.AddOutputs(outputs...)
	p.Advance()

	result := fmt.Sprintf("built %q: %d cuts, %.1fs achieved", tl.Name, len(tl.Placements), tl.DurationSec())
	if plan.TargetDurationSec > 0 {
		result += fmt.Sprintf(" (%.0fs requested)", plan.TargetDurationSec)
	}
	if pushErr == nil {
		result += "; " + pushDetail
	}
	p.SetResult(result)
	return nil
}

// loadSidecars collects every cached analysis entry in the folder, in a
// stable order (videos first). Corrupt entries are skipped, not fatal.
func (o *Orchestrator) loadSidecars(folder string) ([]*domain.Sidecar, map[string]*domain.Sidecar, error) {
	videos, audio, err := domain.ListMedia(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("list media in %s: %w", folder, err)
	}

	var ordered []*domain.Sidecar
	byPath := make(map[string]*domain.Sidecar)
	for _, path := range append(append([]string{}, videos...), audio...) {
		if !o.store.Has(path) {
			continue
		}
		entry, err := o.store.Load(path)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn.Printf("skipping unreadable sidecar for %s: %v", filepath.Base(path), err)
			}
			continue
		}
		ordered = append(ordered, entry)
		byPath[path] = entry
	}
	return ordered, byPath, nil
}

// uploadProxies prepares and uploads proxies for the planner's second
// look at the footage. Upload failures degrade planning but do not abort
// the build; the sidecar analysis is still available.
func (o *Orchestrator) uploadProxies(ctx context.Context, p *Progress, sidecars []*domain.Sidecar) []*port.FileRef {
	var refs []*port.FileRef
	for _, sc := range sidecars {
		if sc.Kind != domain.MediaKindVideo {
			continue
		}
		uploadPath, err := o.encoder.Prepare(ctx, sc.FilePath)
		if err != nil {
			p.AddError(fmt.Sprintf("%s: proxy: %v", sc.Filename, err))
			continue
		}
		ref, err := retry.DoValue(ctx, o.exec, "upload "+sc.Filename, func(ctx context.Context) (*port.FileRef, error) {
			return o.analysis.UploadMedia(ctx, uploadPath)
		})
		if err != nil {
			p.AddError(fmt.Sprintf("%s: upload: %v", sc.Filename, err))
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// assemble converts the plan against probe-measured source facts.
func (o *Orchestrator) assemble(plan *domain.EditPlan, byPath map[string]*domain.Sidecar) (*domain.Timeline, error) {
	asm, err := timeline.NewAssembler(o.asmOpts)
	if err != nil {
		return nil, err
	}
	sources := make(map[string]timeline.SourceInfo, len(byPath))
	for path, sc := range byPath {
		info := timeline.SourceInfo{DurationSec: sc.Duration}
		if sc.Kind == domain.MediaKindVideo {
			fps, err := timeline.FPSFromFloat(sc.FPS)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", sc.Filename, err)
			}
			info.FPS = fps
		} else {
			// Audio has no native frame rate; place it in the timeline's.
			info.FPS = timeline.Rational{}
		}
		sources[path] = info
	}
	return asm.Assemble(plan, sources)
}
