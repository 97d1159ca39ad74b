package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/timeline"
)

// Minimum segment quality included in a key-moments timeline.
const keyMomentQuality = 7

// StartKeyMoments admits a build that derives its plan directly from the
// cached analysis instead of asking the planner: every good take above
// the quality bar becomes one cut, in shoot order. It shares the build
// job identity, so a key-moments run and a planned build on the same
// folder exclude each other.
func (o *Orchestrator) StartKeyMoments(folder, clipFilter string) error {
	folder = filepath.Clean(folder)
	return o.registry.Start(folder, domain.JobKindBuild, func(ctx context.Context, p *Progress) error {
		return o.runKeyMoments(ctx, p, folder, clipFilter)
	})
}

func (o *Orchestrator) runKeyMoments(ctx context.Context, p *Progress, folder, clipFilter string) error {
	const stages = 4
	p.SetTotal(stages)

	p.SetStep("loading sidecars", "")
	sidecars, byPath, err := o.loadSidecars(folder)
	if err != nil {
		return err
	}
	if len(sidecars) == 0 {
		return &domain.PreconditionError{Reason: "no analyzed footage in " + folder + ", run ingest first"}
	}
	p.Advance()

	p.SetStep("selecting key moments", "")
	plan := keyMomentsPlan(folder, sidecars, clipFilter)
	if len(plan.Cuts) == 0 {
		return &domain.PreconditionError{Reason: "no segments qualify as key moments"}
	}
	p.Advance()

	p.SetStep("assembling timeline", "")
	tl, err := o.assemble(plan, byPath)
	if err != nil {
		return err
	}
	p.Advance()

	p.SetStep("pushing to edit host", "")
	pushDetail, pushErr := o.host.PushTimeline(ctx, tl)
	if pushErr != nil {
		p.AddError("edit host push failed, import the backup XML manually: " + pushErr.Error())
	}
	outputs, err := timeline.WriteBuildOutputs(folder, "key moments selection", plan, tl, byPath, false)
	if err != nil {
		return err
	}
	p.AddOutputs(outputs...)
	p.Advance()

	result := fmt.Sprintf("key moments %q: %d cuts, %.1fs", tl.Name, len(tl.Placements), tl.DurationSec())
	if pushErr == nil {
		result += "; " + pushDetail
	}
	p.SetResult(result)
	return nil
}

// keyMomentsPlan turns the cached analysis into a plan without any
// planner involvement. Cuts are ordered by source file then segment
// start, appended per track. clipFilter, when non-empty, restricts the
// selection to files whose stem contains it (case-insensitive).
func keyMomentsPlan(folder string, sidecars []*domain.Sidecar, clipFilter string) *domain.EditPlan {
	filter := strings.ToLower(strings.TrimSpace(clipFilter))

	plan := &domain.EditPlan{TimelineName: filepath.Base(folder) + " key moments"}
	for _, sc := range sidecars {
		if sc.Kind != domain.MediaKindVideo {
			continue
		}
		if filter != "" {
			stem := strings.TrimSuffix(sc.Filename, filepath.Ext(sc.Filename))
			if !strings.Contains(strings.ToLower(stem), filter) {
				continue
			}
		}
		for _, seg := range sc.Segments {
			if seg.GoodTake == nil || !*seg.GoodTake || seg.Quality < keyMomentQuality {
				continue
			}
			track := domain.TrackARoll
			if seg.Kind == domain.SegmentBRoll {
				track = domain.TrackBRoll
			}
			plan.Cuts = append(plan.Cuts, domain.Cut{
				SourceFile: sc.FilePath,
				SourceIn:   seg.Start,
				SourceOut:  seg.End,
				Track:      track,
			})
		}
	}

	sort.SliceStable(plan.Cuts, func(i, j int) bool {
		if plan.Cuts[i].SourceFile != plan.Cuts[j].SourceFile {
			return plan.Cuts[i].SourceFile < plan.Cuts[j].SourceFile
		}
		return plan.Cuts[i].SourceIn < plan.Cuts[j].SourceIn
	})
	return plan
}
