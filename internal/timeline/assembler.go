package timeline

import (
	"fmt"
	"sort"

	"github.com/evertl/reelpilot/internal/domain"
)

// SourceInfo carries the probe-measured facts the assembler needs per
// referenced source file.
type SourceInfo struct {
	FPS         Rational
	DurationSec float64
}

// Options configures assembly. TargetFPS zero means the timeline rate is
// chosen by majority vote over the plan's source rates, ties broken by the
// first cut's source. HFRThreshold is the minimum source fps (as a float)
// a cut must have to carry a speed ramp.
type Options struct {
	TargetFPS    float64
	HFRThreshold float64
}

type Assembler struct {
	forcedFPS    Rational
	hfrThreshold float64
}

func NewAssembler(opts Options) (*Assembler, error) {
	a := &Assembler{hfrThreshold: opts.HFRThreshold}
	if a.hfrThreshold <= 0 {
		a.hfrThreshold = 60
	}
	if opts.TargetFPS > 0 {
		fps, err := FPSFromFloat(opts.TargetFPS)
		if err != nil {
			return nil, fmt.Errorf("target fps: %w", err)
		}
		a.forcedFPS = fps
	}
	return a, nil
}

// Assemble maps an ordered edit plan to concrete placements. The plan must
// already have passed shape validation; errors here are AssemblyErrors
// identifying the defective cut.
func (a *Assembler) Assemble(plan *domain.EditPlan, sources map[string]SourceInfo) (*domain.Timeline, error) {
	if len(plan.Cuts) == 0 {
		return nil, &domain.PreconditionError{Reason: "edit plan has no cuts"}
	}

	target := a.forcedFPS
	if target.IsZero() {
		target = majorityFPS(plan, sources)
	}

	name := plan.TimelineName
	if name == "" {
		name = "Timeline"
	}

	tl := &domain.Timeline{
		Name:   name,
		FPSNum: target.Num,
		FPSDen: target.Den,
	}

	type interval struct{ start, end int64 }
	placed := map[domain.Track][]interval{}
	cursor := map[domain.Track]int64{}

	for i, cut := range plan.Cuts {
		src, ok := sources[cut.SourceFile]
		if !ok {
			return nil, &domain.AssemblyError{CutIndex: i, SourceFile: cut.SourceFile, Reason: "no probe data for source"}
		}
		// Rate-less sources (audio) are counted in timeline frames.
		if src.FPS.IsZero() {
			src.FPS = target
		}

		inFrame := FloorFrame(cut.SourceIn, src.FPS)
		outFrame := CeilFrame(cut.SourceOut, src.FPS)
		if maxFrame := CeilFrame(src.DurationSec, src.FPS); outFrame > maxFrame {
			outFrame = maxFrame
		}
		if outFrame <= inFrame {
			return nil, &domain.AssemblyError{
				CutIndex:   i,
				SourceFile: cut.SourceFile,
				Reason:     fmt.Sprintf("range [%v, %v] rounds to zero frames at %s fps", cut.SourceIn, cut.SourceOut, src.FPS),
			}
		}
		srcFrames := outFrame - inFrame

		var durFrames int64
		if cut.SpeedRamp != nil {
			if src.FPS.Float() < a.hfrThreshold {
				return nil, &domain.AssemblyError{
					CutIndex:   i,
					SourceFile: cut.SourceFile,
					Reason:     fmt.Sprintf("speed ramp on %s fps source, below %v fps threshold", src.FPS, a.hfrThreshold),
				}
			}
			ramp, err := RampFromFloat(cut.SpeedRamp.Slowdown)
			if err != nil {
				return nil, &domain.AssemblyError{CutIndex: i, SourceFile: cut.SourceFile, Reason: err.Error()}
			}
			durFrames = RescaleRamp(srcFrames, src.FPS, target, ramp)
		} else {
			durFrames = Rescale(srcFrames, src.FPS, target)
		}
		if durFrames <= 0 {
			return nil, &domain.AssemblyError{
				CutIndex:   i,
				SourceFile: cut.SourceFile,
				Reason:     fmt.Sprintf("%d source frames round to zero timeline frames at %s fps", srcFrames, target),
			}
		}

		start := cursor[cut.Track]
		if cut.TimelineIn != nil {
			start = FloorFrame(*cut.TimelineIn, target)
		}
		end := start + durFrames

		// Same-track overlap is a defective plan, not something to repair
		// by nudging. Cross-track overlap is legitimate (b-roll over a-roll).
		for _, iv := range placed[cut.Track] {
			if start < iv.end && iv.start < end {
				return nil, &domain.AssemblyError{
					CutIndex:   i,
					SourceFile: cut.SourceFile,
					Reason: fmt.Sprintf("overlaps existing %s clip at frames [%d, %d)",
						cut.Track, iv.start, iv.end),
				}
			}
		}
		placed[cut.Track] = append(placed[cut.Track], interval{start, end})
		if end > cursor[cut.Track] {
			cursor[cut.Track] = end
		}
		if end > tl.TotalFrames {
			tl.TotalFrames = end
		}

		tl.Placements = append(tl.Placements, domain.Placement{
			Track:              cut.Track,
			SourceFile:         cut.SourceFile,
			TimelineStartFrame: start,
			TimelineDurFrames:  durFrames,
			SourceInFrame:      inFrame,
			SourceOutFrame:     outFrame,
			SourceFPSNum:       src.FPS.Num,
			SourceFPSDen:       src.FPS.Den,
			SpeedRamp:          cut.SpeedRamp,
			Transform:          cut.Transform,
		})
	}

	return tl, nil
}

// majorityFPS picks the most common source rate among the plan's cuts.
// A tie goes to the first cut's source rate.
func majorityFPS(plan *domain.EditPlan, sources map[string]SourceInfo) Rational {
	counts := map[Rational]int{}
	var order []Rational
	for _, cut := range plan.Cuts {
		src, ok := sources[cut.SourceFile]
		if !ok || src.FPS.IsZero() {
			continue
		}
		fps := src.FPS.normalize()
		if counts[fps] == 0 {
			order = append(order, fps)
		}
		counts[fps]++
	}
	if len(order) == 0 {
		return Rational{Num: 24, Den: 1}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order[0]
}
