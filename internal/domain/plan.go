package domain

import "fmt"

// Track is the finite set of timeline tracks a cut may target. At assembly
// time this is an enum, never free text from the planning service.
type Track string

const (
	TrackARoll     Track = "a-roll"
	TrackBRoll     Track = "b-roll"
	TrackMusic     Track = "music"
	TrackVoiceover Track = "voiceover"
)

func (t Track) Valid() bool {
	switch t {
	case TrackARoll, TrackBRoll, TrackMusic, TrackVoiceover:
		return true
	}
	return false
}

// IsVideo reports whether the track carries picture rather than audio.
func (t Track) IsVideo() bool {
	return t == TrackARoll || t == TrackBRoll
}

// SpeedRamp is a time-remapping intent: play the source range back slowed
// down by the given factor (4 means 4x slow motion). Only meaningful on
// sources at or above the high-frame-rate threshold.
type SpeedRamp struct {
	Slowdown float64 `json:"slowdown"`
}

// Transform carries zoom/pan/tilt intent through to the edit host. The
// assembler preserves it on the placement without interpreting it.
type Transform struct {
	Kind   string             `json:"kind"`
	Ease   string             `json:"ease,omitempty"`
	Params map[string]float64 `json:"params,omitempty"`
}

// Cut is one planned edit: a source range bound for a timeline track.
// TimelineIn, when present, pins the cut at an absolute timeline position
// (used to anchor b-roll over specific a-roll moments); when absent the cut
// is appended at the track's running cursor.
type Cut struct {
	SourceFile string     `json:"source_file"`
	SourceIn   float64    `json:"source_in"`
	SourceOut  float64    `json:"source_out"`
	Track      Track      `json:"track"`
	TimelineIn *float64   `json:"timeline_in,omitempty"`
	SpeedRamp  *SpeedRamp `json:"speed_ramp,omitempty"`
	Transform  *Transform `json:"transform,omitempty"`
}

// EditPlan is the planning service's output: an ordered list of cuts,
// consumed once by the assembler and never persisted beyond the build's
// output artifacts.
type EditPlan struct {
	TimelineName      string  `json:"timeline_name"`
	TargetDurationSec float64 `json:"target_duration_sec,omitempty"`
	Cuts              []Cut   `json:"cuts"`
}

// Validate checks the plan's shape against the known source durations.
// Violations indicate a defective response from the planning service.
func (p *EditPlan) Validate(durations map[string]float64) error {
	if len(p.Cuts) == 0 {
		return fmt.Errorf("plan %q has no cuts", p.TimelineName)
	}
	for i, c := range p.Cuts {
		if c.SourceFile == "" {
			return fmt.Errorf("cut %d: empty source file", i)
		}
		dur, known := durations[c.SourceFile]
		if !known {
			return fmt.Errorf("cut %d: unknown source file %q", i, c.SourceFile)
		}
		if c.SourceIn < 0 || c.SourceIn >= c.SourceOut {
			return fmt.Errorf("cut %d (%s): invalid range [%v, %v]", i, c.SourceFile, c.SourceIn, c.SourceOut)
		}
		if c.SourceOut > dur {
			return fmt.Errorf("cut %d (%s): out point %v past source duration %v", i, c.SourceFile, c.SourceOut, dur)
		}
		if !c.Track.Valid() {
			return fmt.Errorf("cut %d (%s): unknown track %q", i, c.SourceFile, c.Track)
		}
		if c.TimelineIn != nil && *c.TimelineIn < 0 {
			return fmt.Errorf("cut %d (%s): negative timeline position %v", i, c.SourceFile, *c.TimelineIn)
		}
		if c.SpeedRamp != nil && c.SpeedRamp.Slowdown <= 0 {
			return fmt.Errorf("cut %d (%s): non-positive slowdown %v", i, c.SourceFile, c.SpeedRamp.Slowdown)
		}
	}
	return nil
}
