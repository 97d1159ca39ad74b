package domain

// Placement is one concrete clip placement on the target timeline, produced
// by the assembler and consumed once by the edit host. All positions are
// integer frames: timeline fields in the timeline's rate, source fields in
// the source's native rate.
type Placement struct {
	Track              Track      `json:"track"`
	SourceFile         string     `json:"source_file"`
	TimelineStartFrame int64      `json:"timeline_start_frame"`
	TimelineDurFrames  int64      `json:"timeline_duration_frames"`
	SourceInFrame      int64      `json:"source_in_frame"`
	SourceOutFrame     int64      `json:"source_out_frame"`
	SourceFPSNum       int64      `json:"source_fps_num"`
	SourceFPSDen       int64      `json:"source_fps_den"`
	SpeedRamp          *SpeedRamp `json:"speed_ramp,omitempty"`
	Transform          *Transform `json:"transform,omitempty"`
}

// Timeline is the assembled result: ordered placements on a single target
// timeline at one frame rate.
type Timeline struct {
	Name        string      `json:"name"`
	FPSNum      int64       `json:"fps_num"`
	FPSDen      int64       `json:"fps_den"`
	Placements  []Placement `json:"placements"`
	TotalFrames int64       `json:"total_frames"`
}

// DurationSec returns the achieved timeline duration in seconds. Reported
// to callers as informational; never enforced against a requested target.
func (t *Timeline) DurationSec() float64 {
	if t.FPSNum == 0 {
		return 0
	}
	return float64(t.TotalFrames) * float64(t.FPSDen) / float64(t.FPSNum)
}
