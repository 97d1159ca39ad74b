package domain

import "fmt"

type SegmentKind string

const (
	SegmentARoll SegmentKind = "a-roll"
	SegmentBRoll SegmentKind = "b-roll"
)

// Span is a sub-range inside a segment, in source seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one distinct moment the analysis service found in a video.
type Segment struct {
	Start       float64     `json:"start"`
	End         float64     `json:"end"`
	Kind        SegmentKind `json:"kind"`
	Quality     int         `json:"quality"`
	Transcript  string      `json:"transcript,omitempty"`
	GoodTake    *bool       `json:"good_take,omitempty"`
	FillerWords []Span      `json:"filler_words,omitempty"`
	CameraMove  string      `json:"camera_move,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// Section is the audio counterpart of a Segment.
type Section struct {
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	Label  string   `json:"label"`
	Energy string   `json:"energy,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Sidecar is the persisted per-file analysis entry. Once written it is
// immutable until explicitly deleted; its presence is the sole skip
// condition for re-analysis.
type Sidecar struct {
	FilePath      string    `json:"file_path"`
	Filename      string    `json:"filename"`
	Kind          MediaKind `json:"kind"`
	FPS           float64   `json:"fps"`
	Duration      float64   `json:"duration"`
	Segments      []Segment `json:"segments,omitempty"`
	Sections      []Section `json:"sections,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	AnalysisModel string    `json:"analysis_model,omitempty"`
}

// Validate enforces the structural invariants of an entry before it is
// persisted: segments ordered by start, non-overlapping, within duration,
// quality scores in [1,10].
func (s *Sidecar) Validate() error {
	if s.Kind != MediaKindVideo && s.Kind != MediaKindAudio {
		return fmt.Errorf("sidecar %s: unknown media kind %q", s.Filename, s.Kind)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("sidecar %s: non-positive duration %v", s.Filename, s.Duration)
	}
	if s.Kind == MediaKindVideo && s.FPS <= 0 {
		return fmt.Errorf("sidecar %s: video entry missing frame rate", s.Filename)
	}
	prevEnd := 0.0
	for i, seg := range s.Segments {
		if seg.Start < 0 || seg.End <= seg.Start {
			return fmt.Errorf("sidecar %s: segment %d has invalid range [%v, %v]", s.Filename, i, seg.Start, seg.End)
		}
		if seg.End > s.Duration {
			return fmt.Errorf("sidecar %s: segment %d ends at %v past duration %v", s.Filename, i, seg.End, s.Duration)
		}
		if seg.Start < prevEnd {
			return fmt.Errorf("sidecar %s: segment %d overlaps previous (starts %v before %v)", s.Filename, i, seg.Start, prevEnd)
		}
		if seg.Kind != SegmentARoll && seg.Kind != SegmentBRoll {
			return fmt.Errorf("sidecar %s: segment %d has unknown kind %q", s.Filename, i, seg.Kind)
		}
		if seg.Quality < 1 || seg.Quality > 10 {
			return fmt.Errorf("sidecar %s: segment %d quality %d outside [1,10]", s.Filename, i, seg.Quality)
		}
		prevEnd = seg.End
	}
	return nil
}
