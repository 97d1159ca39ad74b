package domain

import "fmt"

// ProbeResult holds the measured properties of a media file. The probe is
// the sole authority for frame rate and duration: values the analysis
// service reports for those fields are advisory and never persisted.
type ProbeResult struct {
	// FPSFraction is the exact frame rate as reported by the prober,
	// e.g. "30000/1001". Preferred over FPS for frame math.
	FPSFraction string
	FPS         float64
	DurationSec float64
	Codec       string
	Width       int
	Height      int
}

// ParseFrameRate converts an ffprobe-style "num/den" fraction to a float.
// Returns 0 for empty or degenerate fractions.
func ParseFrameRate(fraction string) float64 {
	if fraction == "" || fraction == "0/0" {
		return 0
	}
	var num, den int
	if _, err := fmt.Sscanf(fraction, "%d/%d", &num, &den); err == nil && den > 0 {
		return float64(num) / float64(den)
	}
	return 0
}
