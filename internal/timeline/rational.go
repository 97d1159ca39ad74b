// Package timeline converts abstract edit plans into frame-accurate clip
// placements on a single target timeline. All frame math is integer and
// rational; floating point appears only once per cut, converting the plan's
// second-based values, so rounding error never accumulates across cuts.
package timeline

import (
	"fmt"
	"math"
)

// Rational is an exact frame rate (or ratio) as num/den.
type Rational struct {
	Num int64
	Den int64
}

func (r Rational) IsZero() bool { return r.Num == 0 }

func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// NTSC reports whether the rate has the 1001 denominator family.
func (r Rational) NTSC() bool { return r.Den == 1001 }

// Timebase is the integer timebase editing hosts use for this rate
// (24 for 23.976, 30 for 29.97, and so on).
func (r Rational) Timebase() int64 {
	return int64(math.Round(r.Float()))
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func (r Rational) normalize() Rational {
	if r.Num == 0 || r.Den == 0 {
		return Rational{}
	}
	g := gcd(r.Num, r.Den)
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

// ntscRates maps the rounded integer timebase to the exact NTSC rational.
var ntscRates = map[int64]Rational{
	24:  {24000, 1001},
	30:  {30000, 1001},
	60:  {60000, 1001},
	120: {120000, 1001},
}

// FPSFromFloat recovers the exact rational for a measured frame rate.
// NTSC rates (23.976, 29.97, 59.94, 119.88) snap to their 1001-denominator
// form; near-integer rates snap to n/1; anything else keeps millihertz
// precision.
func FPSFromFloat(fps float64) (Rational, error) {
	if fps <= 0 {
		return Rational{}, fmt.Errorf("non-positive frame rate %v", fps)
	}
	rounded := int64(math.Round(fps))
	if exact, ok := ntscRates[rounded]; ok && math.Abs(fps-exact.Float()) < 0.005 {
		return exact, nil
	}
	if math.Abs(fps-float64(rounded)) < 0.005 {
		return Rational{Num: rounded, Den: 1}, nil
	}
	return Rational{Num: int64(math.Round(fps * 1000)), Den: 1000}.normalize(), nil
}

// FPSFromFraction parses a prober fraction like "30000/1001".
func FPSFromFraction(fraction string) (Rational, bool) {
	var num, den int64
	if _, err := fmt.Sscanf(fraction, "%d/%d", &num, &den); err != nil || num <= 0 || den <= 0 {
		return Rational{}, false
	}
	return Rational{Num: num, Den: den}.normalize(), true
}

// frameEpsilon absorbs float representation error when a second value lands
// exactly on a frame boundary.
const frameEpsilon = 1e-9

// FloorFrame converts seconds to the last frame at or before that instant.
func FloorFrame(sec float64, fps Rational) int64 {
	return int64(math.Floor(sec*float64(fps.Num)/float64(fps.Den) + frameEpsilon))
}

// CeilFrame converts seconds to the first frame at or after that instant.
func CeilFrame(sec float64, fps Rational) int64 {
	return int64(math.Ceil(sec*float64(fps.Num)/float64(fps.Den) - frameEpsilon))
}

// divRound divides positive integers rounding half away from zero.
func divRound(num, den int64) int64 {
	return (2*num + den) / (2 * den)
}

// Rescale converts a frame count between rates by time equivalence:
// frames/from seconds expressed in to-rate frames, rounded to nearest.
// Pure integer arithmetic, so 59.94 -> 23.976 conversions cannot drift.
func Rescale(frames int64, from, to Rational) int64 {
	return divRound(frames*to.Num*from.Den, from.Num*to.Den)
}

// RescaleRamp is Rescale with the duration stretched by a slow-motion
// factor: a 4/1 ramp makes one source second occupy four timeline seconds.
func RescaleRamp(frames int64, from, to, ramp Rational) int64 {
	return divRound(frames*to.Num*from.Den*ramp.Num, from.Num*to.Den*ramp.Den)
}

// RampFromFloat converts a plan's slowdown factor to an exact ratio.
// Factors are small (2x, 4x, sometimes 2.5x), so a bounded denominator
// search is exact in practice.
func RampFromFloat(slowdown float64) (Rational, error) {
	if slowdown <= 0 {
		return Rational{}, fmt.Errorf("non-positive slowdown %v", slowdown)
	}
	for den := int64(1); den <= 64; den++ {
		num := math.Round(slowdown * float64(den))
		if math.Abs(slowdown*float64(den)-num) < 1e-6 {
			return Rational{Num: int64(num), Den: den}.normalize(), nil
		}
	}
	return Rational{Num: int64(math.Round(slowdown * 1000)), Den: 1000}.normalize(), nil
}
