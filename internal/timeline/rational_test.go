package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFPSFromFloat_NTSCSnapping(t *testing.T) {
	tests := []struct {
		in   float64
		want Rational
	}{
		{23.976, Rational{24000, 1001}},
		{23.98, Rational{24000, 1001}},
		{29.97, Rational{30000, 1001}},
		{59.94, Rational{60000, 1001}},
		{119.88, Rational{120000, 1001}},
		{24, Rational{24, 1}},
		{25, Rational{25, 1}},
		{30, Rational{30, 1}},
		{60, Rational{60, 1}},
		{120, Rational{120, 1}},
	}
	for _, tt := range tests {
		got, err := FPSFromFloat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "fps %v", tt.in)
	}
}

func TestFPSFromFloat_Invalid(t *testing.T) {
	_, err := FPSFromFloat(0)
	assert.Error(t, err)
	_, err = FPSFromFloat(-24)
	assert.Error(t, err)
}

func TestFPSFromFraction(t *testing.T) {
	r, ok := FPSFromFraction("30000/1001")
	require.True(t, ok)
	assert.Equal(t, Rational{30000, 1001}, r)

	r, ok = FPSFromFraction("50/2")
	require.True(t, ok)
	assert.Equal(t, Rational{25, 1}, r, "fractions reduce")

	_, ok = FPSFromFraction("0/0")
	assert.False(t, ok)
	_, ok = FPSFromFraction("not a rate")
	assert.False(t, ok)
}

func TestTimebase(t *testing.T) {
	assert.Equal(t, int64(24), Rational{24000, 1001}.Timebase())
	assert.Equal(t, int64(30), Rational{30000, 1001}.Timebase())
	assert.Equal(t, int64(25), Rational{25, 1}.Timebase())
	assert.True(t, Rational{24000, 1001}.NTSC())
	assert.False(t, Rational{24, 1}.NTSC())
}

func TestFloorCeilFrame_ExactBoundary(t *testing.T) {
	fps := Rational{24, 1}

	// 1.5s at 24fps is exactly frame 36; float noise must not move it.
	assert.Equal(t, int64(36), FloorFrame(1.5, fps))
	assert.Equal(t, int64(36), CeilFrame(1.5, fps))

	// Mid-frame instants floor down and ceil up.
	assert.Equal(t, int64(36), FloorFrame(1.52, fps))
	assert.Equal(t, int64(37), CeilFrame(1.52, fps))
}

func TestFloorFrame_NTSC(t *testing.T) {
	fps := Rational{24000, 1001}
	// 10.01s is exactly 240 frames of 23.976.
	assert.Equal(t, int64(240), FloorFrame(10.01, fps))
	assert.Equal(t, int64(240), CeilFrame(10.01, fps))
}

func TestRescale_Exact(t *testing.T) {
	// A frame count between two rates with the same 1001 denominator is a
	// pure ratio of the integer timebases.
	hfr := Rational{60000, 1001}
	target := Rational{24000, 1001}

	assert.Equal(t, int64(24), Rescale(60, hfr, target), "one second is one second")
	assert.Equal(t, int64(2400), Rescale(6000, hfr, target), "no drift over 100 seconds")

	// Identity.
	assert.Equal(t, int64(123), Rescale(123, target, target))
}

func TestRescale_RoundsToNearest(t *testing.T) {
	// 25 fps -> 24 fps: 25 frames is one second, exactly 24 target frames;
	// a single frame is 0.96 target frames and rounds to 1.
	assert.Equal(t, int64(24), Rescale(25, Rational{25, 1}, Rational{24, 1}))
	assert.Equal(t, int64(1), Rescale(1, Rational{25, 1}, Rational{24, 1}))
}

func TestRescaleRamp(t *testing.T) {
	hfr := Rational{120, 1}
	target := Rational{24, 1}
	ramp := Rational{4, 1}

	// One source second at 4x slow motion occupies four timeline seconds.
	assert.Equal(t, int64(96), RescaleRamp(120, hfr, target, ramp))
}

func TestRampFromFloat(t *testing.T) {
	r, err := RampFromFloat(4)
	require.NoError(t, err)
	assert.Equal(t, Rational{4, 1}, r)

	r, err = RampFromFloat(2.5)
	require.NoError(t, err)
	assert.Equal(t, Rational{5, 2}, r)

	_, err = RampFromFloat(0)
	assert.Error(t, err)
}

func TestRoundTrip_NoDriftAcrossRates(t *testing.T) {
	rates := []Rational{
		{24000, 1001}, {25, 1}, {30000, 1001}, {60000, 1001}, {60, 1},
	}
	target := Rational{24000, 1001}
	for _, from := range rates {
		// Roughly 30 seconds of source frames.
		srcFrames := 30 * from.Num / from.Den
		got := Rescale(srcFrames, from, target)
		wantSec := float64(srcFrames) * float64(from.Den) / float64(from.Num)
		gotSec := float64(got) * float64(target.Den) / float64(target.Num)
		assert.InDelta(t, wantSec, gotSec, 0.5/target.Float(), "from %s", from)
	}
}
