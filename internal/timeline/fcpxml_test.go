package timeline

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evertl/reelpilot/internal/domain"
)

func renderTimeline() *domain.Timeline {
	return &domain.Timeline{
		Name:        "demo cut",
		FPSNum:      24000,
		FPSDen:      1001,
		TotalFrames: 240,
		Placements: []domain.Placement{
			{
				Track:              domain.TrackARoll,
				SourceFile:         "/footage/a.mp4",
				TimelineStartFrame: 0,
				TimelineDurFrames:  120,
				SourceInFrame:      48,
				SourceOutFrame:     168,
				SourceFPSNum:       24000,
				SourceFPSDen:       1001,
			},
			{
				Track:              domain.TrackBRoll,
				SourceFile:         "/footage/b.mp4",
				TimelineStartFrame: 60,
				TimelineDurFrames:  48,
				SourceInFrame:      0,
				SourceOutFrame:     240,
				SourceFPSNum:       120,
				SourceFPSDen:       1,
			},
			{
				Track:              domain.TrackMusic,
				SourceFile:         "/footage/theme.wav",
				TimelineStartFrame: 0,
				TimelineDurFrames:  240,
				SourceInFrame:      0,
				SourceOutFrame:     240,
				SourceFPSNum:       24000,
				SourceFPSDen:       1001,
			},
		},
	}
}

func TestRenderFCPXML(t *testing.T) {
	out, err := RenderFCPXML(renderTimeline())
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, xml.Header), "xml declaration first")
	assert.Contains(t, s, "<!DOCTYPE xmeml>")
	assert.Contains(t, s, `<xmeml version="4">`)
	assert.Contains(t, s, "<name>demo cut</name>")
	assert.Contains(t, s, "<duration>240</duration>")
	assert.Contains(t, s, "<timebase>24</timebase>")
	assert.Contains(t, s, "<ntsc>TRUE</ntsc>")
	assert.Contains(t, s, "<pathurl>file:///footage/a.mp4</pathurl>")

	// Round-trip through the same structs to check track assignment.
	var doc xmemlDoc
	require.NoError(t, xml.Unmarshal(out, &doc))
	require.Len(t, doc.Sequence.Media.Video.Tracks, 2, "a-roll and b-roll tracks")
	require.Len(t, doc.Sequence.Media.Audio.Tracks, 1, "music only")
	assert.Equal(t, "a.mp4", doc.Sequence.Media.Video.Tracks[0].Clips[0].Name)
	assert.Equal(t, "b.mp4", doc.Sequence.Media.Video.Tracks[1].Clips[0].Name)
	assert.Equal(t, int64(60), doc.Sequence.Media.Video.Tracks[1].Clips[0].Start)

	// The b-roll source keeps its native 120fps timebase on the file node.
	assert.Equal(t, int64(120), doc.Sequence.Media.Video.Tracks[1].Clips[0].File.Rate.Timebase)
	assert.Equal(t, "FALSE", doc.Sequence.Media.Video.Tracks[1].Clips[0].File.Rate.NTSC)
}

func TestRenderFCPXML_CommentsCarryTimecodeMapping(t *testing.T) {
	out, err := RenderFCPXML(renderTimeline())
	require.NoError(t, err)

	var doc xmemlDoc
	require.NoError(t, xml.Unmarshal(out, &doc))
	comment := doc.Sequence.Media.Video.Tracks[0].Clips[0].Comments.MasterComment
	assert.Contains(t, comment, "src 00:00:02:00 @ 24000/1001")
	assert.Contains(t, comment, "rec 00:00:00:00 @ 24000/1001")
}

func TestFrameToTimecode(t *testing.T) {
	fps24 := Rational{24, 1}
	assert.Equal(t, "00:00:00:00", FrameToTimecode(0, fps24))
	assert.Equal(t, "00:00:01:00", FrameToTimecode(24, fps24))
	assert.Equal(t, "00:01:00:23", FrameToTimecode(24*60+23, fps24))
	assert.Equal(t, "01:00:00:00", FrameToTimecode(24*3600, fps24))

	// NTSC uses the rounded integer timebase for addressing.
	ntsc := Rational{30000, 1001}
	assert.Equal(t, "00:00:01:00", FrameToTimecode(30, ntsc))
}
