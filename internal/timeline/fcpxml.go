package timeline

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evertl/reelpilot/internal/domain"
)

// FCP7 interchange XML (xmeml). Editing hosts import this as the backup
// path when direct timeline push is unavailable.

type xmemlDoc struct {
	XMLName  xml.Name      `xml:"xmeml"`
	Version  string        `xml:"version,attr"`
	Sequence xmemlSequence `xml:"sequence"`
}

type xmemlRate struct {
	Timebase int64  `xml:"timebase"`
	NTSC     string `xml:"ntsc"`
}

type xmemlSequence struct {
	Name     string     `xml:"name"`
	Duration int64      `xml:"duration"`
	Rate     xmemlRate  `xml:"rate"`
	Media    xmemlMedia `xml:"media"`
}

type xmemlMedia struct {
	Video xmemlTrackGroup `xml:"video"`
	Audio xmemlTrackGroup `xml:"audio"`
}

type xmemlTrackGroup struct {
	Tracks []xmemlTrack `xml:"track"`
}

type xmemlTrack struct {
	Clips []xmemlClip `xml:"clipitem"`
}

type xmemlClip struct {
	ID       string        `xml:"id,attr"`
	Name     string        `xml:"name"`
	Duration int64         `xml:"duration"`
	Rate     xmemlRate     `xml:"rate"`
	Start    int64         `xml:"start"`
	End      int64         `xml:"end"`
	In       int64         `xml:"in"`
	Out      int64         `xml:"out"`
	File     xmemlFile     `xml:"file"`
	Comments xmemlComments `xml:"comments"`
}

type xmemlFile struct {
	ID      string    `xml:"id,attr"`
	Name    string    `xml:"name"`
	PathURL string    `xml:"pathurl"`
	Rate    xmemlRate `xml:"rate"`
}

type xmemlComments struct {
	MasterComment string `xml:"mastercomment1"`
}

func boolAttr(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func rateOf(r Rational) xmemlRate {
	return xmemlRate{Timebase: r.Timebase(), NTSC: boolAttr(r.NTSC())}
}

// videoTrackOrder and audioTrackOrder fix track numbering in the rendered
// sequence: V1 a-roll, V2 b-roll, A1 music, A2 voiceover.
var videoTrackOrder = []domain.Track{domain.TrackARoll, domain.TrackBRoll}
var audioTrackOrder = []domain.Track{domain.TrackMusic, domain.TrackVoiceover}

// RenderFCPXML renders the assembled timeline as FCP7 interchange XML.
// Each clip comment carries the explicit timecode offset mapping the
// source's timebase to the sequence's.
func RenderFCPXML(tl *domain.Timeline) ([]byte, error) {
	seqRate := Rational{Num: tl.FPSNum, Den: tl.FPSDen}

	doc := xmemlDoc{
		Version: "4",
		Sequence: xmemlSequence{
			Name:     tl.Name,
			Duration: tl.TotalFrames,
			Rate:     rateOf(seqRate),
		},
	}

	byTrack := map[domain.Track][]xmemlClip{}
	for i, p := range tl.Placements {
		srcRate := Rational{Num: p.SourceFPSNum, Den: p.SourceFPSDen}
		clip := xmemlClip{
			ID:       fmt.Sprintf("clipitem-%d", i+1),
			Name:     filepath.Base(p.SourceFile),
			Duration: p.TimelineDurFrames,
			Rate:     rateOf(seqRate),
			Start:    p.TimelineStartFrame,
			End:      p.TimelineStartFrame + p.TimelineDurFrames,
			In:       p.SourceInFrame,
			Out:      p.SourceOutFrame,
			File: xmemlFile{
				ID:      fmt.Sprintf("file-%d", i+1),
				Name:    filepath.Base(p.SourceFile),
				PathURL: "file://" + p.SourceFile,
				Rate:    rateOf(srcRate),
			},
			Comments: xmemlComments{
				MasterComment: fmt.Sprintf("src %s @ %s -> rec %s @ %s",
					FrameToTimecode(p.SourceInFrame, srcRate), srcRate,
					FrameToTimecode(p.TimelineStartFrame, seqRate), seqRate),
			},
		}
		byTrack[p.Track] = append(byTrack[p.Track], clip)
	}

	for _, t := range videoTrackOrder {
		if clips := byTrack[t]; len(clips) > 0 {
			doc.Sequence.Media.Video.Tracks = append(doc.Sequence.Media.Video.Tracks, xmemlTrack{Clips: clips})
		}
	}
	for _, t := range audioTrackOrder {
		if clips := byTrack[t]; len(clips) > 0 {
			doc.Sequence.Media.Audio.Tracks = append(doc.Sequence.Media.Audio.Tracks, xmemlTrack{Clips: clips})
		}
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal xmeml: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<!DOCTYPE xmeml>\n")
	sb.Write(body)
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// FrameToTimecode formats a frame count as HH:MM:SS:FF in the rate's
// integer timebase (non-drop addressing).
func FrameToTimecode(frame int64, fps Rational) string {
	tb := fps.Timebase()
	if tb <= 0 {
		tb = 30
	}
	frames := frame % tb
	totalSeconds := frame / tb
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
