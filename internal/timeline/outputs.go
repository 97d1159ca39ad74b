package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evertl/reelpilot/internal/domain"
)

// Supplementary build artifacts written next to the footage: the edit plan
// document, the XML backup, director's notes, the voiceover script and,
// when the folder has no input music, a music production brief. The script
// and the brief are written twice, as markdown and as plain text.

// SafeName makes a timeline name usable as a filename component.
func SafeName(name string) string {
	r := strings.NewReplacer(":", " -", "/", "-", "\\", "-")
	s := strings.TrimSpace(r.Replace(name))
	if s == "" {
		return "timeline"
	}
	return s
}

// WriteBuildOutputs writes all per-build artifacts into root and returns
// their paths in write order.
func WriteBuildOutputs(root, instruction string, plan *domain.EditPlan, tl *domain.Timeline, sidecars map[string]*domain.Sidecar, withMusicBrief bool) ([]string, error) {
	safe := SafeName(tl.Name)
	var paths []string

	write := func(name string, data []byte) error {
		p := filepath.Join(root, name)
		if err := os.WriteFile(p, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, p)
		return nil
	}

	planDoc, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal edit plan: %w", err)
	}
	if err := write("."+safe+".plan.json", planDoc); err != nil {
		return nil, err
	}

	xmlDoc, err := RenderFCPXML(tl)
	if err != nil {
		return nil, err
	}
	if err := write(safe+".xml", xmlDoc); err != nil {
		return nil, err
	}

	if err := write(safe+".notes.md", directorNotes(instruction, plan, tl)); err != nil {
		return nil, err
	}

	voMD, voTXT := voiceoverScript(tl, sidecars)
	if err := write(safe+".voiceover.md", voMD); err != nil {
		return nil, err
	}
	if err := write(safe+".voiceover.txt", voTXT); err != nil {
		return nil, err
	}

	if withMusicBrief {
		briefMD, briefTXT := musicBrief(tl, sidecars)
		if err := write(safe+".music-brief.md", briefMD); err != nil {
			return nil, err
		}
		if err := write(safe+".music-brief.txt", briefTXT); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

func directorNotes(instruction string, plan *domain.EditPlan, tl *domain.Timeline) []byte {
	fps := Rational{Num: tl.FPSNum, Den: tl.FPSDen}
	var b strings.Builder

	fmt.Fprintf(&b, "# Director's Notes - %s\n\n", tl.Name)
	if instruction != "" {
		fmt.Fprintf(&b, "Instruction: %s\n\n", instruction)
	}
	fmt.Fprintf(&b, "Timeline rate: %s (timebase %d)\n", fps, fps.Timebase())
	fmt.Fprintf(&b, "Achieved duration: %.2fs (%d frames)\n", tl.DurationSec(), tl.TotalFrames)
	if plan.TargetDurationSec > 0 {
		fmt.Fprintf(&b, "Requested duration: %.2fs\n", plan.TargetDurationSec)
	}
	b.WriteString("\n| # | Record In | Record Out | Track | Source | Detail |\n")
	b.WriteString("|---|-----------|------------|-------|--------|--------|\n")

	for i, p := range tl.Placements {
		var details []string
		if p.SpeedRamp != nil {
			details = append(details, fmt.Sprintf("%.3gx slow motion", p.SpeedRamp.Slowdown))
		}
		if p.Transform != nil {
			d := p.Transform.Kind
			if p.Transform.Ease != "" {
				d += " (" + p.Transform.Ease + ")"
			}
			details = append(details, d)
		}
		fmt.Fprintf(&b, "| %03d | %s | %s | %s | %s | %s |\n",
			i+1,
			FrameToTimecode(p.TimelineStartFrame, fps),
			FrameToTimecode(p.TimelineStartFrame+p.TimelineDurFrames, fps),
			p.Track,
			filepath.Base(p.SourceFile),
			strings.Join(details, ", "),
		)
	}
	return []byte(b.String())
}

// voiceoverScript collects a-roll transcripts in record order.
func voiceoverScript(tl *domain.Timeline, sidecars map[string]*domain.Sidecar) (md, txt []byte) {
	fps := Rational{Num: tl.FPSNum, Den: tl.FPSDen}

	type line struct {
		tc   string
		text string
	}
	var lines []line
	for _, p := range tl.Placements {
		if p.Track != domain.TrackARoll {
			continue
		}
		sc := sidecars[p.SourceFile]
		if sc == nil {
			continue
		}
		inSec := float64(p.SourceInFrame) * float64(p.SourceFPSDen) / float64(p.SourceFPSNum)
		outSec := float64(p.SourceOutFrame) * float64(p.SourceFPSDen) / float64(p.SourceFPSNum)
		var parts []string
		for _, seg := range sc.Segments {
			if seg.Transcript == "" || seg.End <= inSec || seg.Start >= outSec {
				continue
			}
			parts = append(parts, seg.Transcript)
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, line{
			tc:   FrameToTimecode(p.TimelineStartFrame, fps),
			text: strings.Join(parts, " "),
		})
	}

	var mb, tb strings.Builder
	fmt.Fprintf(&mb, "# Voiceover Script - %s\n\n", tl.Name)
	for _, l := range lines {
		fmt.Fprintf(&mb, "**[%s]** %s\n\n", l.tc, l.text)
		fmt.Fprintf(&tb, "[%s] %s\n", l.tc, l.text)
	}
	if len(lines) == 0 {
		mb.WriteString("_No spoken segments placed on the a-roll track._\n")
		tb.WriteString("No spoken segments placed on the a-roll track.\n")
	}
	return []byte(mb.String()), []byte(tb.String())
}

// musicBrief summarises what a composer would need: total duration and the
// mood vocabulary gathered from the analysed footage.
func musicBrief(tl *domain.Timeline, sidecars map[string]*domain.Sidecar) (md, txt []byte) {
	tagSet := map[string]bool{}
	for _, sc := range sidecars {
		for _, t := range sc.Tags {
			tagSet[t] = true
		}
		for _, seg := range sc.Segments {
			for _, t := range seg.Tags {
				tagSet[t] = true
			}
		}
	}
	tags := make([]string, 0, len(tagSet))
	for t := range tagSet {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	dur := tl.DurationSec()
	var mb, tb strings.Builder
	fmt.Fprintf(&mb, "# Music Production Brief - %s\n\n", tl.Name)
	fmt.Fprintf(&mb, "- Length: %.2f seconds, hard picture lock\n", dur)
	mb.WriteString("- Delivery: stereo 48kHz WAV, no limiter on the master\n")
	if len(tags) > 0 {
		fmt.Fprintf(&mb, "- Footage mood keywords: %s\n", strings.Join(tags, ", "))
	}
	mb.WriteString("- Hit points: see the record timecodes in the director's notes\n")

	fmt.Fprintf(&tb, "Music brief for %s\n", tl.Name)
	fmt.Fprintf(&tb, "Length: %.2f seconds, hard picture lock\n", dur)
	tb.WriteString("Delivery: stereo 48kHz WAV, no limiter on the master\n")
	if len(tags) > 0 {
		fmt.Fprintf(&tb, "Footage mood keywords: %s\n", strings.Join(tags, ", "))
	}
	return []byte(mb.String()), []byte(tb.String())
}
