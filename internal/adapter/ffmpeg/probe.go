// Package ffmpeg shells out to ffprobe/ffmpeg for media measurement and
// proxy encoding. These are local operations and do not go through the
// service retry executor.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
)

type Prober struct{}

func NewProber() *Prober {
	return &Prober{}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// Probe measures the authoritative frame rate, duration, codec and
// dimensions of a media file.
func (p *Prober) Probe(ctx context.Context, mediaPath string) (*domain.ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		mediaPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", mediaPath, err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", mediaPath, err)
	}

	result := &domain.ProbeResult{}
	if parsed.Format.Duration != "" {
		result.DurationSec, _ = strconv.ParseFloat(parsed.Format.Duration, 64)
	}
	for _, s := range parsed.Streams {
		if s.CodecType != "video" {
			continue
		}
		result.Codec = s.CodecName
		result.Width = s.Width
		result.Height = s.Height
		result.FPSFraction = s.RFrameRate
		result.FPS = domain.ParseFrameRate(s.RFrameRate)
		if result.DurationSec == 0 && s.Duration != "" {
			result.DurationSec, _ = strconv.ParseFloat(s.Duration, 64)
		}
		break
	}
	if result.DurationSec <= 0 {
		return nil, fmt.Errorf("ffprobe %s: no usable duration", mediaPath)
	}
	return result, nil
}

var _ port.MediaProbe = (*Prober)(nil)
