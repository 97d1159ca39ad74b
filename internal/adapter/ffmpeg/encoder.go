package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
	"github.com/evertl/reelpilot/internal/port"
)

// safeCodecs are accepted by the analysis service without re-encoding.
var safeCodecs = map[string]bool{
	"h264": true, "avc": true, "avc1": true,
	"hevc": true, "h265": true, "hev1": true,
}

type Encoder struct {
	prober   port.MediaProbe
	maxBytes int64
	longEdge int
}

// NewEncoder builds a proxy encoder. maxBytes is the upload size ceiling;
// longEdge the maximum pixel dimension the analysis service accepts.
func NewEncoder(prober port.MediaProbe, maxBytes int64, longEdge int) *Encoder {
	return &Encoder{prober: prober, maxBytes: maxBytes, longEdge: longEdge}
}

// NeedsProxy decides whether a video must be re-encoded before upload:
// oversized files, unusual codecs, or frames wider than the accepted edge.
func (e *Encoder) NeedsProxy(ctx context.Context, mediaPath string) (bool, error) {
	info, err := os.Stat(mediaPath)
	if err != nil {
		return false, err
	}
	if info.Size() > e.maxBytes {
		return true, nil
	}

	probe, err := e.prober.Probe(ctx, mediaPath)
	if err != nil {
		return false, err
	}
	if !safeCodecs[strings.ToLower(probe.Codec)] {
		return true, nil
	}
	if probe.Width > e.longEdge || probe.Height > e.longEdge {
		return true, nil
	}
	return false, nil
}

// Prepare returns an upload-safe path for a video: the source itself when
// it already fits the constraints, otherwise a proxy cached adjacent to the
// source and reused across runs.
func (e *Encoder) Prepare(ctx context.Context, mediaPath string) (string, error) {
	needs, err := e.NeedsProxy(ctx, mediaPath)
	if err != nil {
		return "", err
	}
	if !needs {
		return mediaPath, nil
	}

	proxyPath := domain.ProxyPath(mediaPath)
	if _, err := os.Stat(proxyPath); err == nil {
		logger.Debug.Printf("reusing cached proxy %s", proxyPath)
		return proxyPath, nil
	}

	logger.Info.Printf("encoding proxy %s -> %s", mediaPath, proxyPath)

	tmpPath := proxyPath + ".tmp.mp4"
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", mediaPath,
		"-vf", fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", e.longEdge, e.longEdge),
		"-c:v", "libx264",
		"-crf", "23",
		"-preset", "fast",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y", tmpPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("ffmpeg proxy encode %s: %w: %s", mediaPath, err, tail(string(out), 500))
	}
	if err := os.Rename(tmpPath, proxyPath); err != nil {
		return "", err
	}

	if info, err := os.Stat(proxyPath); err == nil && info.Size() > e.maxBytes {
		logger.Warn.Printf("proxy %s is still %d bytes after encode, upload may be rejected", proxyPath, info.Size())
	}
	return proxyPath, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

var _ port.ProxyEncoder = (*Encoder)(nil)
