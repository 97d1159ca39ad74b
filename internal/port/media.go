package port

import (
	"context"

	"github.com/evertl/reelpilot/internal/domain"
)

// MediaProbe measures authoritative frame rate, duration and codec facts
// about a media file. Local operation; callers do not retry through the
// service retry executor.
type MediaProbe interface {
	Probe(ctx context.Context, mediaPath string) (*domain.ProbeResult, error)
}

// ProxyEncoder produces an upload-safe proxy for a video when the source
// exceeds the upload constraints. Prepare returns the source path unchanged
// when no proxy is needed, or the cached/encoded proxy path otherwise.
type ProxyEncoder interface {
	NeedsProxy(ctx context.Context, mediaPath string) (bool, error)
	Prepare(ctx context.Context, mediaPath string) (uploadPath string, err error)
}
