// Package fcphost is an edit host adapter for NLEs that watch an import
// directory: pushing a timeline means rendering it as FCP7 XML into that
// directory. Direct scripting integrations implement the same port.
package fcphost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
	"github.com/evertl/reelpilot/internal/timeline"
)

type Host struct {
	importDir string
}

// NewHost returns a host targeting importDir. An empty importDir means no
// host is attached.
func NewHost(importDir string) *Host {
	return &Host{importDir: importDir}
}

// PushTimeline writes the rendered timeline into the host's import
// directory. Operates on live user state: callers attempt it exactly once.
func (h *Host) PushTimeline(ctx context.Context, tl *domain.Timeline) (string, error) {
	if h.importDir == "" {
		return "", &domain.PreconditionError{Reason: "no edit host configured, import the backup XML manually"}
	}
	if info, err := os.Stat(h.importDir); err != nil || !info.IsDir() {
		return "", &domain.PreconditionError{Reason: fmt.Sprintf("edit host import dir %s not reachable", h.importDir)}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc, err := timeline.RenderFCPXML(tl)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(h.importDir, timeline.SafeName(tl.Name)+".xml")
	if err := os.WriteFile(dest, doc, 0644); err != nil {
		return "", fmt.Errorf("write timeline to edit host: %w", err)
	}
	return fmt.Sprintf("timeline %q delivered to %s", tl.Name, dest), nil
}

var _ port.EditHost = (*Host)(nil)
