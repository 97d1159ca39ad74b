package port

import "github.com/evertl/reelpilot/internal/domain"

// SidecarStore persists per-file analysis entries adjacent to their source.
// Save must be atomic from a reader's perspective: a concurrent Load never
// observes a partially written entry.
type SidecarStore interface {
	Has(mediaPath string) bool
	Load(mediaPath string) (*domain.Sidecar, error)
	Save(mediaPath string, entry *domain.Sidecar) error
	Delete(mediaPath string) error
}
