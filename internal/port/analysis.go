package port

import (
	"context"

	"github.com/evertl/reelpilot/internal/domain"
)

// FileRef identifies a media file after upload to the analysis service.
type FileRef struct {
	Name string
	URI  string
}

// AnalysisService is the external AI collaborator. Responses are validated
// into strict domain structs at the adapter boundary; any shape violation
// surfaces as a fatal service error. All calls go through the retry
// executor.
type AnalysisService interface {
	UploadMedia(ctx context.Context, path string) (*FileRef, error)
	AnalyzeVideo(ctx context.Context, ref *FileRef) (*domain.Sidecar, error)
	AnalyzeAudio(ctx context.Context, ref *FileRef) (*domain.Sidecar, error)
	PlanEdit(ctx context.Context, instruction string, sidecars []*domain.Sidecar, refs []*FileRef) (*domain.EditPlan, error)
}
