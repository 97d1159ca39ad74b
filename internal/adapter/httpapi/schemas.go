package httpapi

import (
	"time"

	"github.com/evertl/reelpilot/internal/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type IngestRequest struct {
	Folder string `json:"folder"`
	// When set, a build with this instruction is chained after the ingest
	// completes.
	BuildInstruction string `json:"build_instruction,omitempty"`
}

type BuildRequest struct {
	Folder      string `json:"folder"`
	Instruction string `json:"instruction"`
}

type KeyMomentsRequest struct {
	Folder     string `json:"folder"`
	ClipFilter string `json:"clip_filter,omitempty"`
}

type AcceptedResponse struct {
	Folder string `json:"folder"`
	Kind   string `json:"kind"`
}

type JobResponse struct {
	RunID       string   `json:"run_id,omitempty"`
	Folder      string   `json:"folder"`
	Kind        string   `json:"kind"`
	State       string   `json:"state"`
	CurrentStep string   `json:"current_step,omitempty"`
	CurrentFile string   `json:"current_file,omitempty"`
	Completed   int      `json:"completed"`
	Total       int      `json:"total"`
	Errors      []string `json:"errors,omitempty"`
	Result      string   `json:"result,omitempty"`
	OutputPaths []string `json:"output_paths,omitempty"`
	StartedAt   string   `json:"started_at"`
	FinishedAt  string   `json:"finished_at,omitempty"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

func jobToResponse(rec *domain.JobRecord) JobResponse {
	resp := JobResponse{
		RunID:       rec.RunID,
		Folder:      rec.Folder,
		Kind:        string(rec.Kind),
		State:       string(rec.State),
		CurrentStep: rec.CurrentStep,
		CurrentFile: rec.CurrentFile,
		Completed:   rec.Completed,
		Total:       rec.Total,
		Errors:      rec.Errors,
		Result:      rec.Result,
		OutputPaths: rec.OutputPaths,
		StartedAt:   rec.StartedAt.Format(time.RFC3339),
	}
	if !rec.FinishedAt.IsZero() {
		resp.FinishedAt = rec.FinishedAt.Format(time.RFC3339)
	}
	return resp
}
