package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
	"github.com/evertl/reelpilot/internal/service"
)

// Pipeline is the slice of the orchestrator the API needs.
type Pipeline interface {
	StartIngest(folder, buildInstruction string) error
	IngestStatus(folder string) (*domain.JobRecord, error)
	StartBuild(folder, instruction string) error
	BuildStatus(folder string) (*domain.JobRecord, error)
	StartKeyMoments(folder, clipFilter string) error
}

type RouterConfig struct {
	Pipeline  Pipeline
	History   port.JobHistory
	EventBus  *service.EventBus
	APIToken  string
	Version   string
	StartTime time.Time
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware())
	r.Use(LoggingMiddleware())

	r.Get("/healthz", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.APIToken))

		r.Post("/folders/ingest", startIngestHandler(cfg))
		r.Get("/folders/ingest/status", ingestStatusHandler(cfg))
		r.Post("/folders/build", startBuildHandler(cfg))
		r.Get("/folders/build/status", buildStatusHandler(cfg))
		r.Post("/folders/key-moments", startKeyMomentsHandler(cfg))
		r.Get("/folders/events", eventsHandler(cfg))
		r.Get("/jobs/recent", recentJobsHandler(cfg))
	})

	return r
}

func healthHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func startIngestHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Folder == "" {
			WriteError(w, http.StatusBadRequest, "folder is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Pipeline.StartIngest(req.Folder, req.BuildInstruction); err != nil {
			writeStartError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, AcceptedResponse{Folder: req.Folder, Kind: string(domain.JobKindIngest)})
	}
}

func ingestStatusHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, cfg.Pipeline.IngestStatus)
	}
}

func startBuildHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BuildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Folder == "" {
			WriteError(w, http.StatusBadRequest, "folder is required", "BAD_REQUEST")
			return
		}
		if req.Instruction == "" {
			WriteError(w, http.StatusBadRequest, "instruction is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Pipeline.StartBuild(req.Folder, req.Instruction); err != nil {
			writeStartError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, AcceptedResponse{Folder: req.Folder, Kind: string(domain.JobKindBuild)})
	}
}

func buildStatusHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, cfg.Pipeline.BuildStatus)
	}
}

func startKeyMomentsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req KeyMomentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Folder == "" {
			WriteError(w, http.StatusBadRequest, "folder is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Pipeline.StartKeyMoments(req.Folder, req.ClipFilter); err != nil {
			writeStartError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, AcceptedResponse{Folder: req.Folder, Kind: string(domain.JobKindBuild)})
	}
}

func recentJobsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 200 {
				WriteError(w, http.StatusBadRequest, "limit must be 1-200", "BAD_REQUEST")
				return
			}
			limit = n
		}

		records, err := cfg.History.ListRecent(limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list job history", "INTERNAL_ERROR")
			return
		}
		resp := JobsResponse{Jobs: make([]JobResponse, len(records))}
		for i, rec := range records {
			resp.Jobs[i] = jobToResponse(rec)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, lookup func(string) (*domain.JobRecord, error)) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		WriteError(w, http.StatusBadRequest, "folder is required", "BAD_REQUEST")
		return
	}

	rec, err := lookup(folder)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "no job for folder", "NOT_FOUND")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}
	WriteJSON(w, http.StatusOK, jobToResponse(rec))
}

func writeStartError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrAlreadyRunning) {
		WriteError(w, http.StatusConflict, "a job of this kind is already running for the folder", "ALREADY_RUNNING")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}
