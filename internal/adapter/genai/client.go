// Package genai implements the analysis service port over a generative AI
// HTTP API: media upload, per-file analysis, and edit planning. Responses
// are decoded into strict domain structs at this boundary; any shape
// violation is a fatal service error, never a partial parse.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/infrastructure/logger"
	"github.com/evertl/reelpilot/internal/port"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	// pollInterval between file-state checks while an upload processes.
	pollInterval time.Duration
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		model:        model,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		pollInterval: 2 * time.Second,
	}
}

type fileState struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

// UploadMedia uploads a file and waits until the service has finished
// processing it.
func (c *Client) UploadMedia(ctx context.Context, path string) (*port.FileRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", f)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-File-Name", filepath.Base(path))
	c.setCommonHeaders(req)

	var state fileState
	if err := c.do(req, "upload media", &state); err != nil {
		return nil, err
	}

	for state.State == "PROCESSING" {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/files/"+state.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("create file-state request: %w", err)
		}
		c.setCommonHeaders(getReq)
		if err := c.do(getReq, "poll upload state", &state); err != nil {
			return nil, err
		}
	}
	if state.State != "ACTIVE" {
		return nil, domain.NewFatalServiceError("upload media", 0,
			fmt.Sprintf("file %s ended in state %s", filepath.Base(path), state.State))
	}

	logger.Debug.Printf("uploaded %s as %s", filepath.Base(path), state.Name)
	return &port.FileRef{Name: state.Name, URI: state.URI}, nil
}

type analyzeRequest struct {
	Model   string `json:"model"`
	FileURI string `json:"file_uri"`
	Kind    string `json:"kind"`
}

// AnalyzeVideo requests structured analysis of an uploaded video. The fps
// and duration the service returns are advisory; the ingest pipeline
// replaces them with probe-measured values before persisting.
func (c *Client) AnalyzeVideo(ctx context.Context, ref *port.FileRef) (*domain.Sidecar, error) {
	return c.analyze(ctx, ref, string(domain.MediaKindVideo))
}

func (c *Client) AnalyzeAudio(ctx context.Context, ref *port.FileRef) (*domain.Sidecar, error) {
	return c.analyze(ctx, ref, string(domain.MediaKindAudio))
}

func (c *Client) analyze(ctx context.Context, ref *port.FileRef, kind string) (*domain.Sidecar, error) {
	body := analyzeRequest{Model: c.model, FileURI: ref.URI, Kind: kind}
	var entry domain.Sidecar
	if err := c.postJSON(ctx, ":analyze", "analyze "+kind, body, &entry); err != nil {
		return nil, err
	}
	entry.Kind = domain.MediaKind(kind)
	entry.AnalysisModel = c.model
	return &entry, nil
}

type planRequest struct {
	Model       string            `json:"model"`
	Instruction string            `json:"instruction"`
	Sidecars    []*domain.Sidecar `json:"sidecars"`
	FileURIs    []string          `json:"file_uris,omitempty"`
}

// PlanEdit asks the service to plan an edit over the accumulated analysis.
// refs, when present, let the planner look at the uploaded proxies again.
func (c *Client) PlanEdit(ctx context.Context, instruction string, sidecars []*domain.Sidecar, refs []*port.FileRef) (*domain.EditPlan, error) {
	uris := make([]string, 0, len(refs))
	for _, ref := range refs {
		uris = append(uris, ref.URI)
	}
	body := planRequest{Model: c.model, Instruction: instruction, Sidecars: sidecars, FileURIs: uris}
	var plan domain.EditPlan
	if err := c.postJSON(ctx, ":plan", "plan edit", body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) postJSON(ctx context.Context, action, op string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}
	url := fmt.Sprintf("%s/v1/models/%s%s", c.baseURL, c.model, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)
	return c.do(req, op, out)
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
}

// do executes the request and classifies failures: network faults, 429 and
// 5xx are transient; every other non-2xx status and every malformed body
// is fatal.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewTransientServiceError(op, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := tail(string(respBody), 512)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return domain.NewTransientServiceError(op, resp.StatusCode, msg)
		}
		return domain.NewFatalServiceError(op, resp.StatusCode, msg)
	}

	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return domain.NewFatalServiceError(op, resp.StatusCode, "malformed response: "+err.Error())
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

var _ port.AnalysisService = (*Client)(nil)
