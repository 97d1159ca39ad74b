package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
)

func testClient(baseURL string) *Client {
	c := NewClient(baseURL, "test-key", "test-model")
	c.pollInterval = time.Millisecond
	return c
}

func tempMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0644))
	return path
}

func TestUploadMedia_PollsUntilActive(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/files":
			assert.Equal(t, "clip.mp4", r.Header.Get("X-File-Name"))
			json.NewEncoder(w).Encode(fileState{Name: "files/abc", URI: "uri/abc", State: "PROCESSING"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/files/files/abc":
			state := "PROCESSING"
			if polls.Add(1) >= 2 {
				state = "ACTIVE"
			}
			json.NewEncoder(w).Encode(fileState{Name: "files/abc", URI: "uri/abc", State: state})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	ref, err := testClient(server.URL).UploadMedia(context.Background(), tempMedia(t))
	require.NoError(t, err)
	assert.Equal(t, "files/abc", ref.Name)
	assert.Equal(t, "uri/abc", ref.URI)
	assert.Equal(t, int32(2), polls.Load())
}

func TestUploadMedia_FailedStateIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fileState{Name: "files/abc", State: "FAILED"})
	}))
	defer server.Close()

	_, err := testClient(server.URL).UploadMedia(context.Background(), tempMedia(t))
	require.Error(t, err)
	assert.False(t, domain.IsTransient(err))
	assert.Contains(t, err.Error(), "FAILED")
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))

		_, err := testClient(server.URL).AnalyzeVideo(context.Background(), &port.FileRef{URI: "uri/abc"})
		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.transient, domain.IsTransient(err), "status %d", tt.status)

		var se *domain.ServiceError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, tt.status, se.Status)
		server.Close()
	}
}

func TestDo_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := testClient(server.URL).AnalyzeVideo(context.Background(), &port.FileRef{URI: "uri/abc"})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestAnalyze_StrictDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fps": 30, "surprise_field": true}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).AnalyzeVideo(context.Background(), &port.FileRef{URI: "uri/abc"})
	require.Error(t, err)
	assert.False(t, domain.IsTransient(err))
	assert.Contains(t, err.Error(), "malformed response")
}

func TestAnalyzeVideo_SetsKindAndModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/test-model:analyze", r.URL.Path)

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "video", req.Kind)
		assert.Equal(t, "uri/abc", req.FileURI)

		w.Write([]byte(`{"fps": 29.97, "duration": 12.5, "segments": [{"start": 0, "end": 5, "kind": "a-roll", "quality": 7}]}`))
	}))
	defer server.Close()

	entry, err := testClient(server.URL).AnalyzeVideo(context.Background(), &port.FileRef{URI: "uri/abc"})
	require.NoError(t, err)
	assert.Equal(t, domain.MediaKindVideo, entry.Kind)
	assert.Equal(t, "test-model", entry.AnalysisModel)
	require.Len(t, entry.Segments, 1)
	assert.Equal(t, domain.SegmentARoll, entry.Segments[0].Kind)
}

func TestPlanEdit_SendsSidecarsAndURIs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/test-model:plan", r.URL.Path)

		var req planRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tight teaser", req.Instruction)
		assert.Equal(t, []string{"uri/a", "uri/b"}, req.FileURIs)
		require.Len(t, req.Sidecars, 1)

		w.Write([]byte(`{"timeline_name": "teaser", "cuts": [{"source_file": "a.mp4", "source_in": 0, "source_out": 3, "track": "a-roll"}]}`))
	}))
	defer server.Close()

	plan, err := testClient(server.URL).PlanEdit(context.Background(), "tight teaser",
		[]*domain.Sidecar{{Filename: "a.mp4", Kind: domain.MediaKindVideo, FPS: 24, Duration: 60}},
		[]*port.FileRef{{URI: "uri/a"}, {URI: "uri/b"}})
	require.NoError(t, err)
	assert.Equal(t, "teaser", plan.TimelineName)
	require.Len(t, plan.Cuts, 1)
	assert.Equal(t, domain.TrackARoll, plan.Cuts[0].Track)
}
