package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evertl/reelpilot/internal/domain"
)

func terminalRecord(runID string, state domain.JobState) *domain.JobRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.JobRecord{
		RunID:       runID,
		Folder:      "/footage/day1",
		Kind:        domain.JobKindIngest,
		State:       state,
		Completed:   3,
		Total:       3,
		Errors:      []string{"clip2.mp4: upload: HTTP 500"},
		Result:      "analyzed 3 new files (0 already cached)",
		OutputPaths: []string{"/footage/day1/demo.xml"},
		StartedAt:   now.Add(-time.Minute),
		FinishedAt:  now,
	}
}

func TestHistory_RecordAndList(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.RecordRun(terminalRecord("r1", domain.JobStateDone)))
	require.NoError(t, h.RecordRun(terminalRecord("r2", domain.JobStateError)))

	records, err := h.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "r2", records[0].RunID, "newest first")
	assert.Equal(t, domain.JobStateError, records[0].State)
	assert.Equal(t, "r1", records[1].RunID)
	assert.Equal(t, []string{"clip2.mp4: upload: HTTP 500"}, records[1].Errors)
	assert.Equal(t, []string{"/footage/day1/demo.xml"}, records[1].OutputPaths)
	assert.Equal(t, 3, records[1].Completed)
}

func TestHistory_RefusesNonTerminal(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)
	defer h.Close()

	rec := terminalRecord("r1", domain.JobStateRunning)
	assert.Error(t, h.RecordRun(rec))
}

func TestHistory_ListLimit(t *testing.T) {
	h, err := NewHistory(t.TempDir())
	require.NoError(t, err)
	defer h.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, h.RecordRun(terminalRecord("r", domain.JobStateDone)))
	}

	records, err := h.ListRecent(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = h.ListRecent(0)
	require.NoError(t, err)
	assert.Len(t, records, 5, "non-positive limit falls back to the default")
}

func TestHistory_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	h, err := NewHistory(dir)
	require.NoError(t, err)
	require.NoError(t, h.RecordRun(terminalRecord("r1", domain.JobStateDone)))
	require.NoError(t, h.Close())

	h, err = NewHistory(dir)
	require.NoError(t, err)
	defer h.Close()

	records, err := h.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].RunID)
}
