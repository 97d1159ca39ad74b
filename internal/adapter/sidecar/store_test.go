package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evertl/reelpilot/internal/domain"
)

func validEntry(path string) *domain.Sidecar {
	return &domain.Sidecar{
		FilePath: path,
		Filename: filepath.Base(path),
		Kind:     domain.MediaKindVideo,
		FPS:      23.976,
		Duration: 42.5,
		Segments: []domain.Segment{
			{Start: 0, End: 10, Kind: domain.SegmentARoll, Quality: 8, Transcript: "hello"},
			{Start: 10, End: 20, Kind: domain.SegmentBRoll, Quality: 5},
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	store := NewStore()

	assert.False(t, store.Has(media))

	require.NoError(t, store.Save(media, validEntry(media)))
	assert.True(t, store.Has(media))

	got, err := store.Load(media)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", got.Filename)
	assert.Equal(t, 23.976, got.FPS)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, "hello", got.Segments[0].Transcript)
}

func TestStore_SaveIsAdjacentAndLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	store := NewStore()

	require.NoError(t, store.Save(media, validEntry(media)))

	_, err := os.Stat(media + ".json")
	assert.NoError(t, err, "sidecar lives next to the media file")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestStore_SaveRejectsInvalidEntry(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	store := NewStore()

	bad := validEntry(media)
	bad.Segments[1].Start = 5 // overlaps the first segment

	require.Error(t, store.Save(media, bad))
	assert.False(t, store.Has(media), "nothing persisted on validation failure")
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore()
	_, err := store.Load(filepath.Join(t.TempDir(), "nope.mp4"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(media+".json", []byte("{not json"), 0644))

	_, err := NewStore().Load(media)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "clip.mp4")
	store := NewStore()

	require.NoError(t, store.Save(media, validEntry(media)))
	require.NoError(t, store.Delete(media))
	assert.False(t, store.Has(media))

	assert.ErrorIs(t, store.Delete(media), domain.ErrNotFound)
}
