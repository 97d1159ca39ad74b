package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	kind, ok := KindOf("/footage/clip.MP4")
	require.True(t, ok)
	assert.Equal(t, MediaKindVideo, kind)

	kind, ok = KindOf("/footage/theme.wav")
	require.True(t, ok)
	assert.Equal(t, MediaKindAudio, kind)

	_, ok = KindOf("/footage/readme.txt")
	assert.False(t, ok)

	_, ok = KindOf("/footage/clip.proxy.mp4")
	assert.False(t, ok, "cached proxies are not source media")
}

func TestSidecarAndProxyPaths(t *testing.T) {
	assert.Equal(t, "/f/clip.mp4.json", SidecarPath("/f/clip.mp4"))
	assert.Equal(t, "/f/clip.proxy.mp4", ProxyPath("/f/clip.mov"))
}

func TestListMedia(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mov", "a.mp4", "theme.wav", "notes.txt", "a.proxy.mp4", "a.mp4.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "renders"), 0755))

	videos, audio, err := ListMedia(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.mp4"), filepath.Join(dir, "b.mov")}, videos)
	assert.Equal(t, []string{filepath.Join(dir, "theme.wav")}, audio)
}

func TestHasMusic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp4"), []byte("x"), 0644))
	assert.False(t, HasMusic(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme.mp3"), []byte("x"), 0644))
	assert.True(t, HasMusic(dir))
}
