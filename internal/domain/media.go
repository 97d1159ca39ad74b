package domain

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".mxf": true, ".avi": true,
	".webm": true, ".mkv": true, ".r3d": true, ".braw": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".aac": true,
	".flac": true, ".ogg": true, ".m4a": true,
}

// proxySuffix marks upload-safe proxies cached next to their source;
// proxies are never themselves treated as source media.
const proxySuffix = ".proxy.mp4"

// KindOf classifies a path by extension. ok is false for non-media files
// and for cached proxy files.
func KindOf(path string) (kind MediaKind, ok bool) {
	if strings.HasSuffix(path, proxySuffix) {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExts[ext]:
		return MediaKindVideo, true
	case audioExts[ext]:
		return MediaKindAudio, true
	}
	return "", false
}

// SidecarPath returns the analysis cache path adjacent to a media file,
// e.g. "clip.mp4" -> "clip.mp4.json".
func SidecarPath(mediaPath string) string {
	return mediaPath + ".json"
}

// ProxyPath returns the cached proxy path adjacent to a media file,
// e.g. "clip.mov" -> "clip.proxy.mp4".
func ProxyPath(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + proxySuffix
}

// ListMedia returns all media files directly under root, videos first, each
// group sorted by name. Subdirectories are not walked: a footage folder is
// flat by convention, and recursing would pick up render output.
func ListMedia(root string) (videos, audio []string, err error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		kind, ok := KindOf(path)
		if !ok {
			continue
		}
		if kind == MediaKindVideo {
			videos = append(videos, path)
		} else {
			audio = append(audio, path)
		}
	}
	sort.Strings(videos)
	sort.Strings(audio)
	return videos, audio, nil
}

// HasMusic reports whether the folder contains any input audio. When it does
// not, a build emits a music production brief alongside the other artifacts.
func HasMusic(root string) bool {
	_, audio, err := ListMedia(root)
	return err == nil && len(audio) > 0
}
