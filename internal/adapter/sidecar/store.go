// Package sidecar persists analysis entries as JSON documents adjacent to
// their source media file ("clip.mp4" -> "clip.mp4.json").
package sidecar

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/port"
)

type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Has is the ingest skip predicate: a file with an entry is never
// re-submitted for analysis.
func (s *Store) Has(mediaPath string) bool {
	info, err := os.Stat(domain.SidecarPath(mediaPath))
	return err == nil && !info.IsDir()
}

func (s *Store) Load(mediaPath string) (*domain.Sidecar, error) {
	data, err := os.ReadFile(domain.SidecarPath(mediaPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var entry domain.Sidecar
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parse sidecar for %s: %w", mediaPath, err)
	}
	return &entry, nil
}

// Save writes to a temporary file and publishes with an atomic rename, so a
// concurrent Load sees either the full entry or none at all.
func (s *Store) Save(mediaPath string, entry *domain.Sidecar) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	path := domain.SidecarPath(mediaPath)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (s *Store) Delete(mediaPath string) error {
	err := os.Remove(domain.SidecarPath(mediaPath))
	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	return err
}

var _ port.SidecarStore = (*Store)(nil)
