package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// FileStore keeps the episode state as an indented JSON document on disk.
// Go marshals map keys in sorted order, so successive documents diff
// cleanly and stay human-inspectable.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load(ctx context.Context) (models.EpisodeState, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{
				"file": s.Path,
			}).Warnf("State file unreadable, starting with empty episode state: %v", err)
		}
		return models.EpisodeState{}, nil
	}

	var st models.EpisodeState
	if err := json.Unmarshal(data, &st); err != nil {
		logrus.WithFields(logrus.Fields{
			"file": s.Path,
		}).Warnf("State file corrupt, starting with empty episode state: %v", err)
		return models.EpisodeState{}, nil
	}
	if st == nil {
		st = models.EpisodeState{}
	}

	return st, nil
}

// Save atomically overwrites the whole document: write to a temp file in
// the same directory, then rename over the target. A crash mid-run leaves
// either the previous document or the new one, never a partial write.
func (s *FileStore) Save(ctx context.Context, st models.EpisodeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal episode state: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("state: create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: replace state file %q: %w", s.Path, err)
	}

	return nil
}
