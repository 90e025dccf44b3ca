// Package store persists the two application blobs — the user profile and
// the history collection — as plain JSON files. Each blob is read once at
// start and rewritten in full on every mutation. A malformed blob is treated
// as absent, never as a fatal error.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/randomtoy/faas-go/internal/domain"
)

const (
	profileFile = "profile.json"
	historyFile = "history.json"
)

type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) LoadProfile() (domain.UserProfile, bool, error) {
	var profile domain.UserProfile
	ok, err := s.read(profileFile, &profile)
	return profile, ok, err
}

func (s *FileStore) SaveProfile(profile domain.UserProfile) error {
	return s.write(profileFile, profile)
}

func (s *FileStore) LoadHistory() ([]domain.HistoryRecord, error) {
	var records []domain.HistoryRecord
	if _, err := s.read(historyFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *FileStore) SaveHistory(records []domain.HistoryRecord) error {
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return s.write(historyFile, records)
}

func (s *FileStore) read(name string, v any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding malformed blob", "file", name, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *FileStore) write(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
