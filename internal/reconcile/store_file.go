package reconcile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	apperrors "alternator-reqgen/internal/common/errors"
)

// FileStore keeps the history in a single YAML document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load treats a missing or empty file as an empty history.
func (s *FileStore) Load(_ context.Context) (*History, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewHistory(), nil
	}
	if err != nil {
		return nil, apperrors.NewStoreFailedError(BackendFile, "load", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewHistory(), nil
	}
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewStoreFailedError(BackendFile, "load", err)
	}
	return HistoryFrom(raw), nil
}

// Persist replaces the file through a temporary sibling.
func (s *FileStore) Persist(_ context.Context, h *History) error {
	data, err := yaml.Marshal(h.Map())
	if err != nil {
		return apperrors.NewStoreFailedError(BackendFile, "persist", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return apperrors.NewStoreFailedError(BackendFile, "persist", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
