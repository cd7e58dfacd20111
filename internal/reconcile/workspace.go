package reconcile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	apperrors "alternator-reqgen/internal/common/errors"
	"alternator-reqgen/internal/models"
)

// Workspace reads and writes the YAML case files exchanged with the external
// runner. A missing or empty file reads as an empty set.
type Workspace interface {
	ReadCases(path string) ([]models.TestCase, error)
	WriteCases(path string, cases []models.TestCase) error
	ReadResolved(path string) ([]models.ResolvedCase, error)
	WriteResolved(path string, cases []models.ResolvedCase) error
	// Truncate empties the file, leaving it in place.
	Truncate(path string) error
	Exists(path string) bool
	// EnsureEmptyList creates path holding an empty list unless it exists.
	EnsureEmptyList(path string) error
}

// FileWorkspace is the filesystem Workspace.
type FileWorkspace struct{}

func NewFileWorkspace() *FileWorkspace { return &FileWorkspace{} }

func (FileWorkspace) ReadCases(path string) ([]models.TestCase, error) {
	var cases []models.TestCase
	if err := readYAML(path, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (FileWorkspace) WriteCases(path string, cases []models.TestCase) error {
	if cases == nil {
		cases = []models.TestCase{}
	}
	return writeYAML(path, cases)
}

func (FileWorkspace) ReadResolved(path string) ([]models.ResolvedCase, error) {
	var cases []models.ResolvedCase
	if err := readYAML(path, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (FileWorkspace) WriteResolved(path string, cases []models.ResolvedCase) error {
	if cases == nil {
		cases = []models.ResolvedCase{}
	}
	return writeYAML(path, cases)
}

func (FileWorkspace) Truncate(path string) error {
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return apperrors.NewWorkspaceIOFailedError(path, err)
	}
	return nil
}

func (FileWorkspace) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (w FileWorkspace) EnsureEmptyList(path string) error {
	if w.Exists(path) {
		return nil
	}
	return writeYAML(path, []models.TestCase{})
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperrors.NewWorkspaceIOFailedError(path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return apperrors.NewWorkspaceIOFailedError(path, err)
	}
	return nil
}

func writeYAML(path string, in interface{}) error {
	data, err := yaml.Marshal(in)
	if err != nil {
		return apperrors.NewWorkspaceIOFailedError(path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewWorkspaceIOFailedError(path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewWorkspaceIOFailedError(path, err)
	}
	return nil
}
