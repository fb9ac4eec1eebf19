package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/energycommunities/backend/internal/models"
)

// localStorage implements document storage using the local filesystem.
// Documents are laid out as <basePath>/<category>/<name>.
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath generates the full file path of a document
func (s *localStorage) generatePath(name string, category models.DocumentCategory) string {
	return filepath.Join(s.basePath, string(category), filepath.Base(name))
}

// Create creates a new file and returns a WriteCloser
func (s *localStorage) Create(name string, category models.DocumentCategory) (io.WriteCloser, error) {
	path := s.generatePath(name, category)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}

	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

// Open opens a stored document for reading
func (s *localStorage) Open(name string, category models.DocumentCategory) (io.ReadCloser, error) {
	return os.Open(s.generatePath(name, category))
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *localStorage) Delete(name string, category models.DocumentCategory) error {
	err := os.Remove(s.generatePath(name, category))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Reference returns the opaque blob reference stored with an application
func Reference(name string, category models.DocumentCategory) string {
	return string(category) + "/" + name
}
