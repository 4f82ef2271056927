// Package upload stores uploaded binary objects on disk under generated
// names and hands back stable relative references.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"instagram-clone/backend/pkg/apperrors"
	"instagram-clone/backend/pkg/logger"
)

// Service writes uploads below a single directory
type Service struct {
	dir    string
	logger *zap.Logger
}

// NewService ensures the upload directory exists
func NewService(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Service{dir: dir, logger: logger.Get()}, nil
}

// Save stores the content under a uuid name that keeps the original
// extension, and returns the relative reference to persist.
func (s *Service) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.Internal("failed to create upload file", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", apperrors.Internal("failed to write upload file", err)
	}

	ref := filepath.ToSlash(filepath.Join(filepath.Base(s.dir), name))
	s.logger.Debug("File stored", zap.String("ref", ref))
	return ref, nil
}

// Delete removes a stored file by its relative reference. Deleting a
// reference that no longer resolves is not an error.
func (s *Service) Delete(ref string) error {
	name := filepath.Base(filepath.FromSlash(ref))
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", ref, err)
	}
	return nil
}

// Dir returns the directory uploads are served from
func (s *Service) Dir() string {
	return s.dir
}
