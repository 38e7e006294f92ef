package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"MarketDigest/internal/ports"
)

// FileStore writes optional per-run files (screenshots, digest bodies) under
// a base directory, mirroring the original jobs' scraped/ output folders.
// It holds no cross-run state; filenames carry the run ID.
type FileStore struct {
	baseDir string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore creates the base directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("artifact dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// SaveBinary writes a binary artifact and returns its path.
func (s *FileStore) SaveBinary(runID, name string, data []byte) (string, error) {
	path := s.path(runID, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	return path, nil
}

// SaveText writes a text artifact and returns its path.
func (s *FileStore) SaveText(runID, name, body string) (string, error) {
	return s.SaveBinary(runID, name, []byte(body))
}

func (s *FileStore) path(runID, name string) string {
	return filepath.Join(s.baseDir, runID+"_"+filepath.Base(name))
}
