package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalProvider implements Provider on the local filesystem, mirroring the
// uploads directory served as static files.
type LocalProvider struct {
	dir       string
	publicURL string
}

// NewLocalProvider creates the upload directory if needed. publicURL is the
// base under which the directory is served, e.g. "http://localhost:5000/uploads".
func NewLocalProvider(dir, publicURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &LocalProvider{dir: dir, publicURL: publicURL}, nil
}

// Save writes the image to disk and returns its served URL.
func (l *LocalProvider) Save(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	path := filepath.Join(l.dir, filepath.Base(objectName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %q: %w", path, err)
	}
	return l.publicURL + "/" + filepath.Base(objectName), nil
}
