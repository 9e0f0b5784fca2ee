// Package iconstore keeps uploaded collection icons.
package iconstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

var contentTypes = map[string]string{
	".png": "image/png",
	".svg": "image/svg+xml",
	".ico": "image/x-icon",
}

// ContentTypeFor maps a stored icon name to the type it is served with.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// validName rejects anything that could escape the store.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// FSStore writes icons into a local directory.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Save(_ context.Context, name, _ string, data []byte) error {
	if !validName(name) {
		return domain.Validation("invalid icon name")
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}
	return nil
}

func (s *FSStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	if !validName(name) {
		return nil, "", domain.NotFound("icon not found")
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", domain.NotFound("icon not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("open icon: %w", err)
	}
	return f, ContentTypeFor(name), nil
}

var _ ports.IconStore = (*FSStore)(nil)
