// Package sdcard implements ports.StorageMedium on top of a plain directory,
// standing in for the removable card the day logs live on.
package sdcard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/volttrace/volttrace/internal/ports"
)

type Medium struct {
	dir string
}

func NewMedium(dir string) (*Medium, error) {
	if dir == "" {
		return nil, fmt.Errorf("sdcard: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sdcard: mkdir %s: %w", dir, err)
	}
	return &Medium{dir: dir}, nil
}

// Dir returns the backing directory, shared with the file service.
func (m *Medium) Dir() string { return m.dir }

func (m *Medium) OpenAppend(name string) (io.WriteCloser, error) {
	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (m *Medium) Open(name string) (io.ReadCloser, error) {
	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (m *Medium) Size(name string) (int64, error) {
	path, err := m.resolve(name)
	if err != nil {
		return 0, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func (m *Medium) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Reinit re-creates the backing directory, the closest host-side equivalent
// of re-mounting a card that dropped off the bus.
func (m *Medium) Reinit() error {
	return os.MkdirAll(m.dir, 0o755)
}

func (m *Medium) resolve(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("sdcard: invalid file name %q", name)
	}
	return filepath.Join(m.dir, name), nil
}

var _ ports.StorageMedium = (*Medium)(nil)
