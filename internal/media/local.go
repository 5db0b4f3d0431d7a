package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects in a directory that the application serves itself.
type Local struct {
	dir    string
	prefix string
}

// NewLocal creates dir if needed. prefix is the URL path the directory is
// mounted on, base path included (e.g. "/karir/media").
func NewLocal(dir, prefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Local{dir: dir, prefix: strings.TrimRight(prefix, "/")}, nil
}

// Dir returns the directory objects are written to.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	name = filepath.Base(name)
	out, err := os.Create(filepath.Join(l.dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// Delete removes an object. A missing object is not an error.
func (l *Local) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.Base(path)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) URL(path string) string {
	return l.prefix + "/" + path
}
