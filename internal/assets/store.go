// Package assets serves the mascot images behind the ranking options.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

var ErrInvalidKey = errors.New("assets: invalid key")

// Store is read-only access to asset files by slash-separated key.
type Store interface {
	Get(key string) (io.ReadCloser, error)
}

// FSStore reads assets from an fs.FS, usually a directory on disk.
type FSStore struct{ fsys fs.FS }

// NewFSStore roots a store at base. The directory must exist.
func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./public"
	}
	st, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("assets: %s is not a directory", base)
	}
	return &FSStore{fsys: os.DirFS(base)}, nil
}

func NewStore(fsys fs.FS) *FSStore { return &FSStore{fsys: fsys} }

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	key = path.Clean(strings.TrimPrefix(key, "/"))
	if !fs.ValidPath(key) || key == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return s.fsys.Open(key)
}
