// Package fsstore implements document.Store on top of a directory of
// markdown files. Document names map to paths relative to the root, without
// the .md extension: "architecture/caching" reads <root>/architecture/caching.md.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwellhq/binder/pkg/document"
)

const mdExt = ".md"

// Store reads documents from a directory tree of .md files.
type Store struct {
	root string
}

// NewStore creates a filesystem store rooted at the given directory.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening binder root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("binder root %s is not a directory", abs)
	}

	return &Store{root: abs}, nil
}

// Root returns the absolute path of the binder directory.
func (s *Store) Root() string {
	return s.root
}

// Read returns the raw text of the named document.
func (s *Store) Read(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", document.NotFoundError{Name: name}
		}
		return "", fmt.Errorf("reading document %s: %w", name, err)
	}

	return string(data), nil
}

// Exists checks whether the named document is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking document %s: %w", name, err)
	}

	return !info.IsDir(), nil
}

// List returns the names of all .md documents under the root, sorted by
// filepath.WalkDir's lexical traversal order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			// Skip dot directories like .binder/ and .git/.
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), mdExt) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, NameFromPath(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing binder %s: %w", s.root, err)
	}

	return names, nil
}

// Close releases store resources. The filesystem store holds none.
func (s *Store) Close() error {
	return nil
}

// path maps a document name to an absolute file path, rejecting names that
// would escape the root.
func (s *Store) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid document name: %q", name)
	}

	return filepath.Join(s.root, clean+mdExt), nil
}

// NameFromPath converts a root-relative file path into a document name:
// separators normalized to '/', the .md extension dropped.
func NameFromPath(rel string) string {
	name := filepath.ToSlash(rel)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
