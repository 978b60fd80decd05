// Package artifacts stores uploaded source documents (bank CSV exports,
// scanned invoices) referenced by transactions through their artifact
// locator.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	portssvc "github.com/openbooks/ledger_ingest_app/internal/core/ports/services"
)

// FSStore is a filesystem-backed artifact store. Locators are paths relative
// to the configured root; a locator may never escape the root.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at root, creating the directory if
// needed.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

var _ portssvc.ArtifactStore = (*FSStore)(nil)

// Save streams an uploaded artifact into the store and returns its locator.
func (s *FSStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	locator := uuid.NewString() + "_" + filepath.Base(name)
	path, err := s.resolve(locator)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact %s: %w", locator, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write artifact %s: %w", locator, err)
	}
	return locator, nil
}

// Remove deletes the artifact at locator. Removing an absent artifact is not
// an error (idempotent).
func (s *FSStore) Remove(_ context.Context, locator string) error {
	path, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove artifact %s: %w", locator, err)
	}
	return nil
}

// resolve maps a locator to an absolute path under the root, rejecting
// traversal attempts.
func (s *FSStore) resolve(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("artifact locator cannot be empty")
	}
	path := filepath.Join(s.root, filepath.Clean("/"+locator))
	if !strings.HasPrefix(path, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("artifact locator %q escapes store root", locator)
	}
	return path, nil
}
