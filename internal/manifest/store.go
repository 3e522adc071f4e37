// Package manifest reads and writes a component's declared version inside its
// Cargo manifest.
//
// Reads decode the manifest as TOML. Writes never re-encode it: the version
// value is patched in place by a line scanner so that ordering, comments,
// indentation, and line endings of every other byte survive unchanged.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/errors"
)

// Store reads and writes component versions relative to a repository root.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the repository directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the absolute manifest path for a component.
func (s *Store) Path(c domain.Component) string {
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(s.root, c.Manifest)
}

// packageDoc is the subset of a Cargo manifest the store cares about.
// Pointers distinguish an absent section or field from an empty one.
type packageDoc struct {
	Package *struct {
		Version *string `toml:"version"`
	} `toml:"package"`
}

// Read returns the version declared in the component's [package] section.
func (s *Store) Read(c domain.Component) (domain.Version, error) {
	path := s.Path(c)

	data, err := os.ReadFile(path) //#nosec G304 -- manifest paths come from project configuration
	if err != nil {
		return domain.Version{}, fmt.Errorf("%s: reading %s: %w: %w", c.Name, c.Manifest, errors.ErrManifest, err)
	}

	var doc packageDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return domain.Version{}, fmt.Errorf("%s: parsing %s: %w: %w", c.Name, c.Manifest, errors.ErrManifest, err)
	}
	if doc.Package == nil {
		return domain.Version{}, fmt.Errorf("%s: no [%s] section in %s: %w", c.Name, packageSection, c.Manifest, errors.ErrManifest)
	}
	if doc.Package.Version == nil || *doc.Package.Version == "" {
		return domain.Version{}, fmt.Errorf("%s: no version in [%s] of %s: %w", c.Name, packageSection, c.Manifest, errors.ErrManifest)
	}

	v, err := domain.ParseVersion(*doc.Package.Version)
	if err != nil {
		return domain.Version{}, fmt.Errorf("%s: %s: %w: %w", c.Name, c.Manifest, errors.ErrManifest, err)
	}
	return v, nil
}

// Write replaces the component's declared version with v. The file is left
// untouched when the section or field cannot be found. Unlike Read, errors
// name only the manifest path; callers add the component.
func (s *Store) Write(c domain.Component, v domain.Version) error {
	path := s.Path(c)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", c.Manifest, errors.ErrManifest, err)
	}

	data, err := os.ReadFile(path) //#nosec G304 -- manifest paths come from project configuration
	if err != nil {
		return fmt.Errorf("reading %s: %w: %w", c.Manifest, errors.ErrManifest, err)
	}

	updated, err := Rewrite(data, v)
	if err != nil {
		return fmt.Errorf("updating %s: %w", c.Manifest, err)
	}

	if bytes.Equal(updated, data) {
		return nil
	}

	return atomicWrite(path, updated, info.Mode().Perm())
}

// atomicWrite writes data next to path and renames it into place so a
// failure never leaves a half-written manifest behind.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
