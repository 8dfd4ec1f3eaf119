// Package store persists plan documents as named JSON records on disk.
// One record per name, no versioning: a Put over an existing name replaces
// it. Writes go through a temp file and rename so a failed save never
// clobbers the previous record.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kanba/internal/plan"
	"kanba/internal/util"
)

// ErrNotFound indicates no record exists under the requested name.
var ErrNotFound = errors.New("plan record not found")

// Store manages plan records under a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created lazily on
// the first Put.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// NormalizeName converts a user-supplied destination name to the
// kebab-case form used on disk.
func NormalizeName(name string) (string, error) {
	normalized := util.ToKebabCase(name)
	if normalized == "" {
		return "", fmt.Errorf("invalid record name %q", name)
	}
	return normalized, nil
}

// Put writes the plan document under name, replacing any existing record.
func (s *Store) Put(name string, p *plan.Plan) error {
	normalized, err := NormalizeName(name)
	if err != nil {
		return err
	}

	data, err := p.Document()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create plans directory: %w", err)
	}

	path := s.recordPath(normalized)
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Get loads and validates the plan stored under name.
func (s *Store) Get(name string) (*plan.Plan, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.recordPath(normalized))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, normalized)
		}
		return nil, fmt.Errorf("failed to read plan record: %w", err)
	}

	p, err := plan.FromDocument(data)
	if err != nil {
		return nil, fmt.Errorf("stored record %s: %w", normalized, err)
	}
	return p, nil
}

// List returns the names of all stored records, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the record under name. Deleting a missing record is an
// ErrNotFound, so callers can tell the user which name was wrong.
func (s *Store) Delete(name string) error {
	normalized, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(s.recordPath(normalized)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, normalized)
		}
		return fmt.Errorf("failed to delete plan record: %w", err)
	}
	return nil
}

func (s *Store) recordPath(normalized string) string {
	return filepath.Join(s.dir, normalized+".json")
}
