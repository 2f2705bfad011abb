// Package catalog aggregates the schemas of every converted file in a
// workspace and answers queries over them.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnana997/tscanon/pkg/schema"
)

// Catalog holds the converted schemas of a workspace.
type Catalog struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	// RunID identifies the scan that produced the catalog.
	RunID string       `json:"run_id"`
	Root  string       `json:"root"`
	Files []FileSchema `json:"files"`
}

// CatalogIndex provides O(1) lookups into the catalog.
type CatalogIndex struct {
	// FileByPath maps a relative path to its FileSchema.
	FileByPath map[string]*FileSchema

	// TypesByName maps a declaration name to every file declaring it, in
	// file order.
	TypesByName map[string][]TypeLocation
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}
	if c.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is required"))
	}

	paths := make(map[string]bool, len(c.Files))
	for i, f := range c.Files {
		if f.Path == "" {
			errs = append(errs, fmt.Errorf("files[%d]: path is required", i))
			continue
		}
		if paths[f.Path] {
			errs = append(errs, fmt.Errorf("files[%d]: duplicate path %q", i, f.Path))
			continue
		}
		paths[f.Path] = true

		if f.Types == nil {
			errs = append(errs, fmt.Errorf("file %q: types are required", f.Path))
			continue
		}
		for _, err := range schema.Validate(f.Types) {
			errs = append(errs, fmt.Errorf("file %q: %w", f.Path, err))
		}
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		FileByPath:  make(map[string]*FileSchema, len(c.Files)),
		TypesByName: make(map[string][]TypeLocation),
	}

	for i := range c.Files {
		f := &c.Files[i]
		idx.FileByPath[f.Path] = f
		if f.Types == nil {
			continue
		}
		for _, d := range f.Types.Declarations() {
			idx.TypesByName[d.Name] = append(idx.TypesByName[d.Name], TypeLocation{File: f.Path, Declaration: d})
		}
	}

	return idx
}

// WriteFile writes the catalog as indented JSON, creating parent
// directories as needed.
func (c *Catalog) WriteFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
