package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/tscanon/pkg/parser"
)

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Only files with a TypeScript extension are returned, whatever the include
// patterns say. Returns a sorted slice of absolute file paths for
// deterministic output.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	// Validate patterns.
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		// Check exclusions (directories and files).
		for _, pattern := range cfg.Exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		// Check include patterns.
		if len(cfg.Include) > 0 {
			matched := false
			for _, pattern := range cfg.Include {
				if m, _ := doublestar.PathMatch(pattern, relPath); m {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}

		if parser.DetectDialect(path) == parser.DialectUnknown {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether relPath (slash separated, relative to the scan
// root) is selected by cfg. Used by the watcher to filter events.
func Matches(relPath string, cfg ScanConfig) bool {
	relPath = filepath.ToSlash(relPath)
	if parser.DetectDialect(relPath) == parser.DialectUnknown {
		return false
	}
	if Excluded(relPath, cfg) {
		return false
	}
	if len(cfg.Include) == 0 {
		return true
	}
	for _, pattern := range cfg.Include {
		if m, _ := doublestar.PathMatch(pattern, relPath); m {
			return true
		}
	}
	return false
}

// Excluded reports whether relPath or any directory above it matches an
// exclude pattern.
func Excluded(relPath string, cfg ScanConfig) bool {
	relPath = filepath.ToSlash(relPath)
	for p := relPath; p != "" && p != "."; {
		for _, pattern := range cfg.Exclude {
			if m, _ := doublestar.PathMatch(pattern, p); m {
				return true
			}
		}
		i := strings.LastIndex(p, "/")
		if i < 0 {
			break
		}
		p = p[:i]
	}
	return false
}
