// Package scanner discovers TypeScript sources under a directory and
// converts them concurrently into a catalog of canonical schemas.
package scanner

import (
	"github.com/gnana997/tscanon/pkg/converter"
)

// CatalogVersion is the format version written to catalogs.
const CatalogVersion = "1"

// ScanConfig configures a scan.
type ScanConfig struct {
	// Include glob patterns for file matching, relative to the root.
	Include []string
	// Exclude glob patterns. A matching directory is not descended into.
	Exclude []string
	// Name of the catalog. Defaults to the root directory's base name.
	Name string
	// Options passed to every file conversion.
	Options converter.Options
	// Concurrency caps the number of files converted at once.
	// Zero means util.GetOptimalPoolSize().
	Concurrency int
}

// DefaultScanConfig returns the default scan configuration with
// exclusions for dependencies, build output and test files.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.ts",
			"**/*.tsx",
			"**/*.mts",
			"**/*.cts",
		},
		Exclude: []string{
			"node_modules/**",
			"**/node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"out/**",
			".tscanon/**",
			// Test files rarely export shared types.
			"**/*.test.*",
			"**/*.spec.*",
			"__tests__/**",
			"**/__tests__/**",
			"**/__mocks__/**",
		},
	}
}

// ScanStats tracks metrics from a scan.
type ScanStats struct {
	FilesDiscovered int `json:"files_discovered"`
	FilesConverted  int `json:"files_converted"`
	FilesFailed     int `json:"files_failed"`

	// Declarations counts converted declarations across all files.
	Declarations int `json:"declarations"`
	// ConversionErrors counts declarations that failed to convert.
	ConversionErrors int `json:"conversion_errors"`

	// Failures lists files that could not be read or parsed.
	Failures []FileFailure `json:"failures,omitempty"`

	DiscoveryTimeMs  int64 `json:"discovery_time_ms"`
	ConversionTimeMs int64 `json:"conversion_time_ms"`
	TotalTimeMs      int64 `json:"total_time_ms"`
}

// FileFailure records a file that produced no schema at all.
type FileFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
