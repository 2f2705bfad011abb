// Package indexer keeps converted file schemas in a bounded LRU keyed by
// path and re-converts files as they change on disk.
package indexer

import (
	"time"

	"github.com/gnana997/tscanon/pkg/catalog"
)

// SchemaIndexConfig configures the schema index behavior.
type SchemaIndexConfig struct {
	// MaxCachedFiles is the maximum number of files to keep in the LRU cache.
	// When the cache is full, least recently used files are evicted.
	// Default: 1000 files
	MaxCachedFiles int

	// Debug enables verbose logging
	Debug bool
}

// DefaultSchemaIndexConfig returns the default configuration.
func DefaultSchemaIndexConfig() SchemaIndexConfig {
	return SchemaIndexConfig{
		MaxCachedFiles: 1000,
		Debug:          false,
	}
}

// SchemaIndexStats provides statistics about the index state.
type SchemaIndexStats struct {
	// ConvertedFiles is the number of conversions performed (including
	// files since evicted).
	ConvertedFiles int

	// CachedFiles is the number of files currently in the LRU cache
	CachedFiles int

	// CacheHits counts Convert calls answered from the cache because the
	// content hash was unchanged.
	CacheHits   int64
	CacheMisses int64

	// CacheHitRate is hits / (hits + misses)
	CacheHitRate float64

	// Evictions is the number of files evicted from the LRU cache
	Evictions int64

	// AverageConvertTimeMs is the mean time to check and convert one file
	AverageConvertTimeMs float64
}

// WatchOptions configures the watcher.
type WatchOptions struct {
	// DebounceMs groups rapid changes to one file into a single conversion.
	// Default: 200ms
	DebounceMs int

	// OnUpdate is called after a file is re-converted or removed. It runs
	// on a timer goroutine and must not block for long.
	OnUpdate func(Update)
}

// DefaultWatchOptions returns default watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{DebounceMs: 200}
}

// Update describes one change applied to the index.
type Update struct {
	// Path is relative to the watched root, with forward slashes.
	Path string
	// Schema is the new conversion result; nil when Removed or Err is set.
	Schema  *catalog.FileSchema
	Removed bool
	Err     error
	At      time.Time
}
