package indexer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/metrics"
	"github.com/gnana997/tscanon/pkg/scanner"
)

// SchemaIndex caches converted files by path and skips re-conversion when
// a file's content hash is unchanged.
//
// **Thread Safety:**
//   - Conversions of the same index are serialized
//   - Reads (Get, Files, Snapshot) take a read lock
//   - Atomic counters for statistics
//
// **Usage:**
//
//	idx, err := NewSchemaIndex(root, fileConverter, DefaultSchemaIndexConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	fs, cached, err := idx.Convert("src/models/user.ts")
type SchemaIndex struct {
	root string
	conv *scanner.FileConverter

	// LRU cache: relative path → FileSchema
	files *lru.Cache[string, *catalog.FileSchema]

	mu sync.RWMutex

	// Statistics (atomic for lock-free reads)
	convertedFiles   atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	evictions        atomic.Int64
	totalConvertTime atomic.Int64 // Microseconds

	config SchemaIndexConfig
	logger *slog.Logger
}

// NewSchemaIndex creates an index for files under root. Logger can be nil.
func NewSchemaIndex(root string, conv *scanner.FileConverter, config SchemaIndexConfig, logger *slog.Logger) (*SchemaIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxCachedFiles <= 0 {
		config.MaxCachedFiles = DefaultSchemaIndexConfig().MaxCachedFiles
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	si := &SchemaIndex{
		root:   absRoot,
		conv:   conv,
		config: config,
		logger: logger,
	}
	si.files, err = lru.NewWithEvict(config.MaxCachedFiles, func(key string, _ *catalog.FileSchema) {
		si.evictions.Add(1)
		if config.Debug {
			logger.Debug("LRU evicting file", "path", key)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	logger.Info("schema index initialized", "root", absRoot, "max_cached_files", config.MaxCachedFiles)
	return si, nil
}

// Root returns the absolute root directory.
func (si *SchemaIndex) Root() string {
	return si.root
}

// RelPath converts path (absolute, or relative to the root) to the
// slash-separated form used as the index key.
func (si *SchemaIndex) RelPath(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(si.root, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// Seed loads the files of a scanned catalog without re-converting them.
func (si *SchemaIndex) Seed(cat *catalog.Catalog) {
	si.mu.Lock()
	defer si.mu.Unlock()

	for i := range cat.Files {
		fs := cat.Files[i]
		si.files.Add(fs.Path, &fs)
	}
}

// Convert returns the schema of path, converting it unless the cached entry
// has the same content hash. cached reports whether the cache answered.
func (si *SchemaIndex) Convert(path string) (fs *catalog.FileSchema, cached bool, err error) {
	rel := si.RelPath(path)
	if strings.HasPrefix(rel, "../") {
		return nil, false, fmt.Errorf("%s is outside %s", path, si.root)
	}

	// Files change underfoot while watched, so they are read whole.
	source, err := os.ReadFile(filepath.Join(si.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	hash := scanner.HashSource(source)

	si.mu.Lock()
	defer si.mu.Unlock()

	if prev, ok := si.files.Get(rel); ok && prev.Hash == hash {
		si.cacheHits.Add(1)
		metrics.RecordCacheHit()
		return prev, true, nil
	}
	si.cacheMisses.Add(1)

	start := time.Now()
	fs, err = si.conv.Convert(rel, source)
	si.totalConvertTime.Add(time.Since(start).Microseconds())
	if err != nil {
		return nil, false, err
	}
	si.convertedFiles.Add(1)
	si.files.Add(rel, fs)

	if si.config.Debug {
		si.logger.Debug("converted file", "path", rel, "types", fs.Types.Len(), "errors", len(fs.Errors))
	}
	return fs, false, nil
}

// Get returns the cached schema of path without touching the disk.
func (si *SchemaIndex) Get(path string) (*catalog.FileSchema, bool) {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.files.Get(si.RelPath(path))
}

// Remove drops path from the index.
func (si *SchemaIndex) Remove(path string) bool {
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.files.Remove(si.RelPath(path))
}

// Files returns the cached schemas sorted by path.
func (si *SchemaIndex) Files() []*catalog.FileSchema {
	si.mu.RLock()
	defer si.mu.RUnlock()

	keys := si.files.Keys()
	sort.Strings(keys)
	out := make([]*catalog.FileSchema, 0, len(keys))
	for _, k := range keys {
		if fs, ok := si.files.Peek(k); ok {
			out = append(out, fs)
		}
	}
	return out
}

// Snapshot assembles the cached schemas into a new catalog with a fresh
// run ID.
func (si *SchemaIndex) Snapshot(name string) *catalog.Catalog {
	files := si.Files()
	cat := &catalog.Catalog{
		Name:    name,
		Version: scanner.CatalogVersion,
		RunID:   uuid.NewString(),
		Root:    si.root,
		Files:   make([]catalog.FileSchema, len(files)),
	}
	for i, fs := range files {
		cat.Files[i] = *fs
	}
	return cat
}

// GetStats returns current index statistics.
func (si *SchemaIndex) GetStats() SchemaIndexStats {
	hits := si.cacheHits.Load()
	misses := si.cacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	converted := si.convertedFiles.Load()
	avg := 0.0
	if converted > 0 {
		avg = float64(si.totalConvertTime.Load()) / float64(converted) / 1000.0
	}

	return SchemaIndexStats{
		ConvertedFiles:       int(converted),
		CachedFiles:          si.files.Len(),
		CacheHits:            hits,
		CacheMisses:          misses,
		CacheHitRate:         hitRate,
		Evictions:            si.evictions.Load(),
		AverageConvertTimeMs: avg,
	}
}

// Close drops all cached schemas.
func (si *SchemaIndex) Close() {
	si.mu.Lock()
	defer si.mu.Unlock()

	si.files.Purge()
	si.logger.Info("schema index closed")
}
