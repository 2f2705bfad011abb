package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// SourceCache reads source files through read-only memory maps and keeps
// them mapped until invalidated or closed. Files that cannot be mapped are
// read into memory instead.
//
// The slice returned by Read aliases the mapping. It stays valid until
// Invalidate is called for that path or the cache is closed; callers that
// keep data beyond that must copy it.
//
// Thread-safe: concurrent Reads do not block each other once a file is
// loaded.
type SourceCache struct {
	maxFiles int
	logger   *slog.Logger

	mu    sync.RWMutex
	files map[string]*mappedFile

	statsMu sync.Mutex
	stats   SourceCacheStats
}

type mappedFile struct {
	data mmap.MMap
	file *os.File
	// fallback holds the contents when mapping failed.
	fallback []byte
}

func (m *mappedFile) bytes() []byte {
	if m.fallback != nil {
		return m.fallback
	}
	return m.data
}

func (m *mappedFile) release() error {
	var err error
	if m.data != nil {
		err = m.data.Unmap()
	}
	if m.file != nil {
		if cerr := m.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SourceCacheStats reports cache activity.
type SourceCacheStats struct {
	Loads        int64
	Hits         int64
	MmapFailures int64
	Cached       int
}

// NewSourceCache creates a cache holding at most maxFiles files. Zero means
// unlimited. Logger can be nil.
func NewSourceCache(maxFiles int, logger *slog.Logger) *SourceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceCache{
		maxFiles: maxFiles,
		logger:   logger,
		files:    make(map[string]*mappedFile),
	}
}

// Read returns the contents of path, mapping it on first access.
func (c *SourceCache) Read(path string) ([]byte, error) {
	c.mu.RLock()
	if mf, ok := c.files[path]; ok {
		c.mu.RUnlock()
		c.record(func(s *SourceCacheStats) { s.Hits++ })
		return mf.bytes(), nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if mf, ok := c.files[path]; ok {
		c.record(func(s *SourceCacheStats) { s.Hits++ })
		return mf.bytes(), nil
	}
	if c.maxFiles > 0 && len(c.files) >= c.maxFiles {
		return nil, fmt.Errorf("source cache limit reached: %d files", c.maxFiles)
	}

	mf, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.files[path] = mf
	c.record(func(s *SourceCacheStats) { s.Loads++ })
	return mf.bytes(), nil
}

func (c *SourceCache) load(path string) (*mappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%q is a directory", path)
	}
	if stat.Size() == 0 {
		// Empty files cannot be mapped.
		file.Close()
		return &mappedFile{fallback: []byte{}}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		c.logger.Warn("mmap failed, using fallback", "file", path, "error", err)
		file.Close()

		contents, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: %w", path, readErr)
		}
		c.record(func(s *SourceCacheStats) { s.MmapFailures++ })
		return &mappedFile{fallback: contents}, nil
	}

	return &mappedFile{data: data, file: file}, nil
}

// Invalidate unmaps path so the next Read sees the current contents.
func (c *SourceCache) Invalidate(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mf, ok := c.files[path]
	if !ok {
		return nil
	}
	delete(c.files, path)
	if err := mf.release(); err != nil {
		return fmt.Errorf("failed to release %q: %w", path, err)
	}
	return nil
}

// Len returns the number of cached files.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Stats returns a snapshot of cache activity.
func (c *SourceCache) Stats() SourceCacheStats {
	c.mu.RLock()
	cached := len(c.files)
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	s := c.stats
	s.Cached = cached
	return s
}

// Close unmaps every file.
func (c *SourceCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for path, mf := range c.files {
		if err := mf.release(); err != nil {
			c.logger.Warn("failed to release file", "path", path, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("release %q: %w", path, err)
			}
		}
	}
	c.files = make(map[string]*mappedFile)

	c.logger.Debug("source cache closed",
		"loads", c.stats.Loads,
		"hits", c.stats.Hits,
		"mmap_failures", c.stats.MmapFailures)

	return firstErr
}

func (c *SourceCache) record(fn func(*SourceCacheStats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}
