// Package parser owns the tree-sitter TypeScript grammars and hands out
// syntax trees from pooled parsers.
package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/tscanon/pkg/util"
)

// ParserManager keeps one lazily created parser pool per dialect.
//
// Memory Management:
// - ParserManager owns the pools and must be closed via Close()
// - Callers own Tree instances and must call tree.Close() after use
//
// Thread Safety:
// - Parse is safe for concurrent use; each call borrows a pooled parser
// - Pool creation is guarded by a write lock with double-checked locking
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte("export type ID = string;"), DialectTypeScript)
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[Dialect]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	stats struct {
		parsesCalled int
		parseErrors  int
	}
}

// NewParserManager creates a ParserManager sized for the current machine.
//
// The returned manager must be closed via Close() to free resources.
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(logger, 0)
}

// NewParserManagerWithPoolSize creates a ParserManager whose pools hold at
// most poolSize parsers.
//
// Parameters:
//   - logger: structured logger; nil uses slog.Default()
//   - poolSize: parsers per dialect; zero selects util.GetOptimalPoolSize()
func NewParserManagerWithPoolSize(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:    make(map[Dialect]*parserPool),
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses source with the grammar for dialect.
//
// Trees with syntax errors are still returned, since tree-sitter recovers
// and the remaining declarations are usually intact. The caller MUST close
// the returned tree.
func (pm *ParserManager) Parse(source []byte, dialect Dialect) (*ts.Tree, error) {
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("cannot parse unknown dialect")
	}

	pool, err := pm.getOrCreatePool(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", dialect, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	hasError := tree.RootNode().HasError()
	if hasError {
		pm.stats.parseErrors++
	}
	pm.mutex.Unlock()

	if hasError {
		pm.logger.Warn("parse tree contains errors", "dialect", dialect.String())
	}

	return tree, nil
}

// ParseFile detects the dialect from filePath and parses source.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	dialect := DetectDialect(filePath)
	if dialect == DialectUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, dialect)
}

// Close releases all parser pools. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager",
		"parses_called", pm.stats.parsesCalled,
		"parse_errors", pm.stats.parseErrors)

	for dialect, pool := range pm.pools {
		pool.close()
		pm.logger.Debug("closed parser pool", "dialect", dialect.String())
	}
	pm.pools = make(map[Dialect]*parserPool)

	return nil
}

func (pm *ParserManager) getOrCreatePool(dialect Dialect) (*parserPool, error) {
	pm.mutex.RLock()
	pool, exists := pm.pools[dialect]
	pm.mutex.RUnlock()
	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[dialect]; exists {
		return pool, nil
	}

	langPtr, err := LanguagePointer(dialect)
	if err != nil {
		return nil, err
	}

	pool = newParserPool(dialect, langPtr, pm.poolSize, pm.logger)
	pm.pools[dialect] = pool

	pm.logger.Debug("created parser pool", "dialect", dialect.String(), "maxSize", pm.poolSize)
	return pool, nil
}

// LanguagePointer returns the tree-sitter grammar for dialect. Queries are
// compiled against the same pointer.
func LanguagePointer(dialect Dialect) (unsafe.Pointer, error) {
	switch dialect {
	case DialectTypeScript:
		return ts_typescript.LanguageTypescript(), nil
	case DialectTSX:
		return ts_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	total := 0
	for _, pool := range pm.pools {
		total += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: total,
		ParsesCalled:   pm.stats.parsesCalled,
		ParseErrors:    pm.stats.parseErrors,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
	// ParseErrors counts trees that contained at least one ERROR node.
	ParseErrors int
}
