package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/parser"
	"github.com/gnana997/tscanon/pkg/parser/queries"
	"github.com/gnana997/tscanon/pkg/util"
)

// Scanner orchestrates the scan pipeline: discovery, concurrent
// conversion, catalog assembly.
type Scanner struct {
	pm  *parser.ParserManager
	qm  *queries.QueryManager
	chk *checker.Checker
	log *slog.Logger
}

// NewScanner creates a scanner with all required dependencies.
func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(logger)
	return &Scanner{pm: pm, qm: qm, chk: checker.New(pm, qm, logger), log: logger}
}

// Checker returns the scanner's checker, for components that convert files
// outside a full scan.
func (s *Scanner) Checker() *checker.Checker {
	return s.chk
}

// Run discovers files under rootDir and converts them into a catalog.
// Files that cannot be read or parsed are listed in ScanStats.Failures and
// left out of the catalog; only discovery errors and cancellation abort the
// scan.
func (s *Scanner) Run(ctx context.Context, rootDir string, cfg ScanConfig) (*catalog.Catalog, *ScanStats, error) {
	totalStart := time.Now()
	stats := &ScanStats{}

	// Phase 1: File Discovery
	discoveryStart := time.Now()
	files, err := DiscoverFiles(rootDir, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	s.log.Info("discovery complete", "files", len(files), "ms", stats.DiscoveryTimeMs)

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	// Phase 2: Conversion
	conversionStart := time.Now()
	schemas, failures, err := s.convertAll(ctx, absRoot, files, cfg)
	if err != nil {
		return nil, stats, err
	}
	stats.ConversionTimeMs = time.Since(conversionStart).Milliseconds()

	// Phase 3: Catalog assembly, in discovery (sorted path) order.
	name := cfg.Name
	if name == "" {
		name = filepath.Base(absRoot)
	}
	cat := &catalog.Catalog{
		Name:    name,
		Version: CatalogVersion,
		RunID:   uuid.NewString(),
		Root:    absRoot,
		Files:   make([]catalog.FileSchema, 0, len(files)),
	}
	for i, fs := range schemas {
		if fs == nil {
			if f, ok := failures[i]; ok {
				stats.Failures = append(stats.Failures, f)
			}
			continue
		}
		cat.Files = append(cat.Files, *fs)
		stats.Declarations += fs.Types.Len()
		stats.ConversionErrors += len(fs.Errors)
	}
	stats.FilesConverted = len(cat.Files)
	stats.FilesFailed = len(stats.Failures)
	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	s.log.Info("scan complete",
		"run_id", cat.RunID,
		"files", stats.FilesConverted,
		"failed", stats.FilesFailed,
		"types", stats.Declarations,
		"errors", stats.ConversionErrors,
		"ms", stats.TotalTimeMs)

	return cat, stats, nil
}

// convertAll converts files concurrently. Results are indexed like files;
// a nil schema has its reason in failures.
func (s *Scanner) convertAll(ctx context.Context, absRoot string, files []string, cfg ScanConfig) ([]*catalog.FileSchema, map[int]FileFailure, error) {
	schemas := make([]*catalog.FileSchema, len(files))
	failures := make(map[int]FileFailure)
	var mu sync.Mutex

	sources := util.NewSourceCache(0, s.log)
	defer sources.Close()

	fc := NewFileConverter(s.chk, cfg.Options, s.log)

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = util.GetOptimalPoolSize()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			relPath, err := filepath.Rel(absRoot, path)
			if err != nil {
				relPath = path
			}
			relPath = filepath.ToSlash(relPath)

			source, err := sources.Read(path)
			if err == nil {
				var fs *catalog.FileSchema
				fs, err = fc.Convert(relPath, source)
				if err == nil {
					schemas[i] = fs
					return nil
				}
			}

			s.log.Warn("conversion failed", "path", relPath, "error", err)
			mu.Lock()
			failures[i] = describe(relPath, err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("scan cancelled: %w", err)
	}
	return schemas, failures, nil
}

// Close releases parser and query manager resources.
func (s *Scanner) Close() {
	s.qm.Close()
	s.pm.Close()
}
