// Package checker builds a read-only semantic model of a TypeScript source
// file: its type declarations, constants and imports, with every type
// expression classified into a closed set of kinds.
package checker

import (
	"fmt"
	"log/slog"

	"github.com/gnana997/tscanon/pkg/parser"
	"github.com/gnana997/tscanon/pkg/parser/queries"
)

// Checker turns source files into Models.
//
// Thread Safety:
//   - Check may be called from many goroutines; parsers come from the
//     shared ParserManager pool and compiled queries from the QueryManager
//   - Returned Models are immutable
//
// Usage:
//
//	c := checker.New(parserManager, queryManager, logger)
//	model, err := c.Check("types.ts", source)
//	if err != nil {
//	    return err
//	}
//	for _, decl := range model.Exports() { ... }
type Checker struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	logger        *slog.Logger
}

// New creates a Checker. Logger can be nil.
func New(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Checker{
		parserManager: pm,
		queryManager:  qm,
		logger:        logger,
	}
}

// Check parses source once and builds its Model. The syntax tree is closed
// before returning; the model keeps no reference to it.
func (c *Checker) Check(path string, source []byte) (*Model, error) {
	dialect := parser.DetectDialect(path)
	if dialect == parser.DialectUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}

	tree, err := c.parserManager.Parse(source, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	importQuery, err := c.queryManager.GetQuery(dialect, queries.QueryTypeImports)
	if err != nil {
		return nil, fmt.Errorf("failed to get import query: %w", err)
	}
	exportQuery, err := c.queryManager.GetQuery(dialect, queries.QueryTypeExports)
	if err != nil {
		return nil, fmt.Errorf("failed to get export query: %w", err)
	}

	importMatches, err := c.queryManager.ExecuteQuery(tree, importQuery, source)
	if err != nil {
		return nil, fmt.Errorf("failed to execute import query: %w", err)
	}
	exportMatches, err := c.queryManager.ExecuteQuery(tree, exportQuery, source)
	if err != nil {
		return nil, fmt.Errorf("failed to execute export query: %w", err)
	}

	root := tree.RootNode()
	b := &builder{source: source, model: newModel(path), logger: c.logger}
	b.model.SyntaxErrors = root.HasError()
	b.readProgram(root)
	b.applyImports(importMatches)
	b.applyExports(exportMatches)

	c.logger.Debug("checked file",
		"path", path,
		"declarations", len(b.model.order),
		"constants", len(b.model.constants),
		"imports", len(b.model.imports))

	return b.model, nil
}

// CheckSource is a convenience for one-off use: it builds and tears down its own
// parser and query managers.
func CheckSource(path string, source []byte, logger *slog.Logger) (*Model, error) {
	pm := parser.NewParserManagerWithPoolSize(logger, 1)
	defer pm.Close()
	qm := queries.NewQueryManager(logger)
	defer qm.Close()
	return New(pm, qm, logger).Check(path, source)
}
