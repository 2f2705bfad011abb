// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/tscanon/pkg/parser"
	"github.com/gnana997/tscanon/pkg/parser/queries/modules"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeImports finds imported bindings.
	QueryTypeImports QueryType = iota
	// QueryTypeExports finds names listed in export clauses.
	QueryTypeExports
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeImports:
		return "imports"
	case QueryTypeExports:
		return "exports"
	default:
		return "unknown"
	}
}

type queryKey struct {
	dialect parser.Dialect
	qtype   QueryType
}

// QueryManager compiles queries lazily and caches them per dialect.
//
// Features:
//   - Lazy query compilation: queries are compiled on first use
//   - Thread-safe caching: sync.RWMutex with double-checked compilation
//   - Memory management: compiled queries are freed via Close()
//
// Usage:
//
//	qm := NewQueryManager(logger)
//	defer qm.Close()
//
//	query, err := qm.GetQuery(parser.DialectTypeScript, QueryTypeImports)
//	if err != nil {
//	    return err
//	}
//	matches, err := qm.ExecuteQuery(tree, query, source)
type QueryManager struct {
	cache  map[queryKey]*ts.Query
	mutex  sync.RWMutex
	logger *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		cache:  make(map[queryKey]*ts.Query),
		logger: logger,
	}
}

// GetQuery returns the compiled query for dialect and type.
// This method is thread-safe.
func (qm *QueryManager) GetQuery(dialect parser.Dialect, qtype QueryType) (*ts.Query, error) {
	key := queryKey{dialect: dialect, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()
	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	queryString, err := queryString(qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := parser.LanguagePointer(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", dialect, err)
	}

	query, qerr := ts.NewQuery(ts.NewLanguage(langPtr), queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, dialect, qerr.Message)
	}

	qm.cache[key] = query
	qm.logger.Debug("compiled query", "dialect", dialect.String(), "type", qtype.String())

	return query, nil
}

func queryString(qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeImports:
		return modules.ImportQueries, nil
	case QueryTypeExports:
		return modules.ExportQueries, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// ExecuteQuery runs query over the whole tree and returns its matches in
// document order. The captured nodes are valid until the tree is closed.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		captures := make([]QueryCapture, 0, len(match.Captures))
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(captureNames) {
				name = captureNames[capture.Index]
			}
			category, field := parseCaptureName(name)
			node := capture.Node

			captures = append(captures, QueryCapture{
				Name:     name,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: NodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries.
//
// MUST be called when the QueryManager is no longer needed; compiled
// queries hold C memory. After Close(), the QueryManager cannot be used.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	qm.logger.Debug("closing QueryManager", "queries_compiled", len(qm.cache))

	for key, query := range qm.cache {
		query.Close()
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch represents a single pattern match.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// Capture returns the first capture named category.field, or nil.
func (m QueryMatch) Capture(category, field string) *QueryCapture {
	for i := range m.Captures {
		if m.Captures[i].Category == category && m.Captures[i].Field == field {
			return &m.Captures[i]
		}
	}
	return nil
}

// QueryCapture represents a single captured node.
type QueryCapture struct {
	// Name is the full capture name, e.g. "import.source".
	Name string
	// Category is the part before the first dot ("import").
	Category string
	// Field is the part after it ("source"), or "".
	Field string

	Node     *ts.Node
	Text     string
	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based
	StartColumn uint32 // 1-based
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based byte offset
	EndByte     uint32
}

func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

// NodeLocation converts tree-sitter's 0-based positions to 1-based
// line/column numbers.
func NodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
