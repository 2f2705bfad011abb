package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool hands out parsers for one dialect.
//
// Design:
// - Channel-based pooling for acquire/release
// - Parsers are created lazily up to maxSize; once that many exist,
//   acquire blocks until one is released
// - Every parser in the pool is bound to the same grammar
//
// Thread Safety:
// - Channel operations need no extra locking
// - mutex protects the created count so the pool never overshoots maxSize
type parserPool struct {
	pool    chan *ts.Parser
	langPtr unsafe.Pointer
	dialect Dialect
	maxSize int

	// mutex protects created
	mutex   sync.Mutex
	created int

	logger *slog.Logger
}

func newParserPool(dialect Dialect, langPtr unsafe.Pointer, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		langPtr: langPtr,
		dialect: dialect,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
		return p.createParserIfNeeded()
	}
}

func (p *parserPool) createParserIfNeeded() (*ts.Parser, error) {
	p.mutex.Lock()
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		return <-p.pool, nil
	}
	defer p.mutex.Unlock()

	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.langPtr)); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	p.created++
	p.logger.Debug("created parser in pool", "dialect", p.dialect.String(), "pool_size", p.created)
	return parser, nil
}

func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}

	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser", "dialect", p.dialect.String())
	}
}

func (p *parserPool) close() {
	close(p.pool)

	count := 0
	for parser := range p.pool {
		parser.Close()
		count++
	}

	p.logger.Debug("closed parser pool", "dialect", p.dialect.String(), "parsers_closed", count)
}

func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
