package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/metrics"
)

// FileConverter checks and converts single files with shared parser and
// query managers. Safe for concurrent use.
type FileConverter struct {
	checker *checker.Checker
	opts    converter.Options
	log     *slog.Logger
}

// NewFileConverter creates a FileConverter. Logger can be nil.
func NewFileConverter(c *checker.Checker, opts converter.Options, logger *slog.Logger) *FileConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileConverter{checker: c, opts: opts, log: logger}
}

// Convert checks source and converts its exported declarations. relPath is
// stored on the result and decides the grammar. An error means the file
// produced no schema at all; per-declaration failures are on the result.
func (fc *FileConverter) Convert(relPath string, source []byte) (*catalog.FileSchema, error) {
	start := time.Now()

	model, err := fc.checker.Check(relPath, source)
	if err != nil {
		metrics.RecordFileError()
		return nil, err
	}
	if model.SyntaxErrors {
		fc.log.Warn("source has syntax errors, converting what parsed", "path", relPath)
	}

	result := converter.New(model, fc.log, fc.opts).Convert()
	metrics.RecordFile(result.Stats.Declarations, result.Stats.Failed, time.Since(start))

	return &catalog.FileSchema{
		Path:   relPath,
		Hash:   HashSource(source),
		Types:  result.Types,
		Errors: result.Errors,
	}, nil
}

// HashSource returns the hex-encoded SHA-256 of source.
func HashSource(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// describe renders a file failure for ScanStats.
func describe(path string, err error) FileFailure {
	return FileFailure{Path: path, Error: fmt.Sprint(err)}
}
