package catalog

import (
	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/schema"
)

// FileSchema is the conversion output for one source file.
type FileSchema struct {
	// Path is relative to the catalog root, with forward slashes.
	Path string `json:"path"`
	// Hash is the SHA-256 of the source bytes, hex encoded.
	Hash   string                       `json:"hash,omitempty"`
	Types  *schema.Schema               `json:"types"`
	Errors []*converter.ConversionError `json:"errors,omitempty"`
}

// TypeLocation is one declaration and the file it was converted from.
type TypeLocation struct {
	File        string              `json:"file"`
	Declaration *schema.Declaration `json:"declaration"`
}

// FileSummary is a compact view of one file for listings.
type FileSummary struct {
	Path   string `json:"path"`
	Types  int    `json:"types"`
	Errors int    `json:"errors"`
}

// TypeSummary is a compact view of one declaration for listings.
type TypeSummary struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Exported bool   `json:"exported"`
	Generic  bool   `json:"generic"`
	// Rendered is the declaration as TypeScript-like source.
	Rendered string `json:"rendered"`
}
