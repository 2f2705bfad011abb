package parser

import (
	"path/filepath"
	"strings"
)

// Dialect selects the tree-sitter grammar used for a source file.
type Dialect int

const (
	// DialectUnknown marks files that are not TypeScript.
	DialectUnknown Dialect = iota
	// DialectTypeScript covers .ts, .mts and .cts files, including .d.ts.
	DialectTypeScript
	// DialectTSX covers .tsx files, which need the JSX-aware grammar.
	DialectTSX
)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectTypeScript:
		return "typescript"
	case DialectTSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// DetectDialect picks the dialect from a file extension.
func DetectDialect(filePath string) Dialect {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	default:
		return DialectUnknown
	}
}

// IsDeclarationFile reports whether the path is an ambient declaration file
// such as index.d.ts.
func IsDeclarationFile(filePath string) bool {
	base := strings.ToLower(filepath.Base(filePath))
	for _, suffix := range []string{".d.ts", ".d.mts", ".d.cts"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// ParseDialectString converts a name such as "ts" or "tsx" to a Dialect.
func ParseDialectString(s string) Dialect {
	switch strings.ToLower(s) {
	case "typescript", "ts":
		return DialectTypeScript
	case "tsx":
		return DialectTSX
	default:
		return DialectUnknown
	}
}
