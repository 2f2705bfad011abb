// Package modules holds tree-sitter queries for a TypeScript file's module
// surface: what it imports and what its export clauses name.
package modules

// ImportQueries captures one match per imported binding.
//
// Captures:
//   - @import.specifier - a named import (read its name and alias fields)
//   - @import.default   - a default import binding
//   - @import.namespace - a namespace import binding
//   - @import.source    - the module specifier string
const ImportQueries = `
; import { Foo, Bar as Baz } from './mod'
; import type { Foo } from './mod'
(import_statement
  (import_clause
    (named_imports
      (import_specifier) @import.specifier))
  source: (string) @import.source)

; import Foo from './mod'
(import_statement
  (import_clause
    (identifier) @import.default)
  source: (string) @import.source)

; import * as ns from './mod'
(import_statement
  (import_clause
    (namespace_import
      (identifier) @import.namespace))
  source: (string) @import.source)
`

// ExportQueries captures one match per specifier of an export clause.
//
// Captures:
//   - @export.specifier - one specifier (read its name and alias fields)
//   - @export.statement - the enclosing statement; a "source" field marks a
//     re-export from another module
const ExportQueries = `
; export { Foo, Bar as Baz }
; export type { Foo }
; export { Foo } from './mod'
(export_statement
  (export_clause
    (export_specifier) @export.specifier)) @export.statement
`
