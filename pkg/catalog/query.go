package catalog

import (
	"sort"
	"strings"

	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/schema"
)

// QueryService provides read-only query methods over a catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// ListFiles returns a summary of every file in catalog order.
func (q *QueryService) ListFiles() []FileSummary {
	result := make([]FileSummary, 0, len(q.Catalog.Files))
	for _, f := range q.Catalog.Files {
		s := FileSummary{Path: f.Path, Errors: len(f.Errors)}
		if f.Types != nil {
			s.Types = f.Types.Len()
		}
		result = append(result, s)
	}
	return result
}

// ListTypes returns declarations whose name or file path contains keyword,
// case-insensitively. Pass "" to list everything. Results are sorted by name,
// then file.
func (q *QueryService) ListTypes(keyword string) []TypeSummary {
	keyword = strings.ToLower(keyword)
	result := make([]TypeSummary, 0)

	for _, f := range q.Catalog.Files {
		if f.Types == nil {
			continue
		}
		for _, d := range f.Types.Declarations() {
			if keyword != "" &&
				!strings.Contains(strings.ToLower(d.Name), keyword) &&
				!strings.Contains(strings.ToLower(f.Path), keyword) {
				continue
			}
			result = append(result, TypeSummary{
				Name:     d.Name,
				File:     f.Path,
				Exported: d.Exported,
				Generic:  d.IsGeneric(),
				Rendered: schema.RenderDeclaration(d),
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].File < result[j].File
	})
	return result
}

// GetType looks up every declaration with the given name.
// The bool indicates whether any was found.
func (q *QueryService) GetType(name string) ([]TypeLocation, bool) {
	locs, ok := q.Index.TypesByName[name]
	return locs, ok
}

// GetTypes returns declarations matching the given names.
// Unknown names are silently skipped. Duplicates are removed.
func (q *QueryService) GetTypes(names []string) []TypeLocation {
	seen := make(map[string]bool, len(names))
	result := make([]TypeLocation, 0, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, q.Index.TypesByName[name]...)
	}

	return result
}

// Errors returns conversion errors for one file, or for every file when
// path is "".
func (q *QueryService) Errors(path string) []*converter.ConversionError {
	if path != "" {
		f, ok := q.Index.FileByPath[path]
		if !ok {
			return nil
		}
		return f.Errors
	}

	var result []*converter.ConversionError
	for _, f := range q.Catalog.Files {
		result = append(result, f.Errors...)
	}
	return result
}
