package converter

import (
	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// resolveTemplate keeps a template literal symbolic: text spans and resolved
// interpolations, left to right. Literal unions are not expanded.
func (r *run) resolveTemplate(t *checker.Type, b schema.Bindings) (schema.Node, error) {
	tpl := &schema.Template{Parts: make([]schema.TemplatePart, 0, len(t.Spans))}
	for _, span := range t.Spans {
		if span.Type == nil {
			if span.Text != "" {
				tpl.Parts = append(tpl.Parts, schema.TemplatePart{Text: span.Text})
			}
			continue
		}
		n, err := r.resolve(span.Type, b)
		if err != nil {
			return nil, err
		}
		tpl.Parts = append(tpl.Parts, schema.TemplatePart{Type: n})
	}
	return tpl, nil
}
