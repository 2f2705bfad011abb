// Package converter turns the exported type declarations of a checked
// TypeScript file into a canonical schema.
package converter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// DefaultMaxDepth bounds nested resolution when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// ReferenceMode selects how references to local declarations are emitted.
type ReferenceMode int

const (
	// ReferencesInline expands every local reference in place. Only cycles
	// produce Ref nodes.
	ReferencesInline ReferenceMode = iota
	// ReferencesNamed emits a Ref for every local declaration reference and
	// includes the referenced declaration in the output.
	ReferencesNamed
)

func (m ReferenceMode) String() string {
	if m == ReferencesNamed {
		return "named"
	}
	return "inline"
}

// ParseReferenceMode parses "inline" or "named".
func ParseReferenceMode(s string) (ReferenceMode, error) {
	switch strings.ToLower(s) {
	case "", "inline":
		return ReferencesInline, nil
	case "named":
		return ReferencesNamed, nil
	}
	return ReferencesInline, fmt.Errorf("invalid reference mode %q (want inline or named)", s)
}

// Options configures a conversion.
type Options struct {
	References ReferenceMode
	// MaxDepth limits how deeply types may nest. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Result is the output of one conversion run.
type Result struct {
	Types  *schema.Schema
	Errors []*ConversionError
	Stats  Stats
}

// Stats summarises a conversion run.
type Stats struct {
	Declarations int
	Failed       int
	CacheHits    int
	CacheMisses  int
}

// Err joins all declaration failures, or returns nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Converter converts one checked file.
//
// Design:
//   - Each Convert call owns a fresh identity cache, so results never leak
//     between runs
//   - Exported declarations are resolved first; declarations reached by
//     named or back references are queued and resolved after them
//   - Failures are scoped to one declaration and collected, never returned
//
// Thread Safety:
//   - The checker Model is read-only, so several Converters may share it
//   - A single Converter may run Convert concurrently; all mutable state
//     lives in the per-call run
//
// Usage:
//
//	model, err := checker.New(pm, qm, logger).Check(path, source)
//	if err != nil {
//	    return err
//	}
//	result := converter.New(model, logger, converter.Options{}).Convert()
//	for _, e := range result.Errors { ... }
type Converter struct {
	model  *checker.Model
	opts   Options
	logger *slog.Logger
}

// New creates a Converter for model.
//
// Parameters:
//   - model: the checked file; it is only read
//   - logger: structured logger; nil uses slog.Default()
//   - opts: reference mode and depth limit; a zero MaxDepth selects
//     DefaultMaxDepth
func New(model *checker.Model, logger *slog.Logger, opts Options) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	return &Converter{model: model, opts: opts, logger: logger}
}

// Convert resolves every exported declaration. Failures are collected per
// declaration; a failed declaration is absent from Types, and so is any
// declaration that names it through a Ref. Calling Convert again starts from
// an empty cache and yields an equal result.
//
// Output:
//   - Each declaration appears under every public name it is exported as,
//     so "export { A as B }" yields B.
//   - Non-exported declarations appear under their own name, with
//     Exported false, only when some Ref names them.
func (c *Converter) Convert() *Result {
	r := newRun(c.model, c.opts)

	for _, d := range c.model.Exports() {
		r.convertDeclaration(d)
	}
	// Declarations pulled in by named references or back-references.
	for len(r.queue) > 0 {
		d := r.queue[0]
		r.queue = r.queue[1:]
		if _, done := r.converted[d.Name]; done {
			continue
		}
		r.convertDeclaration(d)
	}

	r.dropDangling()

	result := &Result{Types: r.publish()}
	result.Errors = r.errs
	result.Stats = Stats{
		Declarations: result.Types.Len(),
		Failed:       len(r.errs),
		CacheHits:    r.cache.hits,
		CacheMisses:  r.cache.misses,
	}

	for _, e := range r.errs {
		c.logger.Warn("declaration not converted",
			"path", c.model.Path,
			"declaration", e.Declaration,
			"kind", string(e.Kind),
			"error", e.Message)
	}
	c.logger.Debug("converted file",
		"path", c.model.Path,
		"types", result.Stats.Declarations,
		"errors", result.Stats.Failed,
		"cache_hits", result.Stats.CacheHits)

	return result
}

// ConvertSource checks and converts a single source file.
//
// It builds a throwaway parser and query manager, so callers converting
// many files should hold a checker.Checker and use New instead. The error
// is non-nil only when the file cannot be checked (for example an
// unsupported extension); declaration failures are in Result.Errors.
//
// Example:
//
//	result, err := converter.ConvertSource("types.ts", source, converter.Options{}, logger)
//	if err != nil {
//	    return err
//	}
//	out, _ := json.Marshal(result.Types)
func ConvertSource(path string, source []byte, opts Options, logger *slog.Logger) (*Result, error) {
	model, err := checker.CheckSource(path, source, logger)
	if err != nil {
		return nil, err
	}
	return New(model, logger, opts).Convert(), nil
}

// run holds the state of one Convert call.
type run struct {
	model *checker.Model
	opts  Options
	cache *identityCache

	params    map[*checker.Declaration][]*schema.GenericParam
	paramErrs map[*checker.Declaration]error

	out       map[string]*schema.Declaration
	converted map[string]bool
	required  map[string]bool
	queue     []*checker.Declaration
	errs      []*ConversionError

	depth int
}

func newRun(model *checker.Model, opts Options) *run {
	return &run{
		model:     model,
		opts:      opts,
		cache:     newIdentityCache(),
		params:    make(map[*checker.Declaration][]*schema.GenericParam),
		paramErrs: make(map[*checker.Declaration]error),
		out:       make(map[string]*schema.Declaration),
		converted: make(map[string]bool),
		required:  make(map[string]bool),
	}
}

// convertDeclaration resolves d in declaration mode and records the outcome.
func (r *run) convertDeclaration(d *checker.Declaration) {
	r.converted[d.Name] = true

	params, err := r.typeParameters(d)
	if err == nil {
		var body schema.Node
		body, err = r.resolveDeclaration(d, r.declarationBindings(d))
		if err == nil {
			r.out[d.Name] = &schema.Declaration{
				Name:           d.Name,
				TypeParameters: params,
				Body:           body,
				Exported:       d.Exported,
			}
			return
		}
	}
	r.errs = append(r.errs, asConversionError(d.Name, d.Location, err))
}

// dropDangling removes converted declarations whose body or parameters hold
// a Ref to a declaration that is not in the output, recording each as an
// UnresolvedReference. Removal can strand further references, so it repeats
// until nothing changes.
func (r *run) dropDangling() {
	for changed := true; changed; {
		changed = false
		for _, d := range r.model.Declarations() {
			out, ok := r.out[d.Name]
			if !ok {
				continue
			}
			target, dangling := r.danglingTarget(out)
			if !dangling {
				continue
			}
			delete(r.out, d.Name)
			r.errs = append(r.errs, &ConversionError{
				Declaration: d.Name,
				Kind:        KindUnresolvedReference,
				Message:     fmt.Sprintf("refers to %s, which could not be converted", target),
				Location:    d.Location,
			})
			changed = true
		}
	}
}

// danglingTarget returns the name of the first local Ref in d that has no
// converted declaration.
func (r *run) danglingTarget(d *schema.Declaration) (string, bool) {
	var target string
	visit := func(n schema.Node) bool {
		if target != "" {
			return false
		}
		if ref, ok := n.(*schema.Ref); ok && !ref.External && !ref.Parameter {
			if _, ok := r.out[ref.Name]; !ok {
				target = ref.Name
				return false
			}
		}
		return true
	}
	for _, p := range d.TypeParameters {
		schema.Walk(p, visit)
	}
	schema.Walk(d.Body, visit)
	return target, target != ""
}

// publish assembles the output in declaration order. A local name that
// clashes with another declaration's public alias is left out.
func (r *run) publish() *schema.Schema {
	public := make(map[string]bool)
	for _, d := range r.model.Declarations() {
		if _, ok := r.out[d.Name]; ok {
			for _, name := range d.PublicNames() {
				public[name] = true
			}
		}
	}

	s := schema.New()
	for _, d := range r.model.Declarations() {
		out, ok := r.out[d.Name]
		if !ok {
			continue
		}
		if !d.Exported && r.required[d.Name] && !public[d.Name] {
			s.Add(published(out, d.Name, false))
		}
		for _, name := range d.PublicNames() {
			s.Add(published(out, name, true))
		}
	}
	return s
}

func published(d *schema.Declaration, name string, exported bool) *schema.Declaration {
	return &schema.Declaration{
		Name:           name,
		TypeParameters: d.TypeParameters,
		Body:           d.Body,
		Exported:       exported,
	}
}

// require schedules a non-exported declaration for output because a Ref
// to it was emitted.
func (r *run) require(d *checker.Declaration) {
	if d.Exported || r.required[d.Name] {
		return
	}
	r.required[d.Name] = true
	r.queue = append(r.queue, d)
}

// resolveDeclaration resolves the body of d under bindings, memoized by
// (declaration identity, bindings). Re-entering a pending resolution yields a
// back-reference instead of recursing.
func (r *run) resolveDeclaration(d *checker.Declaration, b schema.Bindings) (schema.Node, error) {
	key := cacheKey{id: d.ID, bindings: bindingsKey(b)}
	if e, ok := r.cache.get(key); ok {
		if e.state == statePending {
			return r.backReference(d, b), nil
		}
		return e.node, e.err
	}

	r.cache.begin(key)
	node, err := r.declarationBody(d, b)
	r.cache.finish(key, node, err)
	return node, err
}

func (r *run) backReference(d *checker.Declaration, b schema.Bindings) *schema.Ref {
	r.require(d)
	ref := schema.NewRef(d.Name)
	for _, tp := range d.TypeParameters {
		ref.TypeArguments = append(ref.TypeArguments, b[tp.Name])
	}
	return ref
}

func (r *run) declarationBody(d *checker.Declaration, b schema.Bindings) (schema.Node, error) {
	switch d.Kind {
	case checker.DeclTypeAlias:
		if d.Value == nil {
			return nil, unsupported(nil, "type alias %s has no value", d.Name)
		}
		return r.resolve(d.Value, b)
	case checker.DeclInterface:
		return r.resolveInterface(d, b)
	default:
		e := unsupported(nil, "%s %s has no canonical form", d.Kind, d.Name)
		e.Location = d.Location
		return nil, e
	}
}

// declarationBindings binds each type parameter of d to its symbolic Ref.
func (r *run) declarationBindings(d *checker.Declaration) schema.Bindings {
	if len(d.TypeParameters) == 0 {
		return nil
	}
	b := make(schema.Bindings, len(d.TypeParameters))
	for _, tp := range d.TypeParameters {
		b[tp.Name] = schema.NewParamRef(tp.Name)
	}
	return b
}

// enter increments the nesting depth; the returned func restores it.
func (r *run) enter(t *checker.Type) (func(), error) {
	if r.depth >= r.opts.MaxDepth {
		return nil, unsupported(t, "type nesting exceeds max depth %d", r.opts.MaxDepth)
	}
	r.depth++
	return func() { r.depth-- }, nil
}
