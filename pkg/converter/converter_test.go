package converter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tscanon/pkg/schema"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func convert(t *testing.T, src string, opts ...Options) *Result {
	t.Helper()
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	res, err := ConvertSource("types.ts", []byte(src), o, testLogger())
	require.NoError(t, err)
	return res
}

func body(t *testing.T, res *Result, name string) schema.Node {
	t.Helper()
	d, ok := res.Types.Get(name)
	require.True(t, ok, "%s not converted; errors: %v", name, res.Err())
	return d.Body
}

func errorFor(t *testing.T, res *Result, name string) *ConversionError {
	t.Helper()
	for _, e := range res.Errors {
		if e.Declaration == name {
			return e
		}
	}
	require.Failf(t, "no error", "expected an error for %s", name)
	return nil
}

// requireResolvable checks that every Ref in the output names a declaration
// in the output or is flagged external.
func requireResolvable(t *testing.T, res *Result) {
	t.Helper()
	require.Empty(t, schema.Validate(res.Types), "output holds unresolvable references")
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		src  string
		decl string
		want string
	}{
		{
			name: "array reference",
			src:  `export type Foo = Array<string>;`,
			decl: "Foo",
			want: "string[]",
		},
		{
			name: "union keeps order",
			src:  `export type Foo = number | string;`,
			decl: "Foo",
			want: "number | string",
		},
		{
			name: "interface with optional member",
			src:  `export interface Foo { bar: string; bax?: number }`,
			decl: "Foo",
			want: "{ bar: string; bax?: number }",
		},
		{
			name: "pick",
			src: `interface foo { bar: string; bax: number }
export type Bar = Pick<foo, "bar">;`,
			decl: "Bar",
			want: "{ bar: string }",
		},
		{
			name: "omit",
			src: `interface foo { bar: string; bax: number }
export type Bar = Omit<foo, "bar">;`,
			decl: "Bar",
			want: "{ bax: number }",
		},
		{
			name: "typeof const array indexed by number",
			src: `const options = ["one", "two", "three"] as const;
export type options = typeof options[number];`,
			decl: "options",
			want: `"one" | "two" | "three"`,
		},
		{
			name: "typeof const literal",
			src: `const greeting = 'hi';
export type Greeting = typeof greeting;`,
			decl: "Greeting",
			want: `"hi"`,
		},
		{
			name: "typeof let literal widens",
			src: `let count = 1;
export type Count = typeof count;`,
			decl: "Count",
			want: "number",
		},
		{
			name: "multiple bases merge in order",
			src: `interface A { a: string; shared: number }
interface B { b: boolean; shared: string }
export interface C extends A, B { c: number; a: "x" }`,
			decl: "C",
			want: `{ a: "x"; shared: string; b: boolean; c: number }`,
		},
		{
			name: "extends generic with explicit argument",
			src: `interface Bar<T> { value: T; label: string }
export interface Foo extends Bar<'test'> { extra: number }`,
			decl: "Foo",
			want: `{ value: "test"; label: string; extra: number }`,
		},
		{
			name: "missing argument uses default",
			src: `type Pair<A, B = number> = { first: A; second: B };
export type P = Pair<string>;`,
			decl: "P",
			want: "{ first: string; second: number }",
		},
		{
			name: "default refers to earlier parameter",
			src: `type Same<A, B = A> = [A, B];
export type S = Same<boolean>;`,
			decl: "S",
			want: "[boolean, boolean]",
		},
		{
			name: "missing argument uses constraint",
			src: `type C<T extends string> = { v: T };
export type D = C;`,
			decl: "D",
			want: "{ v: string }",
		},
		{
			name: "missing argument without constraint is any",
			src: `type C<T> = { v: T };
export type D = C;`,
			decl: "D",
			want: "{ v: any }",
		},
		{
			name: "template literal stays symbolic",
			src: "type Name = \"a\" | \"b\";\nexport type T = `prefix-${Name}-${number}`;",
			decl: "T",
			want: "`prefix-${\"a\" | \"b\"}-${number}`",
		},
		{
			name: "indexed access",
			src: `interface Foo { a: string; b: number }
export type X = Foo["a"];`,
			decl: "X",
			want: "string",
		},
		{
			name: "indexed access with union key",
			src: `interface Foo { a: string; b: number }
export type X = Foo["a" | "b"];`,
			decl: "X",
			want: "string | number",
		},
		{
			name: "tuple",
			src:  `export type T = [string, number?, ...boolean[]];`,
			decl: "T",
			want: "[string, number?, ...boolean[]]",
		},
		{
			name: "tuple indexed by number",
			src: `type T = [string, number];
export type E = T[number];`,
			decl: "E",
			want: "string | number",
		},
		{
			name: "readonly array",
			src:  `export type R = readonly string[];`,
			decl: "R",
			want: "string[]",
		},
		{
			name: "readonly array reference",
			src:  `export type R = ReadonlyArray<number>;`,
			decl: "R",
			want: "number[]",
		},
		{
			name: "null undefined never",
			src:  `export type N = never | null | undefined;`,
			decl: "N",
			want: "never | null | undefined",
		},
		{
			name: "any and unknown are not expanded",
			src:  `export type X = { a: any; b: unknown };`,
			decl: "X",
			want: "{ a: any; b: unknown }",
		},
		{
			name: "keyof",
			src: `type O = { a: string; b: number };
export type K = keyof O;`,
			decl: "K",
			want: `"a" | "b"`,
		},
		{
			name: "partial",
			src: `type O = { a: string; b?: number };
export type P = Partial<O>;`,
			decl: "P",
			want: "{ a?: string; b?: number }",
		},
		{
			name: "required",
			src: `type O = { a: string; b?: number };
export type P = Required<O>;`,
			decl: "P",
			want: "{ a: string; b: number }",
		},
		{
			name: "pick over intersection merges",
			src: `type A = { k: string; x: number };
type B = { k: number; y: boolean };
export type I = Pick<A & B, "k" | "x">;`,
			decl: "I",
			want: "{ k: number; x: number }",
		},
		{
			name: "omit over union",
			src: `type A = { k: string; x: number };
type B = { k: number; y: boolean };
export type U = Omit<A | B, "k">;`,
			decl: "U",
			want: "{ x: number } | { y: boolean }",
		},
		{
			name: "pick over type parameter resolves on instantiation",
			src: `type PickA<T> = Pick<T, "a">;
export type R = PickA<{ a: string; b: number }>;`,
			decl: "R",
			want: "{ a: string }",
		},
		{
			name: "self reference becomes back reference",
			src:  `export type Node = { value: number; next: Node };`,
			decl: "Node",
			want: "{ value: number; next: Node }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := convert(t, tt.src)
			assert.Empty(t, res.Errors)
			assert.Equal(t, tt.want, body(t, res, tt.decl).String())
			requireResolvable(t, res)
		})
	}
}

func TestOptionalFlags(t *testing.T) {
	res := convert(t, `export interface Foo { bar: string; bax?: number }`)
	obj, ok := body(t, res, "Foo").(*schema.Object)
	require.True(t, ok)

	bar, ok := obj.Get("bar")
	require.True(t, ok)
	assert.False(t, bar.Optional)
	assert.Equal(t, schema.NewPrimitive(schema.String), bar.Type)

	bax, ok := obj.Get("bax")
	require.True(t, ok)
	assert.True(t, bax.Optional)
	assert.Equal(t, schema.NewPrimitive(schema.Number), bax.Type)
}

func TestGenericDeclarationMode(t *testing.T) {
	res := convert(t, `export type Box<T extends string = "a"> = { value: T; items: T[] };`)
	d, ok := res.Types.Get("Box")
	require.True(t, ok)

	require.Len(t, d.TypeParameters, 1)
	assert.Equal(t, `T extends string = "a"`, d.TypeParameters[0].String())
	assert.Equal(t, "{ value: T; items: T[] }", d.Body.String())

	obj := d.Body.(*schema.Object)
	value, _ := obj.Get("value")
	ref, ok := value.Type.(*schema.Ref)
	require.True(t, ok)
	assert.True(t, ref.Parameter)
}

func TestGenericRecursionInstantiates(t *testing.T) {
	res := convert(t, `type Tree<T> = { value: T; children: Tree<T>[] };
export type Numbers = Tree<number>;`)
	require.Empty(t, res.Errors)

	assert.Equal(t, "{ value: number; children: Tree<number>[] }", body(t, res, "Numbers").String())

	tree, ok := res.Types.Get("Tree")
	require.True(t, ok, "back-referenced declaration is included")
	assert.False(t, tree.Exported)
	requireResolvable(t, res)
}

func TestCycleThroughNonExportedDeclaration(t *testing.T) {
	res := convert(t, `type Node = { next?: Node };
export type List = { head: Node };`)
	require.Empty(t, res.Errors)

	assert.Equal(t, "{ head: { next?: Node } }", body(t, res, "List").String())
	assert.Equal(t, []string{"Node", "List"}, res.Types.Names())

	node, _ := res.Types.Get("Node")
	assert.False(t, node.Exported)
	requireResolvable(t, res)
}

func TestMutualRecursionTerminates(t *testing.T) {
	res := convert(t, `export type A = { b: B };
export type B = { a: A };`)
	require.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Types.Len())
	assert.Empty(t, schema.Validate(res.Types))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		decl     string
		sentinel error
	}{
		{"unresolved reference", `export type X = Missing;`, "X", ErrUnresolvedReference},
		{"unknown member", `interface Foo { a: string }
export type X = Foo["b"];`, "X", ErrUnknownMember},
		{"too many type arguments", `type One<T> = T[];
export type X = One<string, number>;`, "X", ErrUnsupportedConstruct},
		{"conditional type", `export type X<T> = T extends string ? 1 : 2;`, "X", ErrUnsupportedConstruct},
		{"function type", `export type X = (a: string) => void;`, "X", ErrUnsupportedConstruct},
		{"mapped type", `export type X<T> = { [K in keyof T]: T[K] };`, "X", ErrUnsupportedConstruct},
		{"method signature", `export interface X { m(): void }`, "X", ErrUnsupportedConstruct},
		{"built-in utility", `export type X = Record<string, number>;`, "X", ErrUnsupportedConstruct},
		{"enum", `export enum X { A }`, "X", ErrUnsupportedConstruct},
		{"class reference", `class K {}
export type X = K;`, "X", ErrUnsupportedConstruct},
		{"typeof mutable array", `const xs = ["a", "b"];
export type X = typeof xs[number];`, "X", ErrUnsupportedConstruct},
		{"typeof array of non-literals", `const xs = [["a"]] as const;
export type X = typeof xs[number];`, "X", ErrUnsupportedConstruct},
		{"pick over parameter in declaration mode", `export type PickA<T> = Pick<T, "a">;`, "PickA", ErrUnsupportedConstruct},
		{"object keyword", `export type X = object;`, "X", ErrUnsupportedConstruct},
		{"tuple index out of range", `type T = [string];
export type X = T[1];`, "X", ErrUnknownMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := convert(t, tt.src)
			e := errorFor(t, res, tt.decl)
			assert.ErrorIs(t, e, tt.sentinel)
			assert.Positive(t, e.Location.Line)

			_, ok := res.Types.Get(tt.decl)
			assert.False(t, ok, "failed declaration must not appear in output")
		})
	}
}

func TestFailuresAreScopedPerDeclaration(t *testing.T) {
	res := convert(t, `export type Good = string;
export type Bad = Missing;
export type AlsoGood = { ok: boolean };`)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Bad", res.Errors[0].Declaration)
	assert.Equal(t, []string{"Good", "AlsoGood"}, res.Types.Names())
	assert.ErrorIs(t, res.Err(), ErrUnresolvedReference)
}

func TestPickOmitPartition(t *testing.T) {
	res := convert(t, `type O = { a: string; b: number; c?: boolean; d: null };
export type P = Pick<O, "a" | "c">;
export type Q = Omit<O, "a" | "c">;
export type Full = O;`)
	require.Empty(t, res.Errors)

	picked := body(t, res, "P").(*schema.Object)
	omitted := body(t, res, "Q").(*schema.Object)
	full := body(t, res, "Full").(*schema.Object)

	for _, key := range picked.Keys() {
		assert.False(t, omitted.Has(key), "key %s in both", key)
	}
	assert.ElementsMatch(t, full.Keys(), append(picked.Keys(), omitted.Keys()...))

	c, _ := picked.Get("c")
	assert.True(t, c.Optional, "pick keeps optionality")
}

func TestPickDistributesOverUnion(t *testing.T) {
	res := convert(t, `type A = { k: string; x: number };
type B = { k: number; y: boolean };
export type Distributed = Pick<A | B, "k">;
export type Manual = Pick<A, "k"> | Pick<B, "k">;`)
	require.Empty(t, res.Errors)

	assert.True(t, schema.Equal(body(t, res, "Distributed"), body(t, res, "Manual")))
}

func TestTemplateParts(t *testing.T) {
	res := convert(t, "type Inner = `in-${string}`;\nexport type T = `a${Inner}b`;")
	tpl, ok := body(t, res, "T").(*schema.Template)
	require.True(t, ok)

	require.Len(t, tpl.Parts, 3)
	assert.Equal(t, "a", tpl.Parts[0].Text)
	nested, ok := tpl.Parts[1].Type.(*schema.Template)
	require.True(t, ok, "nested template resolves through the reference")
	assert.Equal(t, "`in-${string}`", nested.String())
	assert.Equal(t, "b", tpl.Parts[2].Text)
}

func TestNamedReferences(t *testing.T) {
	src := `type Inner = { x: string };
export type Outer = { inner: Inner; list: Inner[] };`

	inline := convert(t, src)
	assert.Equal(t, "{ inner: { x: string }; list: { x: string }[] }", body(t, inline, "Outer").String())
	assert.Equal(t, 1, inline.Types.Len())

	named := convert(t, src, Options{References: ReferencesNamed})
	require.Empty(t, named.Errors)
	assert.Equal(t, "{ inner: Inner; list: Inner[] }", body(t, named, "Outer").String())

	inner, ok := named.Types.Get("Inner")
	require.True(t, ok)
	assert.False(t, inner.Exported)
	requireResolvable(t, named)
	requireResolvable(t, inline)
}

func TestNamedReferencesStillExpandForTransforms(t *testing.T) {
	res := convert(t, `interface Base { a: string; b: number }
export type P = Pick<Base, "a">;
export type I = Base["b"];
export interface D extends Base { c: boolean }`, Options{References: ReferencesNamed})
	require.Empty(t, res.Errors)

	assert.Equal(t, "{ a: string }", body(t, res, "P").String())
	assert.Equal(t, "number", body(t, res, "I").String())
	assert.Equal(t, "{ a: string; b: number; c: boolean }", body(t, res, "D").String())
}

func TestExternalReference(t *testing.T) {
	res := convert(t, `import { Remote } from './remote';
export type X = { r: Remote<string> };`)
	require.Empty(t, res.Errors)

	obj := body(t, res, "X").(*schema.Object)
	r, _ := obj.Get("r")
	ref, ok := r.Type.(*schema.Ref)
	require.True(t, ok)
	assert.True(t, ref.External)
	assert.Equal(t, "Remote<string>", ref.String())
	assert.Empty(t, schema.Validate(res.Types))
}

func TestExportClause(t *testing.T) {
	res := convert(t, `type A = string;
type Hidden = number;
export { A };`)
	require.Empty(t, res.Errors)
	assert.Equal(t, []string{"A"}, res.Types.Names())
}

func TestExportClauseAlias(t *testing.T) {
	t.Run("alias replaces the local name", func(t *testing.T) {
		res := convert(t, `type A = { a: string };
export { A as B };`)
		require.Empty(t, res.Errors)
		assert.Equal(t, []string{"B"}, res.Types.Names())

		b, _ := res.Types.Get("B")
		assert.True(t, b.Exported)
		assert.Equal(t, "export type B = { a: string };", schema.RenderDeclaration(b))
		requireResolvable(t, res)
	})

	t.Run("exported under both names", func(t *testing.T) {
		res := convert(t, `export type A = { a: string };
export { A as B };`)
		require.Empty(t, res.Errors)
		assert.Equal(t, []string{"A", "B"}, res.Types.Names())
		assert.True(t, schema.Equal(body(t, res, "A"), body(t, res, "B")))
	})

	t.Run("generic alias keeps parameters", func(t *testing.T) {
		res := convert(t, `type Box<T> = { value: T };
export { Box as Crate };`)
		require.Empty(t, res.Errors)
		crate, ok := res.Types.Get("Crate")
		require.True(t, ok)
		require.Len(t, crate.TypeParameters, 1)
		assert.Equal(t, "T", crate.TypeParameters[0].Name)
		requireResolvable(t, res)
	})

	t.Run("self reference keeps the local target", func(t *testing.T) {
		res := convert(t, `type Node = { next?: Node };
export { Node as Link };`)
		require.Empty(t, res.Errors)
		assert.Equal(t, []string{"Node", "Link"}, res.Types.Names())

		node, _ := res.Types.Get("Node")
		assert.False(t, node.Exported)
		assert.Equal(t, "{ next?: Node }", body(t, res, "Link").String())
		requireResolvable(t, res)
	})
}

func TestBackReferenceToFailedGenericDropsUser(t *testing.T) {
	res := convert(t, `type T<X> = { a: Pick<X, "k">; self: T<X> };
export type U = T<{ k: string; z: number }>;
export type Fine = string;`)

	assert.ErrorIs(t, errorFor(t, res, "T"), ErrUnsupportedConstruct)

	e := errorFor(t, res, "U")
	assert.ErrorIs(t, e, ErrUnresolvedReference)
	assert.Contains(t, e.Message, "T")

	assert.Equal(t, []string{"Fine"}, res.Types.Names())
	requireResolvable(t, res)
}

func TestNamedReferenceToFailedDeclaration(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		res := convert(t, `export type A = { b: B };
type B = { f: () => void };`, Options{References: ReferencesNamed})

		assert.ErrorIs(t, errorFor(t, res, "B"), ErrUnsupportedConstruct)
		e := errorFor(t, res, "A")
		assert.ErrorIs(t, e, ErrUnresolvedReference)
		assert.Contains(t, e.Message, "B")

		assert.Equal(t, 0, res.Types.Len())
		requireResolvable(t, res)
	})

	t.Run("transitive", func(t *testing.T) {
		res := convert(t, `export type A = { b: B };
type B = { c: C };
type C = { f: () => void };
export type D = { n: number };`, Options{References: ReferencesNamed})

		assert.ErrorIs(t, errorFor(t, res, "C"), ErrUnsupportedConstruct)
		assert.ErrorIs(t, errorFor(t, res, "B"), ErrUnresolvedReference)
		assert.ErrorIs(t, errorFor(t, res, "A"), ErrUnresolvedReference)

		assert.Equal(t, []string{"D"}, res.Types.Names())
		assert.Equal(t, 3, res.Stats.Failed)
		requireResolvable(t, res)
	})
}

func TestMaxDepth(t *testing.T) {
	src := `export type Deep = { a: { b: { c: { d: string } } } };`

	res := convert(t, src, Options{MaxDepth: 3})
	assert.ErrorIs(t, errorFor(t, res, "Deep"), ErrUnsupportedConstruct)

	res = convert(t, src)
	assert.Empty(t, res.Errors)
}

func TestIdempotence(t *testing.T) {
	src := `interface Base<T> { value: T }
type Node = { next?: Node; tags: Tags };
type Tags = "a" | "b";
export interface Foo extends Base<'x'> { node: Node }
export type Keys = keyof Foo;`

	first := convert(t, src)
	second := convert(t, src)
	require.Empty(t, first.Errors)

	assert.True(t, schema.EqualSchemas(first.Types, second.Types))

	a, err := json.Marshal(first.Types)
	require.NoError(t, err)
	b, err := json.Marshal(second.Types)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, string(a), string(b), "key order is deterministic")
}

func TestCacheReuse(t *testing.T) {
	res := convert(t, `interface Shared { a: string }
export type X = { s: Shared; t: Shared };`)
	require.Empty(t, res.Errors)
	assert.Positive(t, res.Stats.CacheHits)
}

func TestParseReferenceMode(t *testing.T) {
	m, err := ParseReferenceMode("named")
	require.NoError(t, err)
	assert.Equal(t, ReferencesNamed, m)

	m, err = ParseReferenceMode("")
	require.NoError(t, err)
	assert.Equal(t, ReferencesInline, m)

	_, err = ParseReferenceMode("deep")
	assert.Error(t, err)
}

func TestConversionErrorMessage(t *testing.T) {
	e := &ConversionError{Declaration: "X", Kind: KindUnknownMember, Message: `property "b" does not exist`}
	assert.True(t, errors.Is(e, ErrUnknownMember))
	assert.Contains(t, e.Error(), "X")
	assert.Contains(t, e.Error(), "unknown member")
}
