package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseTypeScript(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("export interface Foo { bar: string; bax?: number }\nexport type ID = string;\n")
	tree, err := manager.Parse(source, DialectTypeScript)
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
	assert.Contains(t, root.ToSexp(), "interface_declaration")
	assert.Contains(t, root.ToSexp(), "type_alias_declaration")
}

func TestParseTSX(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	source := []byte("export type Props = { label: string };\nexport const View = (p: Props) => <div>{p.label}</div>;\n")
	tree, err := manager.Parse(source, DialectTSX)
	require.NoError(t, err)
	defer tree.Close()

	assert.Contains(t, tree.RootNode().ToSexp(), "jsx_element")
}

func TestParseFile(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tests := []struct {
		path    string
		wantErr bool
	}{
		{"types.ts", false},
		{"types.d.ts", false},
		{"module.mts", false},
		{"view.tsx", false},
		{"script.js", true},
		{"README.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte("type A = string;"), tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tree.Close()
		})
	}
}

func TestParseUnknownDialect(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	_, err := manager.Parse([]byte("type A = string;"), DialectUnknown)
	assert.Error(t, err)
}

func TestParseInvalidSyntaxStillReturnsTree(t *testing.T) {
	manager := NewParserManager(testLogger())
	defer manager.Close()

	tree, err := manager.Parse([]byte("export type = = ;\nexport type Ok = string;"), DialectTypeScript)
	require.NoError(t, err, "partial trees are returned")
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
	assert.Equal(t, 1, manager.GetStats().ParseErrors)
}

func TestLazyPoolCreation(t *testing.T) {
	manager := NewParserManagerWithPoolSize(testLogger(), 2)
	defer manager.Close()

	assert.Equal(t, 0, manager.GetStats().ParsersCreated)

	tree, err := manager.Parse([]byte("type A = 1;"), DialectTypeScript)
	require.NoError(t, err)
	tree.Close()

	stats := manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated)
	assert.Equal(t, 1, stats.ParsesCalled)
}

func TestDetectDialect(t *testing.T) {
	tests := map[string]Dialect{
		"a.ts":         DialectTypeScript,
		"a.MTS":        DialectTypeScript,
		"a.cts":        DialectTypeScript,
		"index.d.ts":   DialectTypeScript,
		"a.tsx":        DialectTSX,
		"a.js":         DialectUnknown,
		"no-extension": DialectUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectDialect(path), path)
	}
}

func TestIsDeclarationFile(t *testing.T) {
	assert.True(t, IsDeclarationFile("src/index.d.ts"))
	assert.True(t, IsDeclarationFile("types.d.mts"))
	assert.False(t, IsDeclarationFile("src/index.ts"))
	assert.False(t, IsDeclarationFile("d.ts.tsx"))
}

func TestParseDialectString(t *testing.T) {
	assert.Equal(t, DialectTypeScript, ParseDialectString("TS"))
	assert.Equal(t, DialectTypeScript, ParseDialectString("typescript"))
	assert.Equal(t, DialectTSX, ParseDialectString("tsx"))
	assert.Equal(t, DialectUnknown, ParseDialectString("go"))
	assert.Equal(t, "tsx", DialectTSX.String())
}
