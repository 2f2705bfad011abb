package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleSource = `interface Foo {
  bar: string;
  bax?: number;
}
export type Baz = Pick<Foo, "bar">;
export type Names = string[];
export type Lookup = Record<string, Foo>;
`

func TestVersionCmd(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tscanon "+version+"\n", stdout)
}

func TestConvertCmd_TS(t *testing.T) {
	path := writeTS(t, t.TempDir(), "types.ts", sampleSource)

	stdout, stderr, err := execute(t, "convert", path, "--format", "ts")
	require.NoError(t, err)
	assert.Equal(t, "export type Baz = { bar: string };\nexport type Names = string[];\n", stdout)
	assert.Contains(t, stderr, "error: Lookup")
}

func TestConvertCmd_JSON(t *testing.T) {
	path := writeTS(t, t.TempDir(), "types.ts", sampleSource)

	stdout, _, err := execute(t, "convert", path)
	require.NoError(t, err)

	var out struct {
		Types  map[string]json.RawMessage `json:"types"`
		Errors []map[string]any           `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Contains(t, out.Types, "Baz")
	assert.Contains(t, out.Types, "Names")
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Lookup", out.Errors[0]["declaration"])
}

func TestConvertCmd_Strict(t *testing.T) {
	path := writeTS(t, t.TempDir(), "types.ts", sampleSource)

	_, _, err := execute(t, "convert", path, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 declaration(s) failed")
}

func TestConvertCmd_NamedReferences(t *testing.T) {
	path := writeTS(t, t.TempDir(), "tree.ts", `type Leaf = { v: string };
export type Tree = { leaf: Leaf; kids: Tree[] };
`)

	stdout, _, err := execute(t, "convert", path, "--format", "ts", "--references", "named")
	require.NoError(t, err)
	assert.Contains(t, stdout, "type Leaf = { v: string };\n")
	assert.Contains(t, stdout, "export type Tree = { leaf: Leaf; kids: Tree[] };\n")
}

func TestConvertCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeTS(t, dir, "types.ts", sampleSource)

	_, _, err := execute(t, "convert", path, "--format", "yaml")
	assert.Error(t, err)

	_, _, err = execute(t, "convert", path, "--references", "deep")
	assert.Error(t, err)

	_, _, err = execute(t, "convert", filepath.Join(dir, "missing.ts"))
	assert.Error(t, err)

	_, _, err = execute(t, "convert")
	assert.Error(t, err)
}

func TestScanCmd_Output(t *testing.T) {
	dir := t.TempDir()
	writeTS(t, dir, "src/types.ts", sampleSource)
	writeTS(t, dir, "src/status.ts", `export type Status = "on" | "off";`)
	out := filepath.Join(t.TempDir(), "catalog.json")

	_, stderr, err := execute(t, "scan", dir, "-o", out, "--name", "demo")
	require.NoError(t, err)
	assert.Contains(t, stderr, "2 converted")
	assert.Contains(t, stderr, "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var cat struct {
		Name  string `json:"name"`
		RunID string `json:"run_id"`
		Files []struct {
			Path   string           `json:"path"`
			Types  map[string]any   `json:"types"`
			Errors []map[string]any `json:"errors"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &cat))
	assert.Equal(t, "demo", cat.Name)
	assert.NotEmpty(t, cat.RunID)
	require.Len(t, cat.Files, 2)
	assert.Equal(t, "src/status.ts", cat.Files[0].Path)
	assert.Equal(t, "src/types.ts", cat.Files[1].Path)
	assert.Len(t, cat.Files[1].Errors, 1)
}

func TestScanCmd_Stdout(t *testing.T) {
	dir := t.TempDir()
	writeTS(t, dir, "a.ts", "export type A = 1 | 2;")

	stdout, _, err := execute(t, "scan", dir)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(stdout), &envelope))
	var name string
	require.NoError(t, json.Unmarshal(envelope["name"], &name))
	assert.Equal(t, filepath.Base(dir), name)
	assert.Contains(t, envelope, "files")
}

func TestScanCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTS(t, dir, "keep/a.ts", "export type A = string;")
	writeTS(t, dir, "skip/b.ts", "export type B = string;")
	cfgPath := writeConfig(t, "exclude: [\"skip/**\"]\nlog: {level: error}\n")

	stdout, stderr, err := execute(t, "--config", cfgPath, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 converted")
	assert.Contains(t, stdout, "keep/a.ts")
	assert.NotContains(t, stdout, "skip/b.ts")
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging flags")
}

func TestCallsCmd(t *testing.T) {
	path := writeTS(t, t.TempDir(), "calls.jsonl",
		`{"tool":"get_type","duration_ms":10,"response_bytes":40}
{"tool":"get_type","duration_ms":30,"response_bytes":60,"is_error":true}
{"tool":"list_types","duration_ms":4,"response_bytes":20}
`)

	stdout, _, err := execute(t, "calls", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "TOOL")
	assert.Regexp(t, `get_type\s+2\s+1\s+20\s+30\s+100`, stdout)
	assert.Regexp(t, `list_types\s+1\s+0\s+4\s+4\s+20`, stdout)

	stdout, _, err = execute(t, "calls", path, "--json")
	require.NoError(t, err)
	var summary []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.Len(t, summary, 2)
	assert.Equal(t, "get_type", summary[0]["tool"])
}
