package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/scanner"
	"github.com/gnana997/tscanon/pkg/util"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tscanon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProjectConfig(t *testing.T) {
	path := writeConfig(t, `
include: ["src/**/*.ts"]
exclude: ["src/generated/**"]
references: named
max_depth: 32
output: schema.json
log:
  level: debug
  format: json
`)
	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.ts"}, cfg.Include)
	assert.Equal(t, "schema.json", cfg.Output)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, converter.ReferencesNamed, opts.References)
	assert.Equal(t, 32, opts.MaxDepth)

	sc, err := cfg.ScanConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/generated/**"}, sc.Exclude)
	assert.Equal(t, converter.ReferencesNamed, sc.Options.References)

	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, util.LevelDebug, lc.Level)
	assert.Equal(t, util.FormatJSON, lc.Format)
}

func TestLoadProjectConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadProjectConfig("")
	require.NoError(t, err)

	sc, err := cfg.ScanConfig()
	require.NoError(t, err)
	assert.Equal(t, scanner.DefaultScanConfig().Include, sc.Include)
	assert.Equal(t, converter.ReferencesInline, sc.Options.References)
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad reference mode", "references: deep\n", "References"},
		{"negative depth", "max_depth: -1\n", "MaxDepth"},
		{"bad log level", "log: {level: loud}\n", "Level"},
		{"empty pattern", "include: [\"\"]\n", "Include"},
		{"bad yaml", "include: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadProjectConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadProjectConfig_ExplicitMissing(t *testing.T) {
	_, err := loadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
