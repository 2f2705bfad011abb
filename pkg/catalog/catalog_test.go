package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/schema"
)

// --- Helpers ---

func userSchema() *schema.Schema {
	s := schema.New()
	obj := schema.NewObject()
	obj.Set("id", schema.Property{Type: schema.NewPrimitive(schema.Number)})
	obj.Set("email", schema.Property{Type: schema.NewPrimitive(schema.String), Optional: true})
	s.Add(&schema.Declaration{Name: "User", Body: obj, Exported: true})

	s.Add(&schema.Declaration{
		Name:           "Box",
		TypeParameters: []*schema.GenericParam{{Name: "T"}},
		Body:           &schema.Array{Element: schema.NewParamRef("T")},
		Exported:       true,
	})
	return s
}

func minimalValidCatalog() *Catalog {
	return &Catalog{
		Name:    "test",
		Version: "1.0",
		RunID:   "run-1",
		Files: []FileSchema{
			{Path: "src/user.ts", Types: userSchema()},
		},
	}
}

// --- Validate ---

func TestValidate_ValidCatalog(t *testing.T) {
	assert.Empty(t, minimalValidCatalog().Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	cat := &Catalog{Files: []FileSchema{{Types: schema.New()}}}
	errs := cat.Validate()
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "name is required")
	assert.Contains(t, errs[1].Error(), "version is required")
	assert.Contains(t, errs[2].Error(), "path is required")
}

func TestValidate_DuplicatePath(t *testing.T) {
	cat := minimalValidCatalog()
	cat.Files = append(cat.Files, FileSchema{Path: "src/user.ts", Types: schema.New()})

	errs := cat.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate path")
}

func TestValidate_MissingTypes(t *testing.T) {
	cat := minimalValidCatalog()
	cat.Files[0].Types = nil

	errs := cat.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "types are required")
}

func TestValidate_DanglingReference(t *testing.T) {
	s := schema.New()
	s.Add(&schema.Declaration{Name: "A", Body: schema.NewRef("Missing"), Exported: true})
	cat := minimalValidCatalog()
	cat.Files = append(cat.Files, FileSchema{Path: "src/a.ts", Types: s})

	errs := cat.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `file "src/a.ts"`)
	assert.Contains(t, errs[0].Error(), "Missing")
}

// --- BuildIndex ---

func TestBuildIndex(t *testing.T) {
	cat := minimalValidCatalog()
	other := schema.New()
	other.Add(&schema.Declaration{Name: "User", Body: schema.NewPrimitive(schema.String), Exported: true})
	cat.Files = append(cat.Files, FileSchema{Path: "src/other.ts", Types: other})

	idx := cat.BuildIndex()

	require.Contains(t, idx.FileByPath, "src/user.ts")
	assert.Same(t, &cat.Files[0], idx.FileByPath["src/user.ts"])

	users := idx.TypesByName["User"]
	require.Len(t, users, 2)
	assert.Equal(t, "src/user.ts", users[0].File)
	assert.Equal(t, "src/other.ts", users[1].File)
	assert.Len(t, idx.TypesByName["Box"], 1)
}

// --- WriteFile ---

func TestWriteFile(t *testing.T) {
	cat := minimalValidCatalog()
	cat.Files[0].Errors = []*converter.ConversionError{
		{Declaration: "Bad", Kind: converter.KindUnresolvedReference, Message: "cannot find type Missing"},
	}
	path := filepath.Join(t.TempDir(), "out", "catalog.json")

	require.NoError(t, cat.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "test", decoded["name"])
	assert.Equal(t, "run-1", decoded["run_id"])

	files := decoded["files"].([]any)
	require.Len(t, files, 1)
	file := files[0].(map[string]any)
	assert.Equal(t, "src/user.ts", file["path"])

	types := file["types"].(map[string]any)
	assert.Contains(t, types, "User")
	assert.Contains(t, types, "Box")

	errs := file["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "UnresolvedReference", errs[0].(map[string]any)["kind"])
}
