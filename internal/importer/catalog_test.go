package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/matcalc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `materials:
  - key: copper
    name: C1100
    standard_bar_length: 2500
    density: 8.96
    bar_unit_price: 12000
    plate_unit_price: 12500
    scrap_unit_price: 9000
`

func TestLoadCatalogFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0644))

	cat, err := LoadCatalogFile(path)
	require.NoError(t, err)
	m, ok := cat.Lookup("copper")
	require.True(t, ok)
	assert.Equal(t, 8.96, m.Density)
	assert.Equal(t, 12500.0, m.PlateUnitPrice)
}

func TestLoadCatalogFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"materials":[{"key":"zinc","name":"Zn","standardBarLength":2000,"materialDensity":7.14,"barUnitPrice":3000,"plateUnitPrice":3000,"scrapUnitPrice":2000}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cat, err := LoadCatalogFile(path)
	require.NoError(t, err)
	m, ok := cat.Lookup("zinc")
	require.True(t, ok)
	assert.Equal(t, 7.14, m.Density)
}

func TestLoadCatalogFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"nokey.yaml":  "materials:\n  - name: x\n    density: 1\n    standard_bar_length: 1\n",
		"nodens.yaml": "materials:\n  - key: x\n    standard_bar_length: 1\n",
		"nolen.yml":   "materials:\n  - key: x\n    density: 7\n",
		"broken.json": "{",
		"broken.yaml": "materials: [",
	}
	for name, content := range tests {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := LoadCatalogFile(path)
		assert.Error(t, err, name)
	}

	_, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteCatalogYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalogYAML(&buf, model.DefaultCatalog()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "materials:\n"))
	assert.Contains(t, out, "key: stainless_303")
	assert.Contains(t, out, "density: 7.93")
}

func TestWriteCatalogFile_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		require.NoError(t, WriteCatalogFile(path, model.DefaultCatalog()))

		cat, err := LoadCatalogFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, model.DefaultCatalog(), cat, name)
	}
}
