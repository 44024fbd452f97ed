package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/matcalc/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadCatalogFile reads a material catalog from YAML (.yaml, .yml) or JSON.
// Every material must pass MaterialDefaults.Validate.
func LoadCatalogFile(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cat model.Catalog
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cat)
	} else {
		err = json.Unmarshal(data, &cat)
	}
	if err != nil {
		return model.Catalog{}, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if err := validateCatalog(cat); err != nil {
		return model.Catalog{}, err
	}
	return cat, nil
}

// WriteCatalogYAML encodes cat as YAML.
func WriteCatalogYAML(w io.Writer, cat model.Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}

// WriteCatalogFile writes cat to path as YAML or JSON depending on the extension.
func WriteCatalogFile(path string, cat model.Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isYAML(path) {
		return WriteCatalogYAML(f, cat)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(cat)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func validateCatalog(cat model.Catalog) error {
	for i, m := range cat.Materials {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("material %d (%q): %w", i+1, m.Key, err)
		}
	}
	return nil
}
