package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/matcalc/internal/model"
)

// DefaultCatalogPath returns the default file path for the material catalog.
// This is located at ~/.matcalc/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, cat model.Catalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalog{}, err
	}
	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.Catalog{}, err
	}
	return cat, nil
}

// ImportCatalog merges imported into existing and saves the result to path.
// Materials whose key is already present are skipped. It returns the merged
// catalog and the number of materials added.
func ImportCatalog(path string, existing, imported model.Catalog) (model.Catalog, int, error) {
	merged := existing.Clone()
	added := merged.Merge(imported)
	if added == 0 {
		return merged, 0, nil
	}
	if err := SaveCatalog(path, merged); err != nil {
		return existing, 0, err
	}
	return merged, added, nil
}
