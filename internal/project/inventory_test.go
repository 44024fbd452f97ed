package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/matcalc/internal/model"
)

func TestLoadCatalogCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "catalog.json")

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(cat.Materials) != len(model.DefaultCatalog().Materials) {
		t.Errorf("expected the default catalog, got %d materials", len(cat.Materials))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default catalog should have been written: %v", err)
	}
}

func TestSaveAndLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	cat := model.Catalog{Materials: []model.MaterialDefaults{
		model.NewMaterial("copper", "C1100", 2500, 8.96, 12000, 12000, 9000),
	}}

	if err := SaveCatalog(path, cat); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}
	loaded, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	m, ok := loaded.Lookup("copper")
	if !ok || m.Density != 8.96 || m.ScrapUnitPrice != 9000 {
		t.Errorf("unexpected material after round trip: %+v", m)
	}
}

func TestLoadCatalogInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportCatalogMergesAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	existing := model.DefaultCatalog()
	imported := model.Catalog{Materials: []model.MaterialDefaults{
		model.NewMaterial("steel", "dup", 1, 1, 1, 1, 1),
		model.NewMaterial("titanium", "Ti", 3000, 4.43, 40000, 40000, 12000),
	}}

	merged, added, err := ImportCatalog(path, existing, imported)
	if err != nil {
		t.Fatalf("ImportCatalog failed: %v", err)
	}
	if added != 1 {
		t.Errorf("expected 1 added, got %d", added)
	}
	if len(existing.Materials) != len(model.DefaultCatalog().Materials) {
		t.Error("existing catalog must not be modified")
	}

	loaded, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := loaded.Lookup("titanium"); !ok {
		t.Error("merged catalog was not saved")
	}
	if len(loaded.Materials) != len(merged.Materials) {
		t.Errorf("saved %d materials, merged %d", len(loaded.Materials), len(merged.Materials))
	}
}

func TestImportCatalogNothingNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	_, added, err := ImportCatalog(path, model.DefaultCatalog(), model.DefaultCatalog())
	if err != nil || added != 0 {
		t.Fatalf("expected no-op, got added=%d err=%v", added, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written when no material is added")
	}
}

func TestSaveAndLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")

	d, err := LoadDefaults(path)
	if err != nil {
		t.Fatalf("LoadDefaults on missing file: %v", err)
	}
	if d != model.FactoryDefaults() {
		t.Errorf("expected factory defaults, got %+v", d)
	}

	d.HeadCut = 5
	d.EnablePlatePrice = true
	if err := SaveDefaults(path, d); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != d {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, d)
	}
}

func TestLoadDefaultsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")
	if err := os.WriteFile(path, []byte(`{"tailCut":100}`), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.TailCut != 100 || d.HeadCut != 20 || !d.SaveHistory {
		t.Errorf("missing keys should keep factory values: %+v", d)
	}
}
