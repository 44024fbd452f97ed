package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/matcalc/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string               `json:"version"`
	CreatedAt string               `json:"created_at"`
	Defaults  model.DefaultsConfig `json:"defaults"`
	Catalog   model.Catalog        `json:"catalog"`
	Orders    []model.OrderRecord  `json:"orders"`
}

// ExportAllData writes defaults, catalog and order history to a single JSON
// file at the specified path.
func ExportAllData(exportPath string, defaults model.DefaultsConfig, cat model.Catalog, orders []model.OrderRecord) error {
	if orders == nil {
		orders = []model.OrderRecord{}
	}
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Defaults:  defaults,
		Catalog:   cat,
		Orders:    orders,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying it.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	backup := BackupData{Defaults: model.FactoryDefaults()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Orders == nil {
		backup.Orders = []model.OrderRecord{}
	}
	return backup, nil
}
