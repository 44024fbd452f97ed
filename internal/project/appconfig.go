package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/matcalc/internal/model"
)

// DefaultConfigDir returns the default directory for application data.
// On all platforms this is ~/.matcalc/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".matcalc")
}

// DefaultDefaultsPath returns the default path for the user defaults file.
func DefaultDefaultsPath() string {
	return filepath.Join(DefaultConfigDir(), "defaults.json")
}

// SaveDefaults persists the user defaults to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveDefaults(path string, defaults model.DefaultsConfig) error {
	return writeJSON(path, defaults)
}

// LoadDefaults reads the user defaults from the given path.
// If the file does not exist, it returns the factory defaults with no error.
func LoadDefaults(path string) (model.DefaultsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.FactoryDefaults(), nil
		}
		return model.DefaultsConfig{}, err
	}
	// Start from factory values so keys missing from older files keep a default.
	defaults := model.FactoryDefaults()
	if err := json.Unmarshal(data, &defaults); err != nil {
		return model.DefaultsConfig{}, err
	}
	return defaults, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
