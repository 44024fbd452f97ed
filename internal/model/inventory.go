package model

import (
	"sort"
	"strings"
)

// MaterialDefaults holds the pricing and physical properties of one material.
// Density is kept in g/cm³ here, as material tables are usually written;
// convert with GPerCm3ToKgPerM3 before building a spec.
type MaterialDefaults struct {
	Key               string  `json:"key" yaml:"key"`
	Name              string  `json:"name" yaml:"name"`
	StandardBarLength float64 `json:"standardBarLength" yaml:"standard_bar_length"` // mm
	Density           float64 `json:"materialDensity" yaml:"density"`               // g/cm³
	BarUnitPrice      float64 `json:"barUnitPrice" yaml:"bar_unit_price"`           // per kg
	PlateUnitPrice    float64 `json:"plateUnitPrice" yaml:"plate_unit_price"`       // per kg
	ScrapUnitPrice    float64 `json:"scrapUnitPrice" yaml:"scrap_unit_price"`       // per kg
}

// Validate checks that the material can be used to build a spec.
func (m MaterialDefaults) Validate() error {
	switch {
	case strings.TrimSpace(m.Key) == "":
		return InvalidInput("key", "material key is required")
	case m.Density <= 0:
		return InvalidInput("materialDensity", "density must be greater than zero (g/cm³)")
	case m.StandardBarLength <= 0:
		return InvalidInput("standardBarLength", "standard bar length must be greater than zero")
	case m.BarUnitPrice < 0 || m.PlateUnitPrice < 0 || m.ScrapUnitPrice < 0:
		return InvalidInput("barUnitPrice", "prices must not be negative")
	}
	return nil
}

// NewMaterial creates a MaterialDefaults entry.
func NewMaterial(key, name string, barLength, density, barPrice, platePrice, scrapPrice float64) MaterialDefaults {
	return MaterialDefaults{
		Key:               key,
		Name:              name,
		StandardBarLength: barLength,
		Density:           density,
		BarUnitPrice:      barPrice,
		PlateUnitPrice:    platePrice,
		ScrapUnitPrice:    scrapPrice,
	}
}

// FallbackMaterialKey is the key reported for lookups that miss the catalog.
const FallbackMaterialKey = "default"

// FallbackMaterial is used when a key is not in the catalog.
func FallbackMaterial() MaterialDefaults {
	return NewMaterial(FallbackMaterialKey, "Default (steel)", 2500, 7.85, 7000, 7000, 5600)
}

// PriceFor returns the unit price for the given stock form. Plates use the
// bar price unless separate plate pricing is enabled.
func (m MaterialDefaults) PriceFor(form StockForm, enablePlatePrice bool) float64 {
	if form == FormPlate && enablePlatePrice {
		return m.PlateUnitPrice
	}
	return m.BarUnitPrice
}

// Catalog is the set of known materials.
type Catalog struct {
	Materials []MaterialDefaults `json:"materials" yaml:"materials"`
}

// DefaultCatalog returns the built-in material table.
func DefaultCatalog() Catalog {
	return Catalog{
		Materials: []MaterialDefaults{
			NewMaterial("brass", "황동", 2500, 8.5, 8000, 8000, 6400),
			NewMaterial("steel", "SUM24L/S45C", 2500, 7.85, 7000, 7000, 5600),
			NewMaterial("stainless_303", "SUS303", 3000, 7.93, 8500, 8500, 6800),
			NewMaterial("stainless", "SUS304", 2500, 7.93, 8500, 8500, 6800),
			NewMaterial("stainless_316", "SUS316", 2500, 7.98, 9000, 9000, 7200),
			NewMaterial("aluminum", "AL", 2500, 2.8, 4000, 4000, 3200),
		},
	}
}

// FindByKey returns a pointer to the material with the given key, or nil.
func (c *Catalog) FindByKey(key string) *MaterialDefaults {
	for i := range c.Materials {
		if c.Materials[i].Key == key {
			return &c.Materials[i]
		}
	}
	return nil
}

// Lookup returns the material for key. Unknown keys return the fallback
// material and false.
func (c Catalog) Lookup(key string) (MaterialDefaults, bool) {
	if m := c.FindByKey(key); m != nil {
		return *m, true
	}
	return FallbackMaterial(), false
}

// Keys returns the material keys sorted alphabetically.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c.Materials))
	for i, m := range c.Materials {
		keys[i] = m.Key
	}
	sort.Strings(keys)
	return keys
}

// Upsert replaces the material with the same key or appends it.
func (c *Catalog) Upsert(m MaterialDefaults) {
	if existing := c.FindByKey(m.Key); existing != nil {
		*existing = m
		return
	}
	c.Materials = append(c.Materials, m)
}

// Merge appends the materials of imported whose keys are not already present.
// It returns the number of materials added.
func (c *Catalog) Merge(imported Catalog) int {
	seen := make(map[string]bool, len(c.Materials))
	for _, m := range c.Materials {
		seen[m.Key] = true
	}
	added := 0
	for _, m := range imported.Materials {
		if m.Key == "" || seen[m.Key] {
			continue
		}
		c.Materials = append(c.Materials, m)
		seen[m.Key] = true
		added++
	}
	return added
}

// Clone returns a deep copy so callers can hold a stable snapshot.
func (c Catalog) Clone() Catalog {
	out := Catalog{Materials: make([]MaterialDefaults, len(c.Materials))}
	copy(out.Materials, c.Materials)
	return out
}
