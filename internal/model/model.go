package model

import (
	"encoding/json"
	"strings"
)

// Shape identifies the cross-section of a bar stock.
type Shape string

const (
	ShapeCircle    Shape = "circle"
	ShapeSquare    Shape = "square"
	ShapeHexagon   Shape = "hexagon"
	ShapeRectangle Shape = "rectangle"
)

// Shapes lists every supported cross-section in display order.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeHexagon, ShapeRectangle}

// ParseShape normalizes a shape name. Unrecognized names fail with an
// UnknownShape error instead of falling back to circle.
func ParseShape(s string) (Shape, error) {
	shape := normalizeShape(s)
	if !shape.Valid() {
		return "", UnknownShape(s)
	}
	return shape, nil
}

// UnmarshalJSON accepts shape names in any case and with surrounding space.
// Unknown names decode as given so the calculator can reject them by name.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = normalizeShape(raw)
	return nil
}

func normalizeShape(s string) Shape {
	return Shape(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether s is one of the supported shapes.
func (s Shape) Valid() bool {
	for _, known := range Shapes {
		if s == known {
			return true
		}
	}
	return false
}

// UsesWidthHeight reports whether the shape is sized by width and height
// rather than by the diameter field.
func (s Shape) UsesWidthHeight() bool {
	return s == ShapeRectangle
}

// StockForm distinguishes bar stock from plate stock.
type StockForm string

const (
	FormRod   StockForm = "rod"
	FormPlate StockForm = "plate"
)

// RodSpec is one calculation request for bar stock.
// Lengths are in mm, density in kg/m³ and prices per kg.
type RodSpec struct {
	Shape    Shape   `json:"shape"`
	Diameter float64 `json:"diameter,omitempty"` // Side length for square, across-corner distance for hexagon
	Width    float64 `json:"width,omitempty"`    // Rectangle only
	Height   float64 `json:"height,omitempty"`   // Rectangle only

	ProductLength     float64 `json:"productLength"`
	Quantity          int     `json:"quantity"`
	CuttingLoss       float64 `json:"cuttingLoss"`
	HeadCut           float64 `json:"headCut"`
	TailCut           float64 `json:"tailCut"`
	StandardBarLength float64 `json:"standardBarLength"`

	MaterialDensity float64 `json:"materialDensity"` // kg/m³
	MaterialPrice   float64 `json:"materialPrice"`   // per kg

	// Scrap inputs are only used when all three are present and positive.
	ActualProductWeight *float64 `json:"actualProductWeight,omitempty"` // g per piece
	RecoveryRatio       *float64 `json:"recoveryRatio,omitempty"`       // %
	ScrapUnitPrice      *float64 `json:"scrapUnitPrice,omitempty"`      // per kg
}

// ScrapActive reports whether every scrap input is present and positive.
func (r RodSpec) ScrapActive() bool {
	return positive(r.ActualProductWeight) && positive(r.RecoveryRatio) && positive(r.ScrapUnitPrice)
}

// PlateSpec is one calculation request for flat stock.
type PlateSpec struct {
	Thickness       float64 `json:"plateThickness"` // mm
	Width           float64 `json:"plateWidth"`     // mm
	Length          float64 `json:"plateLength"`    // mm
	Quantity        int     `json:"quantity"`
	MaterialDensity float64 `json:"materialDensity"` // kg/m³
	PlateUnitPrice  float64 `json:"plateUnitPrice"`  // per kg
}

// Float returns a pointer to v, for filling optional spec fields.
func Float(v float64) *float64 {
	return &v
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}
