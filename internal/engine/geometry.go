// Package engine holds the material calculation core. Every function here is
// a pure, deterministic function of its arguments: no I/O, no shared state,
// so callers may invoke it concurrently without locking.
package engine

import (
	"math"

	"github.com/piwi3910/matcalc/internal/model"
)

// hexAreaFactor is the area of a regular hexagon with unit circumradius.
var hexAreaFactor = 3 * math.Sqrt(3) / 2

// CrossSectionalArea returns the cross-section area in mm² of a bar.
//
// For hexagons the diameter is the across-corner distance (the circumscribed
// circle), giving (3√3/2)·(d/2)². Square bars reuse diameter as the side.
func CrossSectionalArea(shape model.Shape, diameter, width, height float64) (float64, error) {
	switch shape {
	case model.ShapeCircle:
		if diameter <= 0 {
			return 0, model.InvalidInput("diameter", "circle requires a diameter greater than zero")
		}
		r := diameter / 2
		return math.Pi * r * r, nil
	case model.ShapeSquare:
		if diameter <= 0 {
			return 0, model.InvalidInput("diameter", "square requires a side length greater than zero")
		}
		return diameter * diameter, nil
	case model.ShapeHexagon:
		if diameter <= 0 {
			return 0, model.InvalidInput("diameter", "hexagon requires an across-corner diameter greater than zero")
		}
		r := diameter / 2
		return hexAreaFactor * r * r, nil
	case model.ShapeRectangle:
		if width <= 0 {
			return 0, model.InvalidInput("width", "rectangle requires a width greater than zero")
		}
		if height <= 0 {
			return 0, model.InvalidInput("height", "rectangle requires a height greater than zero")
		}
		return width * height, nil
	default:
		return 0, model.UnknownShape(string(shape))
	}
}
