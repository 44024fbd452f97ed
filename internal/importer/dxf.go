package importer

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/matcalc/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// dxfTolerance is the distance (mm) under which two points are the same.
const dxfTolerance = 0.01

// ErrNoSection is returned when a drawing holds no recognizable bar profile.
var ErrNoSection = errors.New("no recognizable cross-section")

// Section is a bar cross-section read from a drawing.
type Section struct {
	Shape    model.Shape `json:"shape"`
	Diameter float64     `json:"diameter,omitempty"`
	Width    float64     `json:"width,omitempty"`
	Height   float64     `json:"height,omitempty"`
}

type point struct{ x, y float64 }

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into a closed outline.
type segment struct {
	start point
	end   point
}

// ImportSectionDXF reads the first usable cross-section from a DXF file.
func ImportSectionDXF(path string) (Section, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return Section{}, fmt.Errorf("cannot open DXF file: %w", err)
	}
	return DetectSection(drawing.Entities())
}

// DetectSection classifies drawing entities as a bar profile:
//   - the first CIRCLE is a round bar with diameter 2r;
//   - a closed outline with four axis-aligned corners is a square or rectangle;
//   - a closed outline with six corners equidistant from the centroid is a
//     hexagon whose diameter is the across-corner distance.
//
// Closed outlines come from LWPOLYLINEs or from LINEs chained end to end.
func DetectSection(entities []entity.Entity) (Section, error) {
	if len(entities) == 0 {
		return Section{}, fmt.Errorf("%w: drawing contains no entities", ErrNoSection)
	}

	var outlines [][]point
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.Circle:
			if e.Radius > 0 {
				return Section{Shape: model.ShapeCircle, Diameter: 2 * e.Radius}, nil
			}
		case *entity.LwPolyline:
			outline := make([]point, 0, len(e.Vertices))
			for _, v := range e.Vertices {
				outline = append(outline, point{v[0], v[1]})
			}
			outlines = append(outlines, outline)
		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}
	if loop := chainSegments(segments); loop != nil {
		outlines = append(outlines, loop)
	}

	var lastErr error
	for _, outline := range outlines {
		sec, err := classifyOutline(dedupeClosing(outline))
		if err == nil {
			return sec, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return Section{}, lastErr
	}
	return Section{}, fmt.Errorf("%w: no circle or closed outline found", ErrNoSection)
}

// dedupeClosing drops a final vertex that repeats the first one.
func dedupeClosing(o []point) []point {
	if len(o) > 1 && pointsClose(o[0], o[len(o)-1]) {
		return o[:len(o)-1]
	}
	return o
}

func classifyOutline(o []point) (Section, error) {
	switch len(o) {
	case 4:
		return classifyQuad(o)
	case 6:
		return classifyHexagon(o)
	default:
		return Section{}, fmt.Errorf("%w: outline with %d corners", ErrNoSection, len(o))
	}
}

func classifyQuad(o []point) (Section, error) {
	for i := range o {
		j := (i + 1) % len(o)
		dx := math.Abs(o[j].x - o[i].x)
		dy := math.Abs(o[j].y - o[i].y)
		if dx > dxfTolerance && dy > dxfTolerance {
			return Section{}, fmt.Errorf("%w: quadrilateral is not axis-aligned", ErrNoSection)
		}
	}
	minX, minY, maxX, maxY := bounds(o)
	w, h := maxX-minX, maxY-minY
	if w < dxfTolerance || h < dxfTolerance {
		return Section{}, fmt.Errorf("%w: degenerate outline (%.2f x %.2f mm)", ErrNoSection, w, h)
	}
	if math.Abs(w-h) <= dxfTolerance {
		return Section{Shape: model.ShapeSquare, Diameter: w}, nil
	}
	return Section{Shape: model.ShapeRectangle, Width: w, Height: h}, nil
}

func classifyHexagon(o []point) (Section, error) {
	var cx, cy float64
	for _, p := range o {
		cx += p.x
		cy += p.y
	}
	cx /= float64(len(o))
	cy /= float64(len(o))

	r := math.Hypot(o[0].x-cx, o[0].y-cy)
	if r < dxfTolerance {
		return Section{}, fmt.Errorf("%w: degenerate hexagon", ErrNoSection)
	}
	for _, p := range o[1:] {
		if math.Abs(math.Hypot(p.x-cx, p.y-cy)-r) > dxfTolerance {
			return Section{}, fmt.Errorf("%w: hexagon corners are not equidistant from the centre", ErrNoSection)
		}
	}
	return Section{Shape: model.ShapeHexagon, Diameter: 2 * r}, nil
}

func bounds(o []point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range o {
		minX = math.Min(minX, p.x)
		minY = math.Min(minY, p.y)
		maxX = math.Max(maxX, p.x)
		maxY = math.Max(maxY, p.y)
	}
	return minX, minY, maxX, maxY
}

// chainSegments joins segments end to end, starting from the first one, and
// returns the corner points if they form a closed loop. Segments may be
// drawn in either direction.
func chainSegments(segs []segment) []point {
	if len(segs) < 3 {
		return nil
	}
	used := make([]bool, len(segs))
	used[0] = true
	loop := []point{segs[0].start}
	cursor := segs[0].end

	for n := 1; n < len(segs); n++ {
		found := false
		for i, s := range segs {
			if used[i] {
				continue
			}
			switch {
			case pointsClose(s.start, cursor):
				loop = append(loop, cursor)
				cursor = s.end
			case pointsClose(s.end, cursor):
				loop = append(loop, cursor)
				cursor = s.start
			default:
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			break
		}
		if pointsClose(cursor, loop[0]) {
			return loop
		}
	}
	return nil
}

func pointsClose(a, b point) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= dxfTolerance
}
