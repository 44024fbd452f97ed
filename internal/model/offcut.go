package model

// MinReusableRemnant is the shortest bar remnant (mm) worth keeping for a
// later job. Anything shorter is scrap.
const MinReusableRemnant = 300.0

// BarCut describes how one standard bar is consumed.
type BarCut struct {
	Index      int     `json:"index"`      // 1-based bar number
	Pieces     int     `json:"pieces"`     // Finished pieces cut from this bar
	UsedLength float64 `json:"usedLength"` // Pieces including kerf (mm)
	HeadCut    float64 `json:"headCut"`    // mm
	TailCut    float64 `json:"tailCut"`    // mm
	Remnant    float64 `json:"remnant"`    // Leftover usable length after the last piece (mm)
	Reusable   bool    `json:"reusable"`   // Remnant >= MinReusableRemnant
}

// CutPlan is the greedy bar-by-bar layout for a rod calculation.
type CutPlan struct {
	StandardBarLength float64  `json:"standardBarLength"`
	UnitLength        float64  `json:"unitLength"`
	PiecesPerBar      int      `json:"piecesPerBar"`
	Bars              []BarCut `json:"bars"`
}

// TotalPieces returns the number of finished pieces across all bars.
func (p CutPlan) TotalPieces() int {
	total := 0
	for _, b := range p.Bars {
		total += b.Pieces
	}
	return total
}

// TotalRemnant returns the summed remnant length (mm).
func (p CutPlan) TotalRemnant() float64 {
	var total float64
	for _, b := range p.Bars {
		total += b.Remnant
	}
	return total
}

// ReusableRemnants returns the bars whose remnant is long enough to reuse.
func (p CutPlan) ReusableRemnants() []BarCut {
	var out []BarCut
	for _, b := range p.Bars {
		if b.Reusable {
			out = append(out, b)
		}
	}
	return out
}
