package model

// CalculationResult is the outcome of one rod or plate calculation.
//
// StockWeightKg is the weight of raw stock purchased: every bar of standard
// length for rods, every plate for plates. ProductWeightKg is the nominal
// weight of the finished pieces computed from geometry. For plates the two
// are equal because plates carry no off-cut accounting.
type CalculationResult struct {
	Form    StockForm `json:"form"`
	IsPlate bool      `json:"isPlate"`

	// Rod only. Omitted for plates rather than reusing quantity as a bar count.
	BarsNeeded        int     `json:"barsNeeded,omitempty"`
	PiecesPerBar      int     `json:"piecesPerBar,omitempty"`
	UnitLength        float64 `json:"unitLength,omitempty"`        // mm, product length + cutting loss
	UsableBarLength   float64 `json:"usableBarLength,omitempty"`   // mm, bar length - head - tail
	StandardBarLength float64 `json:"standardBarLength,omitempty"` // mm
	CrossSectionArea  float64 `json:"crossSectionArea,omitempty"`  // mm²

	Quantity        int     `json:"quantity"`
	StockWeightKg   float64 `json:"stockWeightKg"`
	ProductWeightKg float64 `json:"productWeightKg"`
	MaterialCost    float64 `json:"materialCost"`
	CostPerPiece    float64 `json:"costPerPiece"`
	UtilizationRate float64 `json:"utilizationRate"` // %
	Wastage         float64 `json:"wastage"`         // %

	// Present only when scrap recovery is active. A nil value means
	// "not computed", which is different from a computed zero.
	ActualProductWeightKg *float64 `json:"actualProductWeightKg,omitempty"`
	ScrapWeightKg         *float64 `json:"scrapWeight,omitempty"`
	ScrapSavings          *float64 `json:"scrapSavings,omitempty"`
	RealCost              *float64 `json:"realCost,omitempty"`

	Warnings    []ValidationWarning `json:"warnings"`
	Suggestions []string            `json:"suggestions"`
}

// ScrapActive reports whether the scrap adjustment was applied.
func (r CalculationResult) ScrapActive() bool {
	return r.ScrapWeightKg != nil && r.ScrapSavings != nil && r.RealCost != nil
}

// EffectiveCost is the real cost when scrap applies, else the material cost.
func (r CalculationResult) EffectiveCost() float64 {
	if r.RealCost != nil {
		return *r.RealCost
	}
	return r.MaterialCost
}

// ScrapAdjustment is the output of the scrap adjuster. The three values are
// always computed together.
type ScrapAdjustment struct {
	ActualProductWeightKg float64 `json:"totalActualProductWeight"`
	ScrapWeightKg         float64 `json:"scrapWeight"`
	ScrapSavings          float64 `json:"scrapSavings"`
	RealCost              float64 `json:"realCost"`
}

// ScrapSpec is a standalone scrap recomputation request against an already
// computed rod result.
type ScrapSpec struct {
	TotalWeight         float64  `json:"totalWeight"`                   // kg, prior result weight; the stock weight when MaterialTotalWeight is absent
	MaterialTotalWeight *float64 `json:"materialTotalWeight,omitempty"` // kg, takes precedence over TotalWeight
	TotalCost           float64  `json:"totalCost"`
	Quantity            int      `json:"quantity"`
	ActualProductWeight float64  `json:"actualProductWeight"` // g per piece
	RecoveryRatio       float64  `json:"recoveryRatio"`       // %
	ScrapUnitPrice      float64  `json:"scrapUnitPrice"`      // per kg
}

// Active reports whether all three scrap inputs are set.
func (s ScrapSpec) Active() bool {
	return s.ActualProductWeight > 0 && s.RecoveryRatio > 0 && s.ScrapUnitPrice > 0
}

// StockWeight returns the stock weight the scrap is measured against.
func (s ScrapSpec) StockWeight() float64 {
	if s.MaterialTotalWeight != nil && *s.MaterialTotalWeight > 0 {
		return *s.MaterialTotalWeight
	}
	return s.TotalWeight
}

// ScrapResult is the response of a standalone scrap recomputation.
type ScrapResult struct {
	ScrapWeight              float64             `json:"scrapWeight"`
	ScrapSavings             float64             `json:"scrapSavings"`
	RealCost                 float64             `json:"realCost"`
	UnitCost                 float64             `json:"unitCost"`
	UpdatedTotalWeight       *float64            `json:"updatedTotalWeight,omitempty"`
	TotalActualProductWeight *float64            `json:"totalActualProductWeight,omitempty"`
	ScrapRatio               float64             `json:"scrapRatio"`       // % of stock weight
	CostSavingsRatio         float64             `json:"costSavingsRatio"` // % of total cost
	Warnings                 []ValidationWarning `json:"warnings"`
}
