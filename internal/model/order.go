package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderMeta is the commercial context a user attaches to a saved calculation.
type OrderMeta struct {
	ProductName       string   `json:"productName,omitempty"`
	Customer          string   `json:"customer,omitempty"`
	DeliveryUnitPrice *float64 `json:"deliveryUnitPrice,omitempty"`
	DeliveryDate      string   `json:"deliveryDate,omitempty"` // YYYY-MM-DD
}

// OrderRecord is a flattened request+result snapshot kept in order history.
// It is self-describing: every input needed to reproduce the result is stored
// next to the result.
type OrderRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	OrderMeta

	MaterialKey string    `json:"materialKey"`
	Form        StockForm `json:"form"`
	IsPlate     bool      `json:"isPlate"`

	Shape          Shape   `json:"shape,omitempty"`
	Diameter       float64 `json:"diameter,omitempty"`
	Width          float64 `json:"width,omitempty"`
	Height         float64 `json:"height,omitempty"`
	PlateThickness float64 `json:"plateThickness,omitempty"`
	PlateWidth     float64 `json:"plateWidth,omitempty"`
	PlateLength    float64 `json:"plateLength,omitempty"`

	ProductLength     float64 `json:"productLength,omitempty"`
	Quantity          int     `json:"quantity"`
	CuttingLoss       float64 `json:"cuttingLoss,omitempty"`
	HeadCut           float64 `json:"headCut,omitempty"`
	TailCut           float64 `json:"tailCut,omitempty"`
	StandardBarLength float64 `json:"standardBarLength,omitempty"`
	MaterialDensity   float64 `json:"materialDensity"` // kg/m³
	MaterialPrice     float64 `json:"materialPrice"`   // per kg

	BarsNeeded      int      `json:"barsNeeded,omitempty"`
	PiecesPerBar    int      `json:"piecesPerBar,omitempty"`
	StockWeightKg   float64  `json:"stockWeightKg"`
	ProductWeightKg float64  `json:"productWeightKg"`
	MaterialCost    float64  `json:"materialCost"`
	CostPerPiece    float64  `json:"costPerPiece"`
	UtilizationRate float64  `json:"utilizationRate"`
	Wastage         float64  `json:"wastage"`
	ScrapWeightKg   *float64 `json:"scrapWeight,omitempty"`
	ScrapSavings    *float64 `json:"scrapSavings,omitempty"`
	RealCost        *float64 `json:"realCost,omitempty"`
}

// NewRodOrder flattens a rod calculation into an order record.
func NewRodOrder(meta OrderMeta, materialKey string, spec RodSpec, res CalculationResult) OrderRecord {
	rec := newOrder(meta, materialKey, res)
	rec.Shape = spec.Shape
	rec.Diameter = spec.Diameter
	rec.Width = spec.Width
	rec.Height = spec.Height
	rec.ProductLength = spec.ProductLength
	rec.CuttingLoss = spec.CuttingLoss
	rec.HeadCut = spec.HeadCut
	rec.TailCut = spec.TailCut
	rec.StandardBarLength = spec.StandardBarLength
	rec.MaterialDensity = spec.MaterialDensity
	rec.MaterialPrice = spec.MaterialPrice
	rec.BarsNeeded = res.BarsNeeded
	rec.PiecesPerBar = res.PiecesPerBar
	return rec
}

// NewPlateOrder flattens a plate calculation into an order record.
func NewPlateOrder(meta OrderMeta, materialKey string, spec PlateSpec, res CalculationResult) OrderRecord {
	rec := newOrder(meta, materialKey, res)
	rec.PlateThickness = spec.Thickness
	rec.PlateWidth = spec.Width
	rec.PlateLength = spec.Length
	rec.MaterialDensity = spec.MaterialDensity
	rec.MaterialPrice = spec.PlateUnitPrice
	return rec
}

func newOrder(meta OrderMeta, materialKey string, res CalculationResult) OrderRecord {
	rec := OrderRecord{
		ID:              uuid.New().String(),
		Timestamp:       time.Now().UTC(),
		OrderMeta:       meta,
		MaterialKey:     materialKey,
		Form:            res.Form,
		IsPlate:         res.IsPlate,
		Quantity:        res.Quantity,
		StockWeightKg:   res.StockWeightKg,
		ProductWeightKg: res.ProductWeightKg,
		MaterialCost:    RoundCurrency(res.MaterialCost),
		CostPerPiece:    RoundCurrency(res.CostPerPiece),
		UtilizationRate: res.UtilizationRate,
		Wastage:         res.Wastage,
		ScrapWeightKg:   res.ScrapWeightKg,
	}
	if res.ScrapSavings != nil {
		rec.ScrapSavings = Float(RoundCurrency(*res.ScrapSavings))
	}
	if res.RealCost != nil {
		rec.RealCost = Float(RoundCurrency(*res.RealCost))
	}
	return rec
}

// Label returns a short human-readable name for the record.
func (o OrderRecord) Label() string {
	if o.ProductName != "" {
		return o.ProductName
	}
	if o.IsPlate {
		return "Plate " + o.MaterialKey
	}
	return string(o.Shape) + " " + o.MaterialKey
}

// RodSpec rebuilds the rod request stored in the record. Scrap inputs are
// not kept in history, so the rebuilt RodSpec never has scrap recovery active.
func (o OrderRecord) RodSpec() RodSpec {
	return RodSpec{
		Shape:             o.Shape,
		Diameter:          o.Diameter,
		Width:             o.Width,
		Height:            o.Height,
		ProductLength:     o.ProductLength,
		Quantity:          o.Quantity,
		CuttingLoss:       o.CuttingLoss,
		HeadCut:           o.HeadCut,
		TailCut:           o.TailCut,
		StandardBarLength: o.StandardBarLength,
		MaterialDensity:   o.MaterialDensity,
		MaterialPrice:     o.MaterialPrice,
	}
}

// PlateSpec rebuilds the plate request stored in the record.
func (o OrderRecord) PlateSpec() PlateSpec {
	return PlateSpec{
		Thickness:       o.PlateThickness,
		Width:           o.PlateWidth,
		Length:          o.PlateLength,
		Quantity:        o.Quantity,
		MaterialDensity: o.MaterialDensity,
		PlateUnitPrice:  o.MaterialPrice,
	}
}

// Result returns the stored result figures. Advisory warnings are not part
// of history and come back empty.
func (o OrderRecord) Result() CalculationResult {
	return CalculationResult{
		Form:              o.Form,
		IsPlate:           o.IsPlate,
		BarsNeeded:        o.BarsNeeded,
		PiecesPerBar:      o.PiecesPerBar,
		StandardBarLength: o.StandardBarLength,
		Quantity:          o.Quantity,
		StockWeightKg:     o.StockWeightKg,
		ProductWeightKg:   o.ProductWeightKg,
		MaterialCost:      o.MaterialCost,
		CostPerPiece:      o.CostPerPiece,
		UtilizationRate:   o.UtilizationRate,
		Wastage:           o.Wastage,
		ScrapWeightKg:     o.ScrapWeightKg,
		ScrapSavings:      o.ScrapSavings,
		RealCost:          o.RealCost,
		Warnings:          []ValidationWarning{},
		Suggestions:       []string{},
	}
}
