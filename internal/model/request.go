package model

// RodForm is a rod request as entered by a user: a material key plus the
// dimensions, with optional overrides for anything the catalog or the
// defaults would otherwise supply.
type RodForm struct {
	MaterialKey   string  `json:"materialKey"`
	Shape         string  `json:"shape"`
	Diameter      float64 `json:"diameter,omitempty"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	ProductLength float64 `json:"productLength"`
	Quantity      int     `json:"quantity"`
	CuttingLoss   float64 `json:"cuttingLoss"`

	HeadCut           *float64 `json:"headCut,omitempty"`
	TailCut           *float64 `json:"tailCut,omitempty"`
	StandardBarLength *float64 `json:"standardBarLength,omitempty"`
	MaterialPrice     *float64 `json:"materialPrice,omitempty"`

	ActualProductWeight *float64 `json:"actualProductWeight,omitempty"` // g per piece
	RecoveryRatio       *float64 `json:"recoveryRatio,omitempty"`
	ScrapUnitPrice      *float64 `json:"scrapUnitPrice,omitempty"`

	Order OrderMeta `json:"order"`
}

// PlateForm is a plate request as entered by a user.
type PlateForm struct {
	MaterialKey    string   `json:"materialKey"`
	Thickness      float64  `json:"plateThickness"`
	Width          float64  `json:"plateWidth"`
	Length         float64  `json:"plateLength"`
	Quantity       int      `json:"quantity"`
	PlateUnitPrice *float64 `json:"plateUnitPrice,omitempty"`

	Order OrderMeta `json:"order"`
}

// BuildRodSpec resolves a form against a material snapshot and the user
// defaults. The catalog density is converted to kg/m³ here and nowhere else.
func BuildRodSpec(form RodForm, mat MaterialDefaults, defaults DefaultsConfig) (RodSpec, error) {
	shape, err := ParseShape(form.Shape)
	if err != nil {
		return RodSpec{}, err
	}

	spec := RodSpec{
		Shape:             shape,
		Diameter:          form.Diameter,
		Width:             form.Width,
		Height:            form.Height,
		ProductLength:     form.ProductLength,
		Quantity:          form.Quantity,
		CuttingLoss:       form.CuttingLoss,
		StandardBarLength: orDefault(form.StandardBarLength, mat.StandardBarLength),
		MaterialDensity:   GPerCm3ToKgPerM3(mat.Density),
		MaterialPrice:     orDefault(form.MaterialPrice, mat.PriceFor(FormRod, defaults.EnablePlatePrice)),
	}
	defaults.ApplyTo(&spec)
	if form.HeadCut != nil {
		spec.HeadCut = *form.HeadCut
	}
	if form.TailCut != nil {
		spec.TailCut = *form.TailCut
	}

	// Scrap is driven by the measured part weight; ratio and price fall back
	// to the defaults and the catalog.
	if form.ActualProductWeight != nil {
		spec.ActualProductWeight = Float(*form.ActualProductWeight)
		spec.RecoveryRatio = Float(orDefault(form.RecoveryRatio, defaults.RecoveryRatio))
		spec.ScrapUnitPrice = Float(orDefault(form.ScrapUnitPrice, mat.ScrapUnitPrice))
	}
	return spec, nil
}

// BuildPlateSpec resolves a plate form against a material snapshot.
func BuildPlateSpec(form PlateForm, mat MaterialDefaults, defaults DefaultsConfig) PlateSpec {
	return PlateSpec{
		Thickness:       form.Thickness,
		Width:           form.Width,
		Length:          form.Length,
		Quantity:        form.Quantity,
		MaterialDensity: GPerCm3ToKgPerM3(mat.Density),
		PlateUnitPrice:  orDefault(form.PlateUnitPrice, mat.PriceFor(FormPlate, defaults.EnablePlatePrice)),
	}
}

func orDefault(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
