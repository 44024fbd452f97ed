package model

// DefaultsConfig holds the user-level defaults that fill a request before it
// reaches the calculators. The calculators never read it directly.
type DefaultsConfig struct {
	HeadCut          float64 `json:"headCut" mapstructure:"head_cut"`                    // mm
	TailCut          float64 `json:"tailCut" mapstructure:"tail_cut"`                    // mm
	RecoveryRatio    float64 `json:"recoveryRatio" mapstructure:"recovery_ratio"`        // % of scrap value realized
	EnablePlatePrice bool    `json:"enablePlatePrice" mapstructure:"enable_plate_price"` // Price plates separately from bars

	// Caller preferences
	AutoCalculate bool `json:"autoCalculate" mapstructure:"auto_calculate"`
	SaveHistory   bool `json:"saveHistory" mapstructure:"save_history"`
}

// FactoryDefaults returns the out-of-the-box defaults.
func FactoryDefaults() DefaultsConfig {
	return DefaultsConfig{
		HeadCut:          20,
		TailCut:          250,
		RecoveryRatio:    100,
		EnablePlatePrice: false,
		AutoCalculate:    true,
		SaveHistory:      true,
	}
}

// ApplyTo fills the head and tail cut of spec with these defaults.
// This is used for imported rows that carry no cut settings of their own.
func (c DefaultsConfig) ApplyTo(spec *RodSpec) {
	spec.HeadCut = c.HeadCut
	spec.TailCut = c.TailCut
}
