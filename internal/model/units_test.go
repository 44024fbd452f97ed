package model

import (
	"math"
	"testing"
)

func TestDensityConversionRoundTrip(t *testing.T) {
	for _, gcm3 := range []float64{2.7, 7.85, 8.5, 19.3} {
		kgm3 := GPerCm3ToKgPerM3(gcm3)
		if kgm3 != gcm3*1000 {
			t.Errorf("GPerCm3ToKgPerM3(%v) = %v", gcm3, kgm3)
		}
		if back := KgPerM3ToGPerCm3(kgm3); math.Abs(back-gcm3) > 1e-12 {
			t.Errorf("round trip of %v g/cm³ gave %v", gcm3, back)
		}
	}
}

func TestMassKg(t *testing.T) {
	// 1000 cm³ of steel at 7850 kg/m³ weighs 7.85 kg.
	got := MassKg(1_000_000, 7850)
	if math.Abs(got-7.85) > 1e-12 {
		t.Errorf("expected 7.85 kg, got %v", got)
	}
	if MassKg(0, 7850) != 0 {
		t.Error("zero volume should weigh nothing")
	}
}

func TestGramsKg(t *testing.T) {
	if GramsToKg(1500) != 1.5 {
		t.Errorf("GramsToKg(1500) = %v", GramsToKg(1500))
	}
	if KgToGrams(0.25) != 250 {
		t.Errorf("KgToGrams(0.25) = %v", KgToGrams(0.25))
	}
}

func TestRoundCurrency(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{53947.0459, 53947.05},
		{0.005, 0.01},
		{-0.005, -0.01},
		{10990, 10990},
	}
	for _, tt := range tests {
		if got := RoundCurrency(tt.in); got != tt.want {
			t.Errorf("RoundCurrency(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := RoundTo(91.479820627, 3); got != 91.48 {
		t.Errorf("RoundTo 3 places = %v", got)
	}
}
