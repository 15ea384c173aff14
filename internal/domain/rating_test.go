package domain

import (
	"math"
	"testing"
)

// ─── Segregation Scoring ────────────────────────────────────────────────────

func TestSegregationScore(t *testing.T) {
	tests := []struct {
		name    string
		dry     float64
		wet     float64
		reject  float64
		want    int
	}{
		{"no reject", 10, 5, 0, 100},
		{"all reject", 0, 0, 5, 0},
		{"half reject", 5, 0, 5, 50},
		{"typical pickup", 10, 5, 1, 94},
		{"zero total", 0, 0, 0, 0},
		{"negative total", -1, -1, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegregationScore(tt.dry, tt.wet, tt.reject)
			if got != tt.want {
				t.Errorf("SegregationScore(%v, %v, %v) = %d, want %d",
					tt.dry, tt.wet, tt.reject, got, tt.want)
			}
		})
	}
}

// ─── Rating Engine ──────────────────────────────────────────────────────────

func TestRateSegregation(t *testing.T) {
	// dry=10, wet=5, reject=1 at score 90:
	// base = 10*1.25 + 5*0.45 - 1*0.75 = 14.0, factor 0.9
	carbon, pcc := RateSegregation(10, 5, 1, 90)
	if !closeTo(carbon, 12.6) {
		t.Errorf("carbon = %v, want 12.6", carbon)
	}
	if !closeTo(pcc, 1.575) {
		t.Errorf("pcc = %v, want 1.575", pcc)
	}
}

func TestRateSegregation_NegativeWeightsClamped(t *testing.T) {
	carbon, pcc := RateSegregation(-10, 5, -1, 100)
	wantCarbon := 5 * WetSavedPerKg
	if !closeTo(carbon, wantCarbon) {
		t.Errorf("carbon = %v, want %v", carbon, wantCarbon)
	}
	if !closeTo(pcc, wantCarbon*PCCPerKgCO2) {
		t.Errorf("pcc = %v, want %v", pcc, wantCarbon*PCCPerKgCO2)
	}
}

func TestRateSegregation_NetNegativeCarbonMintsNothing(t *testing.T) {
	carbon, pcc := RateSegregation(0, 0, 10, 100)
	if carbon >= 0 {
		t.Errorf("carbon = %v, want negative", carbon)
	}
	if pcc != 0 {
		t.Errorf("pcc = %v, want 0", pcc)
	}
}

func TestRateSegregation_ScoreClamped(t *testing.T) {
	overCarbon, _ := RateSegregation(10, 0, 0, 250)
	atCarbon, _ := RateSegregation(10, 0, 0, 100)
	if overCarbon != atCarbon {
		t.Errorf("score 250 carbon = %v, want same as score 100 (%v)", overCarbon, atCarbon)
	}

	underCarbon, underPCC := RateSegregation(10, 0, 0, -5)
	if underCarbon != 0 || underPCC != 0 {
		t.Errorf("score -5 = (%v, %v), want (0, 0)", underCarbon, underPCC)
	}
}

func TestRateReportResolution(t *testing.T) {
	tests := []struct {
		name       string
		hours      float64
		wantCarbon float64
	}{
		{"fast", 10, 3.0},
		{"boundary 24h", 24, 3.0},
		{"medium", 48, 2.0},
		{"boundary 72h", 72, 2.0},
		{"slow", 100, 1.0},
		{"unknown", -1, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carbon, pcc := RateReportResolution(tt.hours)
			if !closeTo(carbon, tt.wantCarbon) {
				t.Errorf("carbon = %v, want %v", carbon, tt.wantCarbon)
			}
			if !closeTo(pcc, tt.wantCarbon*PCCPerKgCO2) {
				t.Errorf("pcc = %v, want %v", pcc, tt.wantCarbon*PCCPerKgCO2)
			}
		})
	}
}

func TestRateHouseholdClassification(t *testing.T) {
	tests := []struct {
		label      string
		wantTokens float64
		wantCarbon float64
	}{
		{"GREEN", 10.0, 80.0},
		{"green", 10.0, 80.0},
		{"YELLOW", 3.0, 24.0},
		{"RED", 0.0, 0.0},
		{"", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			carbon, tokens := RateHouseholdClassification(tt.label)
			if !closeTo(tokens, tt.wantTokens) {
				t.Errorf("tokens = %v, want %v", tokens, tt.wantTokens)
			}
			if !closeTo(carbon, tt.wantCarbon) {
				t.Errorf("carbon = %v, want %v", carbon, tt.wantCarbon)
			}
		})
	}
}

func TestRateTraining(t *testing.T) {
	carbon, pcc := RateTraining(100)
	if !closeTo(carbon, 0.5) {
		t.Errorf("carbon at 100%% = %v, want 0.5", carbon)
	}
	if !closeTo(pcc, 0.5*PCCPerKgCO2) {
		t.Errorf("pcc at 100%% = %v, want %v", pcc, 0.5*PCCPerKgCO2)
	}

	carbon, _ = RateTraining(60)
	if !closeTo(carbon, 0.3) {
		t.Errorf("carbon at 60%% = %v, want 0.3", carbon)
	}

	carbon, pcc = RateTraining(-20)
	if carbon != 0 || pcc != 0 {
		t.Errorf("negative score = (%v, %v), want (0, 0)", carbon, pcc)
	}

	carbon, _ = RateTraining(150)
	if !closeTo(carbon, 0.5) {
		t.Errorf("carbon at 150%% = %v, want 0.5 (clamped)", carbon)
	}
}

func TestRating_Deterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		c1, p1 := RateSegregation(7.3, 2.1, 0.4, 85)
		c2, p2 := RateSegregation(7.3, 2.1, 0.4, 85)
		if c1 != c2 || p1 != p2 {
			t.Fatalf("RateSegregation not deterministic: (%v,%v) vs (%v,%v)", c1, p1, c2, p2)
		}
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}
