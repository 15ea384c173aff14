package domain

import (
	"math"
	"strings"
)

// ─── Emission / Savings Factors ─────────────────────────────────────────────
// kg CO2e per kg of waste, by disposal path.

const (
	DrySavedPerKg      = 1.25 // recycling dry waste
	WetSavedPerKg      = 0.45 // composting wet waste
	RejectEmittedPerKg = 0.75 // landfilled reject waste

	// PCCPerKgCO2 converts CO2e savings into PCC tokens: 1 PCC ≈ 8 kg CO2e.
	PCCPerKgCO2 = 1.0 / 8.0
)

// ─── Segregation Scoring ────────────────────────────────────────────────────

// SegregationScore rates a pickup 0–100 from contamination by weight:
// reject fraction of the total. Non-positive totals score zero.
func SegregationScore(dryKg, wetKg, rejectKg float64) int {
	total := dryKg + wetKg + rejectKg
	if total <= 0 {
		return 0
	}
	contamination := rejectKg / total
	score := 100.0 - contamination*100.0
	return int(math.Round(clamp(score, 0, 100)))
}

// ─── Activity Rating ────────────────────────────────────────────────────────
// Pure, deterministic conversions from activity metrics to
// (carbon_kg, pcc_tokens). Inputs are clamped, never rejected.

// RateSegregation converts a segregation log into carbon savings and tokens.
// Negative weights are treated as zero; the 0–100 quality score scales the
// net carbon linearly. Tokens are minted only for net-positive carbon.
func RateSegregation(dryKg, wetKg, rejectKg float64, score int) (carbonKg, pccTokens float64) {
	dryKg = nonNegative(dryKg)
	wetKg = nonNegative(wetKg)
	rejectKg = nonNegative(rejectKg)

	base := dryKg*DrySavedPerKg + wetKg*WetSavedPerKg - rejectKg*RejectEmittedPerKg
	factor := clamp(float64(score), 0, 100) / 100.0

	carbonKg = base * factor
	pccTokens = math.Max(carbonKg, 0) * PCCPerKgCO2
	return carbonKg, pccTokens
}

// RateReportResolution rewards a resolved waste report by responsiveness.
// Negative hours mean the resolution time is unknown and earn the floor rate.
func RateReportResolution(resolutionHours float64) (carbonKg, pccTokens float64) {
	var base float64
	switch {
	case resolutionHours < 0:
		base = 1.0
	case resolutionHours <= 24:
		base = 3.0
	case resolutionHours <= 72:
		base = 2.0
	default:
		base = 1.0
	}
	return base, base * PCCPerKgCO2
}

// RateHouseholdClassification rewards a household's classification label
// with a flat token amount. Unlike the other activities, the token amount
// is fixed first and the carbon figure derived from it.
func RateHouseholdClassification(label string) (carbonKg, pccTokens float64) {
	switch strings.ToUpper(label) {
	case "GREEN":
		pccTokens = 10.0
	case "YELLOW":
		pccTokens = 3.0
	default:
		pccTokens = 0.0
	}
	carbonKg = pccTokens * 8.0
	return carbonKg, pccTokens
}

// RateTraining rewards a completed training module: up to 0.5 kg CO2e at a
// perfect score, scaled linearly.
func RateTraining(scorePercent float64) (carbonKg, pccTokens float64) {
	scorePercent = clamp(scorePercent, 0, 100)
	carbonKg = 0.5 * (scorePercent / 100.0)
	pccTokens = carbonKg * PCCPerKgCO2
	return carbonKg, pccTokens
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
