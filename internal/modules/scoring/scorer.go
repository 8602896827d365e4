// Package scoring converts raw country index values and user weights
// into a single 0-100 labour-rights risk score.
package scoring

import (
	"math"

	"github.com/fairlens/fairlens/internal/domain"
)

// Index scale bounds used for normalization. Each raw index is mapped
// onto a common 0-100 risk direction where higher = riskier. CPI,
// freedom and rule-of-law run "high = good" on their native scales and
// are inverted.
const (
	itucMin = 1.0 // Best rating
	itucMax = 5.5 // Worst rating ("5+" in source data)

	cpiMax = 100.0 // CPI 100 = cleanest, lowest risk

	freedomMax = 100.0 // Freedom 100 = most free, lowest risk

	ruleOfLawMax = 1.0 // WJP 1.0 = strongest, lowest risk

	// Prevalence per 1000 population at or above which the modern
	// slavery component saturates at maximum risk.
	slaveryMax = 40.0
)

// indexRisk is one normalized index component paired with its weight.
type indexRisk struct {
	risk   float64 // 0-100, higher = riskier
	weight float64
	valid  bool // False when the raw value is non-finite
}

// ScoreCountry computes the weighted baseline risk score for one
// country. Deterministic and side-effect-free.
//
// Missing or non-finite raw values contribute nothing and their weight
// is removed from the effective weight sum, so sparse data does not
// silently dilute the score. A zero effective weight sum falls back to
// equal weighting across the valid components.
func ScoreCountry(c domain.Country, w domain.WeightVector) float64 {
	components := []indexRisk{
		{risk: normalizeLabourRights(c.LabourRights), weight: clampWeight(w.LabourRights), valid: isFinite(c.LabourRights)},
		{risk: normalizeInverted(c.Corruption, cpiMax), weight: clampWeight(w.Corruption), valid: isFinite(c.Corruption)},
		{risk: normalizeInverted(c.Freedom, freedomMax), weight: clampWeight(w.Freedom), valid: isFinite(c.Freedom)},
		{risk: normalizeInverted(c.RuleOfLaw*100, ruleOfLawMax*100), weight: clampWeight(w.RuleOfLaw), valid: isFinite(c.RuleOfLaw)},
		{risk: normalizeSlavery(c.ModernSlavery), weight: clampWeight(w.ModernSlavery), valid: isFinite(c.ModernSlavery)},
	}

	var weightSum float64
	validCount := 0
	for _, comp := range components {
		if comp.valid {
			weightSum += comp.weight
			validCount++
		}
	}

	if validCount == 0 {
		return 0
	}

	// Zero weight sum: fall back to equal weighting over valid components
	if weightSum <= 0 {
		var sum float64
		for _, comp := range components {
			if comp.valid {
				sum += comp.risk
			}
		}
		return clampScore(sum / float64(validCount))
	}

	var weighted float64
	for _, comp := range components {
		if comp.valid {
			weighted += comp.risk * comp.weight
		}
	}
	return clampScore(weighted / weightSum)
}

// normalizeLabourRights maps the ITUC rating (1 best .. 5.5 worst)
// onto 0-100 risk.
func normalizeLabourRights(rating float64) float64 {
	if !isFinite(rating) {
		return 0
	}
	r := (rating - itucMin) / (itucMax - itucMin) * 100
	return clampScore(r)
}

// normalizeInverted maps a "high = good" index onto 0-100 risk.
func normalizeInverted(value, max float64) float64 {
	if !isFinite(value) || max <= 0 {
		return 0
	}
	r := (1 - value/max) * 100
	return clampScore(r)
}

// normalizeSlavery maps prevalence per 1000 onto 0-100 risk, saturating
// at slaveryMax.
func normalizeSlavery(prevalence float64) float64 {
	if !isFinite(prevalence) {
		return 0
	}
	r := prevalence / slaveryMax * 100
	return clampScore(r)
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// clampWeight clamps a user weight to [0,100]. Non-finite input (a
// field cleared mid-edit) clamps to 0 rather than failing.
func clampWeight(w float64) float64 {
	if !isFinite(w) {
		return 0
	}
	return math.Max(0, math.Min(100, w))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
