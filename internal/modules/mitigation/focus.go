package mitigation

import "math"

// FocusMultiplier converts the focus ratio and the portfolio's
// concentration factor into a multiplicative boost for the pipeline's
// final stage. Concentrating the same tools on higher-risk entities
// increases their realized effect.
//
//	multiplier = 1 + focus*(concentration-1)*FocusScale
//
// The result is always >= 1 (exactly 1 when focus is 0 or risk is
// evenly spread) and saturates at FocusMultiplierMax.
func FocusMultiplier(focus, concentrationFactor float64) float64 {
	if math.IsNaN(focus) || math.IsInf(focus, 0) {
		focus = 0
	}
	focus = math.Max(0, math.Min(1, focus))

	if math.IsNaN(concentrationFactor) || math.IsInf(concentrationFactor, 0) || concentrationFactor < 1 {
		concentrationFactor = 1
	}

	multiplier := 1 + focus*(concentrationFactor-1)*FocusScale
	return math.Min(multiplier, FocusMultiplierMax)
}
