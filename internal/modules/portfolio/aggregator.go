// Package portfolio manages the selected-country set and combines
// per-country risk scores into a single portfolio baseline.
package portfolio

import "math"

// AggregateBaseline computes the volume-weighted mean risk across the
// selected countries.
//
// ISO codes present in risks but not in selected are ignored. If every
// selected country has zero volume the result falls back to the simple
// arithmetic mean. An empty selection returns 0.
func AggregateBaseline(selected []string, risks map[string]float64, volumes map[string]float64) float64 {
	if len(selected) == 0 {
		return 0
	}

	var weightedSum, volumeSum float64
	var plainSum float64
	n := 0

	for _, iso := range selected {
		risk, ok := risks[iso]
		if !ok || math.IsNaN(risk) || math.IsInf(risk, 0) {
			continue
		}
		vol := volumes[iso]
		if math.IsNaN(vol) || math.IsInf(vol, 0) || vol < 0 {
			vol = 0
		}
		weightedSum += risk * vol
		volumeSum += vol
		plainSum += risk
		n++
	}

	if n == 0 {
		return 0
	}
	if volumeSum <= 0 {
		return plainSum / float64(n)
	}
	return weightedSum / volumeSum
}
