package portfolio

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ConcentrationFactorMax bounds the factor so extreme outlier
// portfolios cannot drive the focus multiplier toward its own cap on
// dispersion alone.
const ConcentrationFactorMax = 2.5

// ConcentrationFactor measures how unevenly risk is distributed across
// the selected countries: 1 means evenly spread, larger means a few
// countries carry most of the risk.
//
// The factor is 1 plus the volume-weighted coefficient of variation of
// the per-country risks, capped at ConcentrationFactorMax. Portfolios
// with fewer than two countries, or zero mean risk, report 1.
func ConcentrationFactor(selected []string, risks map[string]float64, volumes map[string]float64) float64 {
	if len(selected) < 2 {
		return 1
	}

	xs := make([]float64, 0, len(selected))
	ws := make([]float64, 0, len(selected))
	for _, iso := range selected {
		risk, ok := risks[iso]
		if !ok || math.IsNaN(risk) || math.IsInf(risk, 0) {
			continue
		}
		vol := volumes[iso]
		if math.IsNaN(vol) || math.IsInf(vol, 0) || vol <= 0 {
			vol = 1
		}
		xs = append(xs, risk)
		ws = append(ws, vol)
	}
	if len(xs) < 2 {
		return 1
	}

	mean := stat.Mean(xs, ws)
	if mean <= 0 {
		return 1
	}
	stdDev := math.Sqrt(stat.Variance(xs, ws))

	factor := 1 + stdDev/mean
	return math.Min(factor, ConcentrationFactorMax)
}
