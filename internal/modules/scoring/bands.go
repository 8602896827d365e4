package scoring

import "github.com/fairlens/fairlens/internal/domain"

// Risk band thresholds on the 0-100 score scale.
const (
	BandLowMax    = 33.0 // score < 33 is Low
	BandMediumMax = 66.0 // 33 <= score <= 66 is Medium, above is High
)

// Band colors used by presentation layers.
const (
	ColorLow    = "#2e7d32"
	ColorMedium = "#f9a825"
	ColorHigh   = "#c62828"
)

// RiskBand classifies a score into Low / Medium / High.
func RiskBand(score float64) domain.RiskBand {
	switch {
	case score < BandLowMax:
		return domain.BandLow
	case score <= BandMediumMax:
		return domain.BandMedium
	default:
		return domain.BandHigh
	}
}

// RiskColor returns the display color for a score's band.
func RiskColor(score float64) string {
	switch RiskBand(score) {
	case domain.BandLow:
		return ColorLow
	case domain.BandMedium:
		return ColorMedium
	default:
		return ColorHigh
	}
}
