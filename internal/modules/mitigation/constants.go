// Package mitigation models how an HRDD tool mix reduces baseline
// labour-rights risk through a staged pipeline.
package mitigation

// Model constants. These are fixed model parameters, not tunables.
const (
	// EffectivenessCap bounds the aggregate per-stage effectiveness.
	// However many tools overlap, some risk stays hidden.
	EffectivenessCap = 0.90

	// FocusScale converts (concentration - 1) into focus-multiplier
	// gain per unit of focus.
	FocusScale = 1.2

	// FocusMultiplierMax saturates the focus multiplier so extreme
	// concentration cannot amplify reductions without bound.
	FocusMultiplierMax = 3.0
)
