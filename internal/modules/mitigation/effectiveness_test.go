package mitigation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairlens/fairlens/internal/domain"
)

func TestStageEffectiveness_SingleTool(t *testing.T) {
	var coverage, effectiveness [domain.NumTools]float64
	coverage[domain.ToolContinuousWorkerVoice] = 100
	effectiveness[domain.ToolContinuousWorkerVoice] = 90

	result := StageEffectiveness(coverage, effectiveness)
	assert.InDelta(t, 0.9, result.Overall, 1e-9)
	assert.InDelta(t, 0.9, result.PerTool[0].Contribution, 1e-9)
	assert.InDelta(t, 1.0, result.PerTool[0].Share, 1e-9)
}

func TestStageEffectiveness_NoisyOrComposition(t *testing.T) {
	var coverage, effectiveness [domain.NumTools]float64
	// Two tools, each contributing 0.5: 0.5 + 0.5*0.5 = 0.75
	coverage[0], effectiveness[0] = 100, 50
	coverage[1], effectiveness[1] = 100, 50

	result := StageEffectiveness(coverage, effectiveness)
	assert.InDelta(t, 0.75, result.Overall, 1e-9)
	assert.InDelta(t, 0.5, result.PerTool[0].Share, 1e-9)
	assert.InDelta(t, 0.5, result.PerTool[1].Share, 1e-9)
}

func TestStageEffectiveness_CapAtNinety(t *testing.T) {
	var coverage, effectiveness [domain.NumTools]float64
	for i := 0; i < domain.NumTools; i++ {
		coverage[i] = 100
		effectiveness[i] = 100
	}

	result := StageEffectiveness(coverage, effectiveness)
	assert.InDelta(t, EffectivenessCap, result.Overall, 1e-9)
	assert.LessOrEqual(t, result.Overall, 0.9)
}

func TestStageEffectiveness_ZeroInputs(t *testing.T) {
	var zero [domain.NumTools]float64
	result := StageEffectiveness(zero, zero)
	assert.Equal(t, 0.0, result.Overall)
	for _, pt := range result.PerTool {
		assert.Equal(t, 0.0, pt.Contribution)
		assert.Equal(t, 0.0, pt.Share)
	}
}

func TestStageEffectiveness_ClampsOutOfRange(t *testing.T) {
	var coverage, effectiveness [domain.NumTools]float64
	coverage[0], effectiveness[0] = 250, -40
	coverage[1], effectiveness[1] = math.NaN(), 80

	result := StageEffectiveness(coverage, effectiveness)
	assert.False(t, math.IsNaN(result.Overall))
	assert.Equal(t, 0.0, result.Overall)
	assert.Equal(t, 100.0, result.PerTool[0].Coverage)
	assert.Equal(t, 0.0, result.PerTool[0].Effectiveness)
	assert.Equal(t, 0.0, result.PerTool[1].Coverage)
}

func TestStageEffectiveness_MonotoneInCoverage(t *testing.T) {
	var coverage, effectiveness [domain.NumTools]float64
	for i := 0; i < domain.NumTools; i++ {
		coverage[i] = 40
		effectiveness[i] = 50
	}

	base := StageEffectiveness(coverage, effectiveness).Overall
	for i := 0; i < domain.NumTools; i++ {
		bumped := coverage
		bumped[i] += 20
		got := StageEffectiveness(bumped, effectiveness).Overall
		assert.GreaterOrEqual(t, got, base, "tool %d", i)
	}
}

func TestFocusMultiplier(t *testing.T) {
	tests := []struct {
		name          string
		focus         float64
		concentration float64
		want          float64
	}{
		{"no focus", 0, 2.0, 1.0},
		{"even portfolio", 1, 1.0, 1.0},
		{"half focus", 0.5, 2.0, 1 + 0.5*1.0*FocusScale},
		{"full focus", 1, 2.0, 1 + 1.0*1.0*FocusScale},
		{"saturates", 1, 10.0, FocusMultiplierMax},
		{"focus clamped high", 5, 2.0, 1 + 1.0*1.0*FocusScale},
		{"focus clamped low", -1, 2.0, 1.0},
		{"concentration below one", 1, 0.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FocusMultiplier(tt.focus, tt.concentration), 1e-9)
		})
	}
}

func TestFocusMultiplier_AlwaysAtLeastOne(t *testing.T) {
	for _, focus := range []float64{0, 0.3, 1, math.NaN()} {
		for _, conc := range []float64{0, 1, 2, 100, math.Inf(1)} {
			m := FocusMultiplier(focus, conc)
			assert.GreaterOrEqual(t, m, 1.0)
			assert.LessOrEqual(t, m, FocusMultiplierMax)
		}
	}
}
