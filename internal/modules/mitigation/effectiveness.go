package mitigation

import (
	"math"

	"github.com/fairlens/fairlens/internal/domain"
)

// StageEffectiveness combines per-tool coverage and effectiveness into
// one aggregate stage effect.
//
// Each tool contributes coverage/100 * effectiveness/100. Tools reach
// overlapping supplier subsets, so contributions compose like the
// probability of detection by at least one tool:
//
//	aggregate = aggregate + (1 - aggregate) * contribution
//
// iterating tools in canonical order. The result is capped at
// EffectivenessCap. The same function serves the detection, remedy and
// conduct stages depending on which effectiveness vector is passed.
func StageEffectiveness(coverage, effectiveness [domain.NumTools]float64) domain.StageEffectiveness {
	perTool := make([]domain.ToolContribution, domain.NumTools)

	var aggregate, rawSum float64
	for i := 0; i < domain.NumTools; i++ {
		cov := clampPercent(coverage[i])
		eff := clampPercent(effectiveness[i])
		contribution := (cov / 100) * (eff / 100)

		aggregate += (1 - aggregate) * contribution
		rawSum += contribution

		perTool[i] = domain.ToolContribution{
			Tool:          domain.Tool(i),
			Name:          domain.Tool(i).Name(),
			Coverage:      cov,
			Effectiveness: eff,
			Contribution:  contribution,
		}
	}

	// Attribute shares from raw contributions: the sequential
	// composition makes marginal attribution order-dependent, raw
	// shares keep reporting stable.
	if rawSum > 0 {
		for i := range perTool {
			perTool[i].Share = perTool[i].Contribution / rawSum
		}
	}

	return domain.StageEffectiveness{
		Overall: math.Min(aggregate, EffectivenessCap),
		PerTool: perTool,
	}
}

// clampPercent clamps a percentage to [0,100]; non-finite input clamps
// to 0 (a field cleared mid-edit must not poison the pipeline).
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
