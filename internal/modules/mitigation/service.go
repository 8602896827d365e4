package mitigation

import "github.com/fairlens/fairlens/internal/domain"

// ManagedRiskResult bundles everything a caller needs to display the
// effect of a strategy on a baseline risk.
type ManagedRiskResult struct {
	ManagedRisk     float64                   `json:"managed_risk"`
	FocusMultiplier float64                   `json:"focus_multiplier"`
	Breakdown       domain.StageBreakdown     `json:"stage_breakdown"`
	Detection       domain.StageEffectiveness `json:"detection"`
	Remedy          domain.StageEffectiveness `json:"remedy"`
	Conduct         domain.StageEffectiveness `json:"conduct"`
}

// ComputeManagedRisk runs the full transformation: per-stage aggregate
// effectiveness, the staged reduction pipeline, and the focus
// adjustment. Pure function: identical inputs yield identical output.
func ComputeManagedRisk(
	baseline float64,
	strategy domain.Strategy,
	effectiveness domain.EffectivenessVectors,
	focus float64,
	concentrationFactor float64,
) ManagedRiskResult {
	detection := StageEffectiveness(strategy.Coverage, effectiveness.Detection)
	remedy := StageEffectiveness(strategy.Coverage, effectiveness.Remedy)
	conduct := StageEffectiveness(strategy.Coverage, effectiveness.Conduct)

	multiplier := FocusMultiplier(focus, concentrationFactor)

	breakdown := RunPipeline(baseline, detection.Overall, remedy.Overall, conduct.Overall, multiplier)

	return ManagedRiskResult{
		ManagedRisk:     breakdown.Final,
		FocusMultiplier: multiplier,
		Breakdown:       breakdown,
		Detection:       detection,
		Remedy:          remedy,
		Conduct:         conduct,
	}
}
