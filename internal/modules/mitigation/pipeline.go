package mitigation

import (
	"math"

	"github.com/fairlens/fairlens/internal/domain"
)

// RunPipeline applies the four-stage reduction to a baseline risk on
// the absolute risk-point scale.
//
// Stages 1-3 apply multiplicatively:
//
//	afterDetection = baseline * (1 - transparency)
//	afterRemedy    = afterDetection * (1 - remedy)
//	afterConduct   = afterRemedy * (1 - conduct)
//
// The focus stage then scales the total reduction achieved so far:
//
//	final = baseline - (baseline - afterConduct) * focusMultiplier
//
// clamped at 0 so amplified reductions can never produce a negative
// managed risk. Every StageBreakdown field is always populated.
func RunPipeline(baseline, transparency, remedy, conduct, focusMultiplier float64) domain.StageBreakdown {
	baseline = sanitizeBaseline(baseline)
	transparency = clampFraction(transparency)
	remedy = clampFraction(remedy)
	conduct = clampFraction(conduct)
	if math.IsNaN(focusMultiplier) || math.IsInf(focusMultiplier, 0) || focusMultiplier < 1 {
		focusMultiplier = 1
	}

	afterDetection := baseline * (1 - transparency)
	afterRemedy := afterDetection * (1 - remedy)
	afterConduct := afterRemedy * (1 - conduct)
	final := baseline - (baseline-afterConduct)*focusMultiplier
	final = math.Max(0, final)

	totalReduction := baseline - final

	stages := [4]domain.StageResult{
		stageResult(domain.StageDetection, baseline, afterDetection, baseline, totalReduction),
		stageResult(domain.StageRemedy, afterDetection, afterRemedy, baseline, totalReduction),
		stageResult(domain.StageConduct, afterRemedy, afterConduct, baseline, totalReduction),
		stageResult(domain.StageFocus, afterConduct, final, baseline, totalReduction),
	}

	return domain.StageBreakdown{
		Baseline:       baseline,
		Stages:         stages,
		Final:          final,
		TotalReduction: totalReduction,
	}
}

func stageResult(stage domain.Stage, prev, value, baseline, totalReduction float64) domain.StageResult {
	reduction := prev - value

	percentOfBaseline := 0.0
	if baseline > 0 {
		percentOfBaseline = reduction / baseline
	}

	shareOfTotal := 0.0
	if totalReduction != 0 {
		shareOfTotal = reduction / totalReduction
	}

	return domain.StageResult{
		Stage:             stage,
		Value:             value,
		Reduction:         reduction,
		PercentOfBaseline: percentOfBaseline,
		ShareOfTotal:      shareOfTotal,
	}
}

func sanitizeBaseline(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampFraction(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
