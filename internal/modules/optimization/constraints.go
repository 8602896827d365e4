package optimization

import (
	"math"

	"github.com/fairlens/fairlens/internal/domain"
)

// Tolerance for equality-constraint satisfaction checks.
const constraintTol = 1e-6

// activeConstraints resolves the user's constraint switches against the
// current strategy into concrete equality targets.
type activeConstraints struct {
	saqSum        float64 // tools 4+5 must sum to this (100), <0 = inactive
	auditSum      float64 // tools 2+3 must sum to this, <0 = inactive
	auditRelaxed  bool    // audit sum exceeded 100 and was capped
	costReduction float64 // fraction by which audit tool costs shrink
}

func resolveConstraints(current domain.Strategy, c domain.OptimizationConstraints) activeConstraints {
	ac := activeConstraints{saqSum: -1, auditSum: -1}

	if c.SAQConstraintEnabled {
		ac.saqSum = 100
	}

	if c.SocialAuditConstraintEnabled {
		sum := clampPercent(current.Coverage[domain.ToolUnannouncedAudit]) +
			clampPercent(current.Coverage[domain.ToolAnnouncedAudit])
		if sum > 100 {
			sum = 100
			ac.auditRelaxed = true
		}
		ac.auditSum = sum

		reduction := c.SocialAuditCostReduction
		if math.IsNaN(reduction) || math.IsInf(reduction, 0) {
			reduction = 0
		}
		ac.costReduction = math.Max(0, math.Min(100, reduction)) / 100
	}

	return ac
}

// adjustedCosts applies the social-audit cost reduction to the audit
// tools' cost assumptions. Pairing audits with stronger detection tools
// allows lower audit frequency at the same coverage.
func adjustedCosts(costs domain.CostAssumptions, ac activeConstraints) domain.CostAssumptions {
	if ac.auditSum < 0 || ac.costReduction <= 0 {
		return costs
	}

	factor := 1 - ac.costReduction
	for _, tool := range []domain.Tool{domain.ToolUnannouncedAudit, domain.ToolAnnouncedAudit} {
		tc := costs.Tools[tool]
		tc.AnnualProgrammeCost *= factor
		tc.PerSupplierCost *= factor
		costs.Tools[tool] = tc
	}
	return costs
}

// project maps an arbitrary search point onto the feasible set: box
// bounds first, then exact restoration of any active pair-sum
// constraint. The pair split is preserved where possible; a degenerate
// all-zero pair splits evenly.
func project(x [domain.NumTools]float64, ac activeConstraints) [domain.NumTools]float64 {
	for i := range x {
		x[i] = clampPercent(x[i])
	}

	if ac.saqSum >= 0 {
		x[domain.ToolSAQWithEvidence], x[domain.ToolSAQWithoutEvidence] =
			splitPair(x[domain.ToolSAQWithEvidence], x[domain.ToolSAQWithoutEvidence], ac.saqSum)
	}
	if ac.auditSum >= 0 {
		x[domain.ToolUnannouncedAudit], x[domain.ToolAnnouncedAudit] =
			splitPair(x[domain.ToolUnannouncedAudit], x[domain.ToolAnnouncedAudit], ac.auditSum)
	}

	return x
}

// splitPair rescales (a, b) so they sum to target while each stays in
// [0,100]. Assumes 0 <= target <= 200.
func splitPair(a, b, target float64) (float64, float64) {
	sum := a + b
	if sum <= 0 {
		a, b = target/2, target/2
	} else {
		scale := target / sum
		a *= scale
		b *= scale
	}

	// Rescaling can push one side past 100 when the pair is lopsided;
	// shift the excess to the other side.
	if a > 100 {
		b += a - 100
		a = 100
	}
	if b > 100 {
		a += b - 100
		b = 100
	}
	return clampPercent(a), clampPercent(b)
}

// feasible reports whether the allocation satisfies all active
// constraints within tolerance.
func feasible(x [domain.NumTools]float64, ac activeConstraints) bool {
	for _, v := range x {
		if v < -constraintTol || v > 100+constraintTol {
			return false
		}
	}
	if ac.saqSum >= 0 {
		sum := x[domain.ToolSAQWithEvidence] + x[domain.ToolSAQWithoutEvidence]
		if math.Abs(sum-ac.saqSum) > constraintTol {
			return false
		}
	}
	if ac.auditSum >= 0 {
		sum := x[domain.ToolUnannouncedAudit] + x[domain.ToolAnnouncedAudit]
		if math.Abs(sum-ac.auditSum) > constraintTol {
			return false
		}
	}
	return true
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
