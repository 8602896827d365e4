// Package budget converts per-tool cost assumptions and a coverage
// vector into annual external and internal programme cost.
package budget

import (
	"math"

	"github.com/fairlens/fairlens/internal/domain"
)

// Analyze computes the annual budget for a strategy.
//
// Per tool:
//
//	suppliersUsingTool = ceil(supplierCount * coverage/100)
//	externalCost       = annualProgrammeCost * coverage/100 + suppliersUsingTool * perSupplierCost
//	internal costs     = suppliersUsingTool * hours * hourlyRate
//
// Monetary inputs are clamped to non-negative and coverage to [0,100];
// a non-positive supplier count yields a zero cost-per-supplier rather
// than a division blowup.
func Analyze(costs domain.CostAssumptions, strategy domain.Strategy) domain.BudgetSummary {
	supplierCount := costs.SupplierCount
	if supplierCount < 0 {
		supplierCount = 0
	}
	hourlyRate := clampMoney(costs.HourlyRate)

	var summary domain.BudgetSummary
	for i := 0; i < domain.NumTools; i++ {
		tc := costs.Tools[i]
		coverage := clampPercent(strategy.Coverage[i])
		ratio := coverage / 100

		suppliers := int(math.Ceil(float64(supplierCount) * ratio))

		external := clampMoney(tc.AnnualProgrammeCost)*ratio + float64(suppliers)*clampMoney(tc.PerSupplierCost)
		detection := float64(suppliers) * clampHours(tc.DetectionHours) * hourlyRate
		remedy := float64(suppliers) * clampHours(tc.RemedyHours) * hourlyRate

		summary.PerTool[i] = domain.ToolBudget{
			Tool:               domain.Tool(i),
			Name:               domain.Tool(i).Name(),
			SuppliersUsingTool: suppliers,
			ExternalCost:       external,
			DetectionInternal:  detection,
			RemedyInternal:     remedy,
			Total:              external + detection + remedy,
		}

		summary.TotalExternal += external
		summary.TotalInternal += detection + remedy
	}

	summary.TotalBudget = summary.TotalExternal + summary.TotalInternal
	if supplierCount > 0 {
		summary.CostPerSupplier = summary.TotalBudget / float64(supplierCount)
	}

	return summary
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func clampMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampHours(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
