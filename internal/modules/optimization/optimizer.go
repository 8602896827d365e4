// Package optimization searches the six-tool coverage space for an
// allocation that maximizes risk reduction under budget and coverage
// constraints.
package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/optimize"

	"github.com/fairlens/fairlens/internal/domain"
	"github.com/fairlens/fairlens/internal/modules/budget"
	"github.com/fairlens/fairlens/internal/modules/mitigation"
)

// Mode selects the optimizer's objective.
type Mode string

const (
	// ModeBudgetNeutral maximizes risk reduction subject to the
	// alternative allocation costing no more than the current one.
	ModeBudgetNeutral Mode = "budget_neutral"
	// ModePerDollar maximizes risk reduction per dollar spent.
	ModePerDollar Mode = "per_dollar"
)

const (
	// maxFuncEvals bounds the search so it can never hang the caller.
	maxFuncEvals = 4000

	penaltyWeight = 1000.0
)

// Inputs carries everything a single optimization run needs. All
// fields are plain data; the run has no side effects.
type Inputs struct {
	Baseline            float64
	Strategy            domain.Strategy
	Effectiveness       domain.EffectivenessVectors
	Focus               float64
	ConcentrationFactor float64
	Costs               domain.CostAssumptions
	Constraints         domain.OptimizationConstraints
	Mode                Mode
}

// Optimizer runs constrained allocation searches.
type Optimizer struct {
	log zerolog.Logger
}

// New creates a new allocation optimizer.
func New(log zerolog.Logger) *Optimizer {
	return &Optimizer{log: log.With().Str("component", "optimizer").Logger()}
}

// Optimize searches for a better coverage allocation. The result never
// violates the active constraints: candidates are projected back onto
// the feasible set before evaluation and verified afterwards. The
// search is fully deterministic for identical inputs.
func (o *Optimizer) Optimize(in Inputs) (*domain.OptimizationResult, error) {
	if in.Mode == "" {
		in.Mode = ModeBudgetNeutral
	}
	baseline := in.Baseline
	if math.IsNaN(baseline) || math.IsInf(baseline, 0) || baseline < 0 {
		baseline = 0
	}

	ac := resolveConstraints(in.Strategy, in.Constraints)
	costs := adjustedCosts(in.Costs, ac)

	currentAlloc := project(in.Strategy.Coverage, ac)
	currentBudget := budget.Analyze(in.Costs, in.Strategy).TotalBudget
	budgetCap := budget.Analyze(costs, domain.Strategy{Coverage: currentAlloc}).TotalBudget

	eval := func(x [domain.NumTools]float64) (reduction, cost float64) {
		result := mitigation.ComputeManagedRisk(
			baseline,
			domain.Strategy{Coverage: x},
			in.Effectiveness,
			in.Focus,
			in.ConcentrationFactor,
		)
		cost = budget.Analyze(costs, domain.Strategy{Coverage: x}).TotalBudget
		return baseline - result.ManagedRisk, cost
	}

	// Objective for the minimizer: negative reduction (or reduction
	// per dollar) plus a quadratic penalty for spending over the cap.
	// Candidates are projected onto the feasible set first, so the
	// equality constraints bind exactly rather than through penalties.
	objective := func(raw []float64) float64 {
		var x [domain.NumTools]float64
		copy(x[:], raw)
		x = project(x, ac)

		reduction, cost := eval(x)

		switch in.Mode {
		case ModePerDollar:
			return -reduction / math.Max(cost, 1)
		default:
			obj := -reduction
			if budgetCap > 0 && cost > budgetCap {
				over := (cost - budgetCap) / budgetCap
				obj += penaltyWeight * over * over
			}
			return obj
		}
	}

	best := currentAlloc
	bestObj := objective(best[:])
	evals := 1

	// Deterministic multi-start: the current allocation plus two fixed
	// exploratory points. The objective is smooth apart from supplier
	// ceils but not convex, so a single start can stall in a shelf.
	starts := [][domain.NumTools]float64{
		currentAlloc,
		project([domain.NumTools]float64{50, 50, 50, 50, 50, 50}, ac),
		project([domain.NumTools]float64{100, 40, 20, 0, 100, 0}, ac),
	}

	for _, start := range starts {
		result, err := optimize.Minimize(
			optimize.Problem{Func: objective},
			start[:],
			&optimize.Settings{FuncEvaluations: maxFuncEvals / (len(starts) + 1)},
			&optimize.NelderMead{},
		)
		if err != nil {
			// A failed start is not fatal: other starts and the
			// polish pass below still produce a usable answer.
			o.log.Debug().Err(err).Msg("optimizer start failed")
			continue
		}
		evals += result.Stats.FuncEvaluations

		var x [domain.NumTools]float64
		copy(x[:], result.X)
		x = project(x, ac)
		if obj := objective(x[:]); obj < bestObj {
			best, bestObj = x, obj
		}
	}

	// Coordinate polish: deterministic axis sweeps with shrinking step
	// to exploit the ceil shelves NelderMead skates over.
	best, bestObj, polishEvals := o.polish(best, bestObj, objective, ac)
	evals += polishEvals

	// The quadratic penalty steers the search but does not guarantee
	// the budget cap; enforce it exactly before returning.
	if in.Mode == ModeBudgetNeutral && budgetCap > 0 {
		if _, cost := eval(best); cost > budgetCap*(1+constraintTol) {
			best = repairBudget(best, currentAlloc, budgetCap, ac, eval)
			bestObj = objective(best[:])
		}
	}

	if !feasible(best, ac) {
		// The projection above should make this unreachable; if the
		// search still overshoots, snap back rather than return an
		// infeasible allocation.
		best = project(best, ac)
		if !feasible(best, ac) {
			return nil, fmt.Errorf("optimizer produced infeasible allocation %v", best)
		}
	}

	// Never hand back something worse than the current allocation.
	if objective(currentAlloc[:]) < bestObj {
		best = currentAlloc
	}

	optimizedReduction, optimizedBudget := eval(best)
	currentReduction, _ := eval(currentAlloc)
	optimizedManaged := baseline - optimizedReduction
	currentManaged := baseline - currentReduction

	result := &domain.OptimizationResult{
		OptimizedAllocation:   best,
		BaselineRisk:          baseline,
		CurrentManagedRisk:    currentManaged,
		OptimizedManagedRisk:  optimizedManaged,
		CurrentBudget:         currentBudget,
		OptimizedBudget:       optimizedBudget,
		SAQConstraintActive:   ac.saqSum >= 0,
		AuditConstraintActive: ac.auditSum >= 0,
		Iterations:            evals,
	}
	if ac.auditRelaxed {
		result.RelaxedConstraints = append(result.RelaxedConstraints,
			"social_audit_coverage_sum capped at 100")
	}

	o.log.Debug().
		Float64("baseline", baseline).
		Float64("current_managed", currentManaged).
		Float64("optimized_managed", optimizedManaged).
		Int("evaluations", evals).
		Msg("Allocation optimization complete")

	return result, nil
}

// polish runs deterministic coordinate sweeps around the incumbent.
func (o *Optimizer) polish(
	x [domain.NumTools]float64,
	obj float64,
	objective func([]float64) float64,
	ac activeConstraints,
) ([domain.NumTools]float64, float64, int) {
	evals := 0
	for _, step := range []float64{20, 10, 5, 1} {
		improved := true
		for improved && evals < maxFuncEvals/4 {
			improved = false
			for i := 0; i < domain.NumTools; i++ {
				for _, delta := range []float64{step, -step} {
					candidate := x
					candidate[i] += delta
					candidate = project(candidate, ac)
					got := objective(candidate[:])
					evals++
					if got < obj-1e-12 {
						x, obj = candidate, got
						improved = true
					}
				}
			}
		}
	}
	return x, obj, evals
}

// repairBudget scales unpinned coverages down until the allocation
// fits the budget cap. If scaling cannot get there (the pinned pairs
// alone may exceed the cap), the current allocation is returned, which
// defines the cap and is feasible by construction.
func repairBudget(
	x, current [domain.NumTools]float64,
	limit float64,
	ac activeConstraints,
	eval func([domain.NumTools]float64) (float64, float64),
) [domain.NumTools]float64 {
	pinned := map[domain.Tool]bool{}
	if ac.saqSum >= 0 {
		pinned[domain.ToolSAQWithEvidence] = true
		pinned[domain.ToolSAQWithoutEvidence] = true
	}
	if ac.auditSum >= 0 {
		pinned[domain.ToolUnannouncedAudit] = true
		pinned[domain.ToolAnnouncedAudit] = true
	}

	for iter := 0; iter < 40; iter++ {
		_, cost := eval(x)
		if cost <= limit*(1+constraintTol) {
			return x
		}
		scaled := false
		for i := 0; i < domain.NumTools; i++ {
			if pinned[domain.Tool(i)] || x[i] <= 0 {
				continue
			}
			x[i] *= 0.9
			if x[i] < 0.5 {
				x[i] = 0
			}
			scaled = true
		}
		if !scaled {
			break
		}
		x = project(x, ac)
	}

	return current
}
