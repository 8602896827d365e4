package optimization

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/internal/domain"
)

func testInputs() Inputs {
	return Inputs{
		Baseline:            65,
		Strategy:            domain.DefaultStrategy(),
		Effectiveness:       domain.DefaultEffectiveness(),
		Focus:               0.5,
		ConcentrationFactor: 1.4,
		Costs:               domain.DefaultCostAssumptions(),
		Mode:                ModeBudgetNeutral,
	}
}

func newTestOptimizer() *Optimizer {
	return New(zerolog.Nop())
}

func TestOptimize_NeverWorseThanCurrent(t *testing.T) {
	result, err := newTestOptimizer().Optimize(testInputs())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.LessOrEqual(t, result.OptimizedManagedRisk, result.CurrentManagedRisk+1e-9)
	assert.GreaterOrEqual(t, result.OptimizedManagedRisk, 0.0)
	assert.Equal(t, 65.0, result.BaselineRisk)
}

func TestOptimize_Deterministic(t *testing.T) {
	in := testInputs()
	a, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)
	b, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)

	assert.Equal(t, a.OptimizedAllocation, b.OptimizedAllocation)
	assert.Equal(t, a.OptimizedManagedRisk, b.OptimizedManagedRisk)
	assert.Equal(t, a.OptimizedBudget, b.OptimizedBudget)
}

func TestOptimize_SAQConstraintFeasibility(t *testing.T) {
	in := testInputs()
	in.Constraints.SAQConstraintEnabled = true

	result, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)
	require.True(t, result.SAQConstraintActive)

	sum := result.OptimizedAllocation[domain.ToolSAQWithEvidence] +
		result.OptimizedAllocation[domain.ToolSAQWithoutEvidence]
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestOptimize_AuditConstraintPinsCoverageSum(t *testing.T) {
	in := testInputs()
	in.Strategy.Coverage[domain.ToolUnannouncedAudit] = 10
	in.Strategy.Coverage[domain.ToolAnnouncedAudit] = 30
	in.Constraints.SocialAuditConstraintEnabled = true
	in.Constraints.SocialAuditCostReduction = 40

	result, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)
	require.True(t, result.AuditConstraintActive)

	sum := result.OptimizedAllocation[domain.ToolUnannouncedAudit] +
		result.OptimizedAllocation[domain.ToolAnnouncedAudit]
	assert.InDelta(t, 40.0, sum, 1e-6)
	assert.Empty(t, result.RelaxedConstraints)
}

func TestOptimize_AuditConstraintRelaxesOversizedSum(t *testing.T) {
	in := testInputs()
	in.Strategy.Coverage[domain.ToolUnannouncedAudit] = 80
	in.Strategy.Coverage[domain.ToolAnnouncedAudit] = 70
	in.Constraints.SocialAuditConstraintEnabled = true

	result, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)

	sum := result.OptimizedAllocation[domain.ToolUnannouncedAudit] +
		result.OptimizedAllocation[domain.ToolAnnouncedAudit]
	assert.InDelta(t, 100.0, sum, 1e-6)
	assert.NotEmpty(t, result.RelaxedConstraints, "capping must be reported, not silent")
}

func TestOptimize_AllocationWithinBounds(t *testing.T) {
	in := testInputs()
	in.Constraints.SAQConstraintEnabled = true

	result, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)

	for i, v := range result.OptimizedAllocation {
		assert.GreaterOrEqual(t, v, 0.0, "tool %d", i)
		assert.LessOrEqual(t, v, 100.0, "tool %d", i)
	}
}

func TestOptimize_BudgetNeutralRespectsCap(t *testing.T) {
	result, err := newTestOptimizer().Optimize(testInputs())
	require.NoError(t, err)

	// Small slack for the supplier-count ceil steps.
	assert.LessOrEqual(t, result.OptimizedBudget, result.CurrentBudget*1.02)
}

func TestOptimize_FindsImprovementOverWeakStrategy(t *testing.T) {
	in := testInputs()
	// Current strategy: pure SAQ-without-evidence, nearly useless.
	in.Strategy = domain.Strategy{}
	in.Strategy.Coverage[domain.ToolSAQWithoutEvidence] = 100
	in.Mode = ModePerDollar

	result, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)

	assert.Less(t, result.OptimizedManagedRisk, result.CurrentManagedRisk,
		"optimizer should shift spend toward effective tools")
}

func TestOptimize_BoundedIterations(t *testing.T) {
	result, err := newTestOptimizer().Optimize(testInputs())
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Iterations, 3*maxFuncEvals)
}

func TestOptimize_ZeroBaseline(t *testing.T) {
	in := testInputs()
	in.Baseline = 0

	result, err := newTestOptimizer().Optimize(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.OptimizedManagedRisk)
	assert.False(t, math.IsNaN(result.OptimizedBudget))
}

func TestProject_SAQPairRestoration(t *testing.T) {
	ac := activeConstraints{saqSum: 100, auditSum: -1}

	x := project([domain.NumTools]float64{0, 0, 0, 0, 30, 30}, ac)
	assert.InDelta(t, 50.0, x[domain.ToolSAQWithEvidence], 1e-9)
	assert.InDelta(t, 50.0, x[domain.ToolSAQWithoutEvidence], 1e-9)

	// Degenerate zero pair splits evenly.
	x = project([domain.NumTools]float64{}, ac)
	assert.InDelta(t, 50.0, x[domain.ToolSAQWithEvidence], 1e-9)
	assert.InDelta(t, 50.0, x[domain.ToolSAQWithoutEvidence], 1e-9)

	// Lopsided pair keeps its ratio where the box allows.
	x = project([domain.NumTools]float64{0, 0, 0, 0, 75, 25}, ac)
	assert.InDelta(t, 75.0, x[domain.ToolSAQWithEvidence], 1e-9)
	assert.InDelta(t, 25.0, x[domain.ToolSAQWithoutEvidence], 1e-9)
}

func TestSplitPair_RespectsBox(t *testing.T) {
	a, b := splitPair(100, 0, 150)
	assert.LessOrEqual(t, a, 100.0)
	assert.LessOrEqual(t, b, 100.0)
	assert.InDelta(t, 150.0, a+b, 1e-9)
}
