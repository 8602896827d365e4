// Package domain contains the core data types shared across modules.
// Types here are pure data - no infrastructure dependencies.
package domain

// NumTools is the number of HRDD monitoring tools in the model.
const NumTools = 6

// Tool identifies one of the six HRDD tools, in canonical order.
type Tool int

const (
	ToolContinuousWorkerVoice Tool = iota
	ToolPeriodicWorkerSurvey
	ToolUnannouncedAudit
	ToolAnnouncedAudit
	ToolSAQWithEvidence
	ToolSAQWithoutEvidence
)

// ToolCategory groups tools by their mechanism.
type ToolCategory string

const (
	CategoryWorkerVoice ToolCategory = "worker_voice"
	CategoryAudit       ToolCategory = "audit"
	CategorySAQ         ToolCategory = "saq"
)

// toolNames holds display names in canonical tool order.
var toolNames = [NumTools]string{
	"Continuous worker voice",
	"Periodic worker survey",
	"Unannounced audit",
	"Announced audit",
	"SAQ with evidence",
	"SAQ without evidence",
}

// toolCategories holds the fixed category tag per tool.
var toolCategories = [NumTools]ToolCategory{
	CategoryWorkerVoice,
	CategoryWorkerVoice,
	CategoryAudit,
	CategoryAudit,
	CategorySAQ,
	CategorySAQ,
}

// Name returns the tool's display name.
func (t Tool) Name() string {
	if t < 0 || int(t) >= NumTools {
		return "unknown"
	}
	return toolNames[t]
}

// Category returns the tool's fixed category tag.
func (t Tool) Category() ToolCategory {
	if t < 0 || int(t) >= NumTools {
		return ""
	}
	return toolCategories[t]
}

// Country is immutable reference data: identity plus five raw index
// values, each on its own native scale.
type Country struct {
	ISOCode       string  `json:"iso_code"`
	Name          string  `json:"name"`
	LabourRights  float64 `json:"labour_rights"`  // ITUC rating, 1 (best) to 5.5 (worst)
	Corruption    float64 `json:"corruption"`     // CPI, 0 (worst) to 100 (best)
	Freedom       float64 `json:"freedom"`        // Freedom score, 0 (worst) to 100 (best)
	RuleOfLaw     float64 `json:"rule_of_law"`    // WJP index, 0 (worst) to 1 (best)
	ModernSlavery float64 `json:"modern_slavery"` // Prevalence per 1000 population
}

// WeightVector holds the five user-chosen index weights (0-100 each,
// not required to sum to 100), mapping 1:1 to Country's index fields.
type WeightVector struct {
	LabourRights  float64 `json:"labour_rights"`
	Corruption    float64 `json:"corruption"`
	Freedom       float64 `json:"freedom"`
	RuleOfLaw     float64 `json:"rule_of_law"`
	ModernSlavery float64 `json:"modern_slavery"`
}

// Strategy is a six-tool coverage vector: percent of the supplier base
// reached by each tool, 0-100 each, independent of the others.
type Strategy struct {
	Coverage [NumTools]float64 `json:"coverage"`
}

// EffectivenessVectors holds three parallel per-tool vectors (0-100
// each) describing assumed tool quality, independent of coverage.
type EffectivenessVectors struct {
	Detection [NumTools]float64 `json:"detection"`
	Remedy    [NumTools]float64 `json:"remedy"`
	Conduct   [NumTools]float64 `json:"conduct"`
}

// ToolCost holds per-tool cost assumptions.
type ToolCost struct {
	AnnualProgrammeCost float64 `json:"annual_programme_cost"` // Flat, scaled by coverage ratio
	PerSupplierCost     float64 `json:"per_supplier_cost"`
	DetectionHours      float64 `json:"detection_hours"` // Internal hours per supplier
	RemedyHours         float64 `json:"remedy_hours"`    // Internal hours per supplier
}

// CostAssumptions holds per-tool costs plus global scalars.
type CostAssumptions struct {
	SupplierCount int                `json:"supplier_count"`
	HourlyRate    float64            `json:"hourly_rate"`
	Tools         [NumTools]ToolCost `json:"tools"`
}

// RiskBand classifies a 0-100 risk score.
type RiskBand string

const (
	BandLow    RiskBand = "Low"
	BandMedium RiskBand = "Medium"
	BandHigh   RiskBand = "High"
)

// Stage identifies one step of the risk reduction pipeline.
type Stage string

const (
	StageDetection Stage = "detection"
	StageRemedy    Stage = "remedy"
	StageConduct   Stage = "conduct"
	StageFocus     Stage = "focus"
)

// StageResult describes one pipeline stage's effect on the risk value.
// Every field is always populated.
type StageResult struct {
	Stage             Stage   `json:"stage"`
	Value             float64 `json:"value"`               // Risk after this stage
	Reduction         float64 `json:"reduction"`           // Previous value minus this value
	PercentOfBaseline float64 `json:"percent_of_baseline"` // Reduction / baseline, 0 if baseline is 0
	ShareOfTotal      float64 `json:"share_of_total"`      // Reduction / total reduction, 0 if total is 0
}

// StageBreakdown is the full result of a pipeline run. Derived,
// ephemeral: always regenerated from current inputs.
type StageBreakdown struct {
	Baseline       float64        `json:"baseline"`
	Stages         [4]StageResult `json:"stages"` // detection, remedy, conduct, focus
	Final          float64        `json:"final"`
	TotalReduction float64        `json:"total_reduction"`
}

// ToolContribution reports one tool's share of an aggregate stage
// effect, for attribution in reporting.
type ToolContribution struct {
	Tool          Tool    `json:"tool"`
	Name          string  `json:"name"`
	Coverage      float64 `json:"coverage"`      // Percent, 0-100
	Effectiveness float64 `json:"effectiveness"` // Percent, 0-100
	Contribution  float64 `json:"contribution"`  // Fraction, coverage/100 * effectiveness/100
	Share         float64 `json:"share"`         // Fraction of summed raw contributions
}

// StageEffectiveness is the aggregate effect of all tools for one stage.
type StageEffectiveness struct {
	Overall float64            `json:"overall"` // Overlap-adjusted aggregate, capped
	PerTool []ToolContribution `json:"per_tool"`
}

// ToolBudget is the annual cost attributable to one tool.
type ToolBudget struct {
	Tool               Tool    `json:"tool"`
	Name               string  `json:"name"`
	SuppliersUsingTool int     `json:"suppliers_using_tool"`
	ExternalCost       float64 `json:"external_cost"`
	DetectionInternal  float64 `json:"detection_internal_cost"`
	RemedyInternal     float64 `json:"remedy_internal_cost"`
	Total              float64 `json:"total"`
}

// BudgetSummary is the full output of the budget analysis.
type BudgetSummary struct {
	PerTool         [NumTools]ToolBudget `json:"per_tool"`
	TotalExternal   float64              `json:"total_external"`
	TotalInternal   float64              `json:"total_internal"`
	TotalBudget     float64              `json:"total_budget"`
	CostPerSupplier float64              `json:"cost_per_supplier"`
}

// OptimizationConstraints selects which optimizer constraints are active.
type OptimizationConstraints struct {
	// SAQConstraintEnabled pins SAQ-with-evidence + SAQ-without-evidence
	// coverage to sum to exactly 100.
	SAQConstraintEnabled bool `json:"saq_constraint_enabled"`
	// SocialAuditConstraintEnabled pins the audit pair's coverage sum at
	// its current value (capped at 100) and scales audit costs down by
	// SocialAuditCostReduction percent.
	SocialAuditConstraintEnabled bool    `json:"social_audit_constraint_enabled"`
	SocialAuditCostReduction     float64 `json:"social_audit_cost_reduction"` // Percent, 0-100
}

// OptimizationResult is an alternative allocation plus its risk and
// budget profile. It never mutates the live strategy; it is presented
// for comparison and explicit adoption only.
type OptimizationResult struct {
	OptimizedAllocation   [NumTools]float64 `json:"optimized_tool_allocation"`
	BaselineRisk          float64           `json:"baseline_risk"`
	CurrentManagedRisk    float64           `json:"current_managed_risk"`
	OptimizedManagedRisk  float64           `json:"optimized_managed_risk"`
	CurrentBudget         float64           `json:"current_budget"`
	OptimizedBudget       float64           `json:"optimized_budget"`
	SAQConstraintActive   bool              `json:"saq_constraint_active"`
	AuditConstraintActive bool              `json:"audit_constraint_active"`
	// RelaxedConstraints names any constraint that could not be
	// satisfied exactly and was relaxed to the nearest feasible point.
	RelaxedConstraints []string `json:"relaxed_constraints,omitempty"`
	Iterations         int      `json:"iterations"`
}
