package domain

// DefaultVolume is the relative volume assigned to a selected country
// when the user has not set one.
const DefaultVolume = 10.0

// DefaultWeights weights all five indices equally.
func DefaultWeights() WeightVector {
	return WeightVector{
		LabourRights:  20,
		Corruption:    20,
		Freedom:       20,
		RuleOfLaw:     20,
		ModernSlavery: 20,
	}
}

// DefaultStrategy is a typical entry-level programme: SAQ-heavy with a
// thin layer of announced audits.
func DefaultStrategy() Strategy {
	return Strategy{
		Coverage: [NumTools]float64{
			0,  // continuous worker voice
			0,  // periodic worker survey
			0,  // unannounced audit
			25, // announced audit
			30, // SAQ with evidence
			70, // SAQ without evidence
		},
	}
}

// DefaultEffectiveness carries the model's assumed per-tool quality.
// Worker-voice tools detect well and sustain remedy; SAQ without
// evidence is close to paperwork only.
func DefaultEffectiveness() EffectivenessVectors {
	return EffectivenessVectors{
		Detection: [NumTools]float64{85, 60, 55, 30, 20, 5},
		Remedy:    [NumTools]float64{75, 50, 40, 25, 15, 5},
		Conduct:   [NumTools]float64{70, 45, 35, 25, 15, 5},
	}
}

// DefaultCostAssumptions carries typical annual programme costs.
func DefaultCostAssumptions() CostAssumptions {
	return CostAssumptions{
		SupplierCount: 250,
		HourlyRate:    65,
		Tools: [NumTools]ToolCost{
			{AnnualProgrammeCost: 40000, PerSupplierCost: 180, DetectionHours: 2, RemedyHours: 6}, // continuous worker voice
			{AnnualProgrammeCost: 15000, PerSupplierCost: 120, DetectionHours: 2, RemedyHours: 4}, // periodic worker survey
			{AnnualProgrammeCost: 0, PerSupplierCost: 2400, DetectionHours: 6, RemedyHours: 10},   // unannounced audit
			{AnnualProgrammeCost: 0, PerSupplierCost: 1600, DetectionHours: 4, RemedyHours: 8},    // announced audit
			{AnnualProgrammeCost: 8000, PerSupplierCost: 60, DetectionHours: 1, RemedyHours: 2},   // SAQ with evidence
			{AnnualProgrammeCost: 4000, PerSupplierCost: 20, DetectionHours: 0.5, RemedyHours: 1}, // SAQ without evidence
		},
	}
}
