// Package sessions owns the mutable analysis state: selected
// countries, weights, strategy, focus and cost assumptions, plus
// persistence of that state as snapshots.
package sessions

import (
	"time"

	"github.com/fairlens/fairlens/internal/domain"
	"github.com/fairlens/fairlens/internal/modules/portfolio"
)

// Session is one analysis workspace. All computation results are
// derived on demand; Session holds inputs only, plus the last
// optimization result (nil until explicitly requested).
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	Selection     *portfolio.Selection
	Weights       domain.WeightVector
	Strategy      domain.Strategy
	Effectiveness domain.EffectivenessVectors
	Focus         float64
	Costs         domain.CostAssumptions

	LastOptimization *domain.OptimizationResult
}

// NewSession creates a session with model defaults and an empty
// selection.
func NewSession(id, name string, now time.Time) *Session {
	return &Session{
		ID:            id,
		Name:          name,
		CreatedAt:     now,
		UpdatedAt:     now,
		Selection:     portfolio.NewSelection(),
		Weights:       domain.DefaultWeights(),
		Strategy:      domain.DefaultStrategy(),
		Effectiveness: domain.DefaultEffectiveness(),
		Focus:         0,
		Costs:         domain.DefaultCostAssumptions(),
	}
}

// Snapshot is the serialized form of a session: exactly the user
// inputs, nothing derived.
type Snapshot struct {
	Name          string                      `msgpack:"name"`
	Volumes       map[string]float64          `msgpack:"volumes"`
	Weights       domain.WeightVector         `msgpack:"weights"`
	Strategy      domain.Strategy             `msgpack:"strategy"`
	Effectiveness domain.EffectivenessVectors `msgpack:"effectiveness"`
	Focus         float64                     `msgpack:"focus"`
	Costs         domain.CostAssumptions      `msgpack:"costs"`
	CreatedAt     time.Time                   `msgpack:"created_at"`
}

// ToSnapshot captures the session's inputs.
func (s *Session) ToSnapshot() Snapshot {
	return Snapshot{
		Name:          s.Name,
		Volumes:       s.Selection.Volumes(),
		Weights:       s.Weights,
		Strategy:      s.Strategy,
		Effectiveness: s.Effectiveness,
		Focus:         s.Focus,
		Costs:         s.Costs,
		CreatedAt:     s.CreatedAt,
	}
}

// FromSnapshot restores a session from its serialized form.
func FromSnapshot(id string, snap Snapshot, now time.Time) *Session {
	return &Session{
		ID:            id,
		Name:          snap.Name,
		CreatedAt:     snap.CreatedAt,
		UpdatedAt:     now,
		Selection:     portfolio.NewSelectionFromVolumes(snap.Volumes),
		Weights:       snap.Weights,
		Strategy:      snap.Strategy,
		Effectiveness: snap.Effectiveness,
		Focus:         snap.Focus,
		Costs:         snap.Costs,
	}
}
