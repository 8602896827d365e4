package sessions

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fairlens/fairlens/internal/domain"
	"github.com/fairlens/fairlens/internal/events"
	"github.com/fairlens/fairlens/internal/modules/budget"
	"github.com/fairlens/fairlens/internal/modules/mitigation"
	"github.com/fairlens/fairlens/internal/modules/optimization"
	"github.com/fairlens/fairlens/internal/modules/portfolio"
	"github.com/fairlens/fairlens/internal/modules/scoring"
)

// CountryProvider supplies country reference data.
type CountryProvider interface {
	All() ([]domain.Country, error)
	GetMany(isos []string) (map[string]domain.Country, error)
}

// AllocationOptimizer runs a constrained allocation search.
type AllocationOptimizer interface {
	Optimize(in optimization.Inputs) (*domain.OptimizationResult, error)
}

// CountryRisk is one selected country's scored risk.
type CountryRisk struct {
	ISOCode string          `json:"iso_code"`
	Name    string          `json:"name"`
	Score   float64         `json:"score"`
	Band    domain.RiskBand `json:"band"`
	Color   string          `json:"color"`
	Volume  float64         `json:"volume"`
}

// RiskSummary is the full derived risk picture for a session.
type RiskSummary struct {
	SessionID           string                       `json:"session_id"`
	Countries           []CountryRisk                `json:"countries"`
	BaselineRisk        float64                      `json:"baseline_risk"`
	BaselineBand        domain.RiskBand              `json:"baseline_band"`
	BaselineColor       string                       `json:"baseline_color"`
	ConcentrationFactor float64                      `json:"concentration_factor"`
	Managed             mitigation.ManagedRiskResult `json:"managed"`
}

// Service owns all live sessions. Mutations recompute synchronously
// and publish events; computation itself stays in the pure calculation
// packages.
type Service struct {
	mu        sync.Mutex
	live      map[string]*Session
	countries CountryProvider
	repo      *Repository
	optimizer AllocationOptimizer
	bus       *events.Bus
	log       zerolog.Logger
	now       func() time.Time
}

// NewService creates a session service.
func NewService(
	countries CountryProvider,
	repo *Repository,
	optimizer AllocationOptimizer,
	bus *events.Bus,
	log zerolog.Logger,
) *Service {
	return &Service{
		live:      make(map[string]*Session),
		countries: countries,
		repo:      repo,
		optimizer: optimizer,
		bus:       bus,
		log:       log.With().Str("component", "sessions").Logger(),
		now:       time.Now,
	}
}

// Create starts a new session with defaults.
func (s *Service) Create(name string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := NewSession(uuid.New().String(), name, s.now())
	s.live[session.ID] = session
	s.log.Info().Str("session_id", session.ID).Msg("Session created")
	return session, nil
}

// Get returns a live session, loading it from storage if needed.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Service) getLocked(id string) (*Session, error) {
	if session, ok := s.live[id]; ok {
		return session, nil
	}

	snap, err := s.repo.Load(id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("session %s not found", id)
	}

	session := FromSnapshot(id, *snap, s.now())
	s.live[id] = session
	return session, nil
}

// List returns the persisted session index.
func (s *Service) List() ([]StoredSession, error) {
	return s.repo.List()
}

// Delete removes a session from memory and storage.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()

	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Type: events.SessionDeleted, Data: events.SessionData{SessionID: id}})
	return nil
}

// Save persists the session's current inputs.
func (s *Service) Save(id string) error {
	s.mu.Lock()
	session, err := s.getLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	snap := session.ToSnapshot()
	s.mu.Unlock()

	if err := s.repo.Save(id, snap); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Type: events.SessionSaved, Data: events.SessionData{SessionID: id}})
	return nil
}

// SetWeights replaces the weight vector and recomputes.
func (s *Service) SetWeights(id string, w domain.WeightVector) (*RiskSummary, error) {
	return s.mutate(id, func(session *Session) {
		session.Weights = w
	})
}

// SetSelection replaces the selected countries and volumes.
func (s *Service) SetSelection(id string, volumes map[string]float64) (*RiskSummary, error) {
	return s.mutate(id, func(session *Session) {
		session.Selection.Replace(volumes)
	})
}

// SetStrategy replaces the coverage vector.
func (s *Service) SetStrategy(id string, strategy domain.Strategy) (*RiskSummary, error) {
	return s.mutate(id, func(session *Session) {
		session.Strategy = strategy
	})
}

// SetEffectiveness replaces the effectiveness vectors.
func (s *Service) SetEffectiveness(id string, eff domain.EffectivenessVectors) (*RiskSummary, error) {
	return s.mutate(id, func(session *Session) {
		session.Effectiveness = eff
	})
}

// SetFocus sets the focus parameter, clamped to [0,1].
func (s *Service) SetFocus(id string, focus float64) (*RiskSummary, error) {
	return s.mutate(id, func(session *Session) {
		if math.IsNaN(focus) || math.IsInf(focus, 0) {
			focus = 0
		}
		session.Focus = math.Max(0, math.Min(1, focus))
	})
}

// SetCosts replaces the cost assumptions. A non-positive supplier
// count snaps to 1: the budget model assumes at least one supplier.
func (s *Service) SetCosts(id string, costs domain.CostAssumptions) (*RiskSummary, error) {
	return s.mutate(id, func(session *Session) {
		if costs.SupplierCount < 1 {
			costs.SupplierCount = 1
		}
		session.Costs = costs
	})
}

// mutate applies fn to the session, stamps it, recomputes the risk
// summary and publishes the recompute event.
func (s *Service) mutate(id string, fn func(*Session)) (*RiskSummary, error) {
	s.mu.Lock()
	session, err := s.getLocked(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	fn(session)
	session.UpdatedAt = s.now()
	// Any input change invalidates a previous optimization run.
	session.LastOptimization = nil

	summary, err := s.riskLocked(session)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{Type: events.RiskRecomputed, Data: events.RiskRecomputedData{
		SessionID:    id,
		BaselineRisk: summary.BaselineRisk,
		ManagedRisk:  summary.Managed.ManagedRisk,
	}})
	return summary, nil
}

// Risk computes the current risk summary without mutating anything.
func (s *Service) Risk(id string) (*RiskSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	return s.riskLocked(session)
}

func (s *Service) riskLocked(session *Session) (*RiskSummary, error) {
	selected := session.Selection.Selected()
	volumes := session.Selection.Volumes()

	countryData, err := s.countries.GetMany(selected)
	if err != nil {
		return nil, fmt.Errorf("failed to load countries for session %s: %w", session.ID, err)
	}

	risks := make(map[string]float64, len(countryData))
	countryRisks := make([]CountryRisk, 0, len(selected))
	for _, iso := range selected {
		c, ok := countryData[iso]
		if !ok {
			// Selected country missing from reference data: skip it
			// rather than fail the whole computation.
			s.log.Warn().Str("iso", iso).Msg("Selected country not in reference data")
			continue
		}
		score := scoring.ScoreCountry(c, session.Weights)
		risks[iso] = score
		countryRisks = append(countryRisks, CountryRisk{
			ISOCode: iso,
			Name:    c.Name,
			Score:   score,
			Band:    scoring.RiskBand(score),
			Color:   scoring.RiskColor(score),
			Volume:  volumes[iso],
		})
	}

	baseline := portfolio.AggregateBaseline(selected, risks, volumes)
	concentration := portfolio.ConcentrationFactor(selected, risks, volumes)

	managed := mitigation.ComputeManagedRisk(
		baseline,
		session.Strategy,
		session.Effectiveness,
		session.Focus,
		concentration,
	)

	return &RiskSummary{
		SessionID:           session.ID,
		Countries:           countryRisks,
		BaselineRisk:        baseline,
		BaselineBand:        scoring.RiskBand(baseline),
		BaselineColor:       scoring.RiskColor(baseline),
		ConcentrationFactor: concentration,
		Managed:             managed,
	}, nil
}

// Budget computes the budget summary for the session's current
// strategy and cost assumptions.
func (s *Service) Budget(id string) (*domain.BudgetSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	summary := budget.Analyze(session.Costs, session.Strategy)
	return &summary, nil
}

// Optimize runs the allocation optimizer against the session's current
// state and stores the result for comparison. The live strategy is
// never mutated.
func (s *Service) Optimize(
	id string,
	constraints domain.OptimizationConstraints,
	mode optimization.Mode,
) (*domain.OptimizationResult, error) {
	s.mu.Lock()
	session, err := s.getLocked(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	summary, err := s.riskLocked(session)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	inputs := optimization.Inputs{
		Baseline:            summary.BaselineRisk,
		Strategy:            session.Strategy,
		Effectiveness:       session.Effectiveness,
		Focus:               session.Focus,
		ConcentrationFactor: summary.ConcentrationFactor,
		Costs:               session.Costs,
		Constraints:         constraints,
		Mode:                mode,
	}
	s.mu.Unlock()

	result, err := s.optimizer.Optimize(inputs)
	if err != nil {
		return nil, fmt.Errorf("optimization failed for session %s: %w", id, err)
	}

	s.mu.Lock()
	session.LastOptimization = result
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.OptimizationCompleted, Data: events.OptimizationCompletedData{
		SessionID:            id,
		OptimizedManagedRisk: result.OptimizedManagedRisk,
		OptimizedBudget:      result.OptimizedBudget,
	}})
	return result, nil
}
