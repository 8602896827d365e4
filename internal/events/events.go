// Package events provides a lightweight in-process event bus used to
// push recompute notifications to SSE subscribers.
package events

// EventType identifies a category of system event.
type EventType string

const (
	// RiskRecomputed fires after any session mutation triggers a
	// synchronous recompute.
	RiskRecomputed EventType = "risk_recomputed"
	// OptimizationCompleted fires when an allocation optimization run
	// finishes.
	OptimizationCompleted EventType = "optimization_completed"
	// SessionSaved fires when a session snapshot is persisted.
	SessionSaved EventType = "session_saved"
	// SessionDeleted fires when a session is removed.
	SessionDeleted EventType = "session_deleted"
)

// Event is a typed notification with optional payload.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// RiskRecomputedData carries the headline figures of a recompute.
type RiskRecomputedData struct {
	SessionID    string  `json:"session_id"`
	BaselineRisk float64 `json:"baseline_risk"`
	ManagedRisk  float64 `json:"managed_risk"`
}

// OptimizationCompletedData carries the result summary of an
// optimization run.
type OptimizationCompletedData struct {
	SessionID            string  `json:"session_id"`
	OptimizedManagedRisk float64 `json:"optimized_managed_risk"`
	OptimizedBudget      float64 `json:"optimized_budget"`
}

// SessionData identifies a session in lifecycle events.
type SessionData struct {
	SessionID string `json:"session_id"`
}
