package sessions

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/internal/database"
	"github.com/fairlens/fairlens/internal/domain"
	"github.com/fairlens/fairlens/internal/events"
	"github.com/fairlens/fairlens/internal/modules/countries"
	"github.com/fairlens/fairlens/internal/modules/optimization"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	refDB, err := database.New(database.Config{
		Path:    "file:sessions_ref_" + t.Name() + "?mode=memory&cache=shared",
		Profile: database.ProfileReference,
		Name:    "reference",
	})
	require.NoError(t, err)
	t.Cleanup(func() { refDB.Close() })
	require.NoError(t, refDB.Migrate())

	countryRepo := countries.NewRepository(refDB)
	require.NoError(t, countryRepo.Seed())

	sessDB, err := database.New(database.Config{
		Path:    "file:sessions_db_" + t.Name() + "?mode=memory&cache=shared",
		Profile: database.ProfileSession,
		Name:    "sessions",
	})
	require.NoError(t, err)
	t.Cleanup(func() { sessDB.Close() })
	require.NoError(t, sessDB.Migrate())

	log := zerolog.Nop()
	return NewService(
		countryRepo,
		NewRepository(sessDB),
		optimization.New(log),
		events.NewBus(log),
		log,
	)
}

func TestService_CreateAndEmptyRisk(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("test")
	require.NoError(t, err)

	summary, err := svc.Risk(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.BaselineRisk, "empty portfolio is a normal state, risk 0")
	assert.Equal(t, 0.0, summary.Managed.ManagedRisk)
	assert.Empty(t, summary.Countries)
}

func TestService_SelectionDrivesBaseline(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("test")
	require.NoError(t, err)

	summary, err := svc.SetSelection(session.ID, map[string]float64{"BGD": 10, "DEU": 10})
	require.NoError(t, err)

	require.Len(t, summary.Countries, 2)
	assert.Greater(t, summary.BaselineRisk, 0.0)
	assert.Greater(t, summary.ConcentrationFactor, 1.0, "BGD and DEU risks differ")

	// Dropping the high-risk country lowers the baseline.
	lower, err := svc.SetSelection(session.ID, map[string]float64{"DEU": 10})
	require.NoError(t, err)
	assert.Less(t, lower.BaselineRisk, summary.BaselineRisk)
}

func TestService_UnknownCountrySkipped(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("test")
	require.NoError(t, err)

	summary, err := svc.SetSelection(session.ID, map[string]float64{"DEU": 10, "ZZZ": 10})
	require.NoError(t, err)
	assert.Len(t, summary.Countries, 1, "unknown ISO codes are skipped, not fatal")
}

func TestService_MutationInvalidatesOptimization(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("test")
	require.NoError(t, err)

	_, err = svc.SetSelection(session.ID, map[string]float64{"BGD": 10})
	require.NoError(t, err)

	result, err := svc.Optimize(session.ID, domain.OptimizationConstraints{}, optimization.ModeBudgetNeutral)
	require.NoError(t, err)
	require.NotNil(t, result)

	got, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastOptimization)

	_, err = svc.SetFocus(session.ID, 0.5)
	require.NoError(t, err)

	got, err = svc.Get(session.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastOptimization, "input change invalidates the last optimization")
}

func TestService_FocusClamped(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("test")
	require.NoError(t, err)

	_, err = svc.SetFocus(session.ID, 7)
	require.NoError(t, err)
	got, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Focus)

	_, err = svc.SetFocus(session.ID, -3)
	require.NoError(t, err)
	got, err = svc.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Focus)
}

func TestService_SaveAndRestore(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("audit review")
	require.NoError(t, err)

	_, err = svc.SetSelection(session.ID, map[string]float64{"VNM": 25})
	require.NoError(t, err)
	_, err = svc.SetFocus(session.ID, 0.4)
	require.NoError(t, err)
	require.NoError(t, svc.Save(session.ID))

	// Evict from memory and reload via repository.
	svc.mu.Lock()
	delete(svc.live, session.ID)
	svc.mu.Unlock()

	restored, err := svc.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "audit review", restored.Name)
	assert.Equal(t, 0.4, restored.Focus)
	assert.Equal(t, map[string]float64{"VNM": 25}, restored.Selection.Volumes())

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, session.ID, list[0].ID)
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("doomed")
	require.NoError(t, err)
	require.NoError(t, svc.Save(session.ID))
	require.NoError(t, svc.Delete(session.ID))

	_, err = svc.Get(session.ID)
	assert.Error(t, err)
}

func TestService_BudgetUsesSessionState(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.Create("test")
	require.NoError(t, err)

	summary, err := svc.Budget(session.ID)
	require.NoError(t, err)
	assert.Greater(t, summary.TotalBudget, 0.0, "default strategy has nonzero coverage")

	_, err = svc.SetStrategy(session.ID, domain.Strategy{})
	require.NoError(t, err)

	summary, err = svc.Budget(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.TotalBudget)
}

func testTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	session := NewSession("id-1", "snap", testTime())
	session.Selection.SetVolume("BGD", 40)
	session.Focus = 0.6
	session.Weights.Corruption = 55

	snap := session.ToSnapshot()
	restored := FromSnapshot("id-1", snap, testTime())

	assert.Equal(t, session.Name, restored.Name)
	assert.Equal(t, session.Weights, restored.Weights)
	assert.Equal(t, session.Strategy, restored.Strategy)
	assert.Equal(t, session.Effectiveness, restored.Effectiveness)
	assert.Equal(t, session.Focus, restored.Focus)
	assert.Equal(t, session.Costs, restored.Costs)
	assert.Equal(t, session.Selection.Volumes(), restored.Selection.Volumes())
}
