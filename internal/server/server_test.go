package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairlens/fairlens/internal/database"
	"github.com/fairlens/fairlens/internal/events"
	"github.com/fairlens/fairlens/internal/modules/countries"
	countrieshandlers "github.com/fairlens/fairlens/internal/modules/countries/handlers"
	"github.com/fairlens/fairlens/internal/modules/optimization"
	"github.com/fairlens/fairlens/internal/modules/sessions"
	sessionhandlers "github.com/fairlens/fairlens/internal/modules/sessions/handlers"
	"github.com/fairlens/fairlens/internal/modules/settings"
	settingshandlers "github.com/fairlens/fairlens/internal/modules/settings/handlers"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := zerolog.Nop()

	refDB, err := database.New(database.Config{
		Path:    "file:server_ref_" + t.Name() + "?mode=memory&cache=shared",
		Profile: database.ProfileReference,
		Name:    "reference",
	})
	require.NoError(t, err)
	t.Cleanup(func() { refDB.Close() })
	require.NoError(t, refDB.Migrate())

	sessDB, err := database.New(database.Config{
		Path:    "file:server_sess_" + t.Name() + "?mode=memory&cache=shared",
		Profile: database.ProfileSession,
		Name:    "sessions",
	})
	require.NoError(t, err)
	t.Cleanup(func() { sessDB.Close() })
	require.NoError(t, sessDB.Migrate())

	countryRepo := countries.NewRepository(refDB)
	require.NoError(t, countryRepo.Seed())
	settingsRepo := settings.NewRepository(refDB)
	bus := events.NewBus(log)
	sessionService := sessions.NewService(
		countryRepo,
		sessions.NewRepository(sessDB),
		optimization.New(log),
		bus,
		log,
	)

	return New(Config{
		Log:              log,
		Port:             0,
		DevMode:          true,
		ReferenceDB:      refDB,
		SessionsDB:       sessDB,
		EventBus:         bus,
		CountryHandlers:  countrieshandlers.NewHandler(countryRepo, log),
		SessionHandlers:  sessionhandlers.NewHandler(sessionService, settingsRepo, log),
		SettingsHandlers: settingshandlers.NewHandler(settingsRepo, log),
	})
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestServer_ListCountries(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/countries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out)
	assert.Contains(t, out[0], "default_score")
}

func TestServer_GetCountryNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/countries/ZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/sessions", `{"name":"e2e"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// Select two countries, then read the recomputed risk.
	rec = doRequest(t, s, http.MethodPut, "/api/sessions/"+created.ID+"/selection",
		`{"volumes":{"BGD":10,"DEU":10}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/sessions/"+created.ID+"/risk", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var risk struct {
		BaselineRisk float64 `json:"baseline_risk"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &risk))
	assert.Greater(t, risk.BaselineRisk, 0.0)

	rec = doRequest(t, s, http.MethodGet, "/api/sessions/"+created.ID+"/budget", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/sessions/"+created.ID+"/save", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	rec = doRequest(t, s, http.MethodDelete, "/api/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_OptimizeRejectsUnknownMode(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/sessions", `{"name":"opt"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(t, s, http.MethodPost, "/api/sessions/"+created.ID+"/optimize",
		`{"mode":"maximal_chaos"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Settings(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/settings/optimizer_mode", `{"value":"per_dollar"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "per_dollar")

	rec = doRequest(t, s, http.MethodDelete, "/api/settings/optimizer_mode", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_SystemHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/system/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Databases["reference"])
	assert.Equal(t, "ok", health.Databases["sessions"])
	assert.Greater(t, health.Goroutines, 0)
}
