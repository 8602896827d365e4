package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/fairlens/fairlens/internal/database"
)

// SystemHandlers serves process and database health information.
type SystemHandlers struct {
	log       zerolog.Logger
	startedAt time.Time
	dbs       []*database.DB
}

// NewSystemHandlers creates system handlers over the given databases.
func NewSystemHandlers(log zerolog.Logger, dbs ...*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		startedAt: time.Now(),
		dbs:       dbs,
	}
}

// HealthResponse is the /api/system/health payload.
type HealthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Goroutines    int               `json:"goroutines"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemoryPercent float64           `json:"memory_percent"`
	MemoryUsedMB  float64           `json:"memory_used_mb"`
	Databases     map[string]string `json:"databases"`
}

// HandleHealth handles GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent, memUsedMB := h.systemStats()

	status := "healthy"
	databases := make(map[string]string, len(h.dbs))
	for _, db := range h.dbs {
		if err := db.Conn().Ping(); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Database ping failed")
			databases[db.Name()] = "unreachable"
			status = "degraded"
			continue
		}
		databases[db.Name()] = "ok"
	}

	resp := HealthResponse{
		Status:        status,
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		MemoryUsedMB:  memUsedMB,
		Databases:     databases,
	}

	w.Header().Set("Content-Type", "application/json")
	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}

// systemStats samples host CPU and memory. Failures degrade to zeros
// rather than failing the health endpoint.
func (h *SystemHandlers) systemStats() (cpuPercent, memPercent, memUsedMB float64) {
	if percentages, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percentages) > 0 {
		cpuPercent = percentages[0]
	} else if err != nil {
		h.log.Debug().Err(err).Msg("Failed to sample CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		memPercent = memStat.UsedPercent
		memUsedMB = float64(memStat.Used) / 1024 / 1024
	} else {
		h.log.Debug().Err(err).Msg("Failed to sample memory usage")
	}
	return cpuPercent, memPercent, memUsedMB
}
