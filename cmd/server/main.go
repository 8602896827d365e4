package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fairlens/fairlens/internal/config"
	"github.com/fairlens/fairlens/internal/database"
	"github.com/fairlens/fairlens/internal/events"
	"github.com/fairlens/fairlens/internal/modules/countries"
	countrieshandlers "github.com/fairlens/fairlens/internal/modules/countries/handlers"
	"github.com/fairlens/fairlens/internal/modules/optimization"
	"github.com/fairlens/fairlens/internal/modules/sessions"
	sessionhandlers "github.com/fairlens/fairlens/internal/modules/sessions/handlers"
	"github.com/fairlens/fairlens/internal/modules/settings"
	settingshandlers "github.com/fairlens/fairlens/internal/modules/settings/handlers"
	"github.com/fairlens/fairlens/internal/scheduler"
	"github.com/fairlens/fairlens/internal/server"
	"github.com/fairlens/fairlens/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting FairLens")

	// Reference database: country indicators and settings.
	referenceDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "reference.db"),
		Profile: database.ProfileReference,
		Name:    "reference",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open reference database")
	}
	defer referenceDB.Close()

	// Sessions database: persisted analysis snapshots.
	sessionsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "sessions.db"),
		Profile: database.ProfileSession,
		Name:    "sessions",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open sessions database")
	}
	defer sessionsDB.Close()

	for _, db := range []*database.DB{referenceDB, sessionsDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	countryRepo := countries.NewRepository(referenceDB)
	if err := countryRepo.Seed(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed country reference data")
	}

	settingsRepo := settings.NewRepository(referenceDB)
	sessionRepo := sessions.NewRepository(sessionsDB)

	bus := events.NewBus(log)
	optimizer := optimization.New(log)
	sessionService := sessions.NewService(countryRepo, sessionRepo, optimizer, bus, log)

	// Background maintenance.
	sched := scheduler.New(log)
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if err := sched.AddJob("@hourly", scheduler.NewPurgeStaleSessionsJob(sessionRepo, ttl, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register purge job")
	}
	if err := sched.AddJob("@daily", scheduler.NewVacuumJob(log, referenceDB, sessionsDB)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register vacuum job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:              log,
		Port:             cfg.Port,
		DevMode:          cfg.DevMode,
		ReferenceDB:      referenceDB,
		SessionsDB:       sessionsDB,
		EventBus:         bus,
		CountryHandlers:  countrieshandlers.NewHandler(countryRepo, log),
		SessionHandlers:  sessionhandlers.NewHandler(sessionService, settingsRepo, log),
		SettingsHandlers: settingshandlers.NewHandler(settingsRepo, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
