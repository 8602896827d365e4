package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fairlens/fairlens/internal/database"
)

// SessionPurger deletes sessions not updated since a cutoff.
type SessionPurger interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// PurgeStaleSessionsJob deletes persisted sessions older than the
// configured TTL. Live in-memory sessions are untouched.
type PurgeStaleSessionsJob struct {
	purger SessionPurger
	ttl    time.Duration
	log    zerolog.Logger
}

// NewPurgeStaleSessionsJob creates the purge job.
func NewPurgeStaleSessionsJob(purger SessionPurger, ttl time.Duration, log zerolog.Logger) *PurgeStaleSessionsJob {
	return &PurgeStaleSessionsJob{
		purger: purger,
		ttl:    ttl,
		log:    log.With().Str("job", "purge_stale_sessions").Logger(),
	}
}

// Name implements Job.
func (j *PurgeStaleSessionsJob) Name() string { return "purge_stale_sessions" }

// Run implements Job.
func (j *PurgeStaleSessionsJob) Run() error {
	cutoff := time.Now().Add(-j.ttl)
	n, err := j.purger.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Info().Int64("purged", n).Time("cutoff", cutoff).Msg("Purged stale sessions")
	}
	return nil
}

// VacuumJob reclaims free pages in the given databases.
type VacuumJob struct {
	dbs []*database.DB
	log zerolog.Logger
}

// NewVacuumJob creates the vacuum job.
func NewVacuumJob(log zerolog.Logger, dbs ...*database.DB) *VacuumJob {
	return &VacuumJob{
		dbs: dbs,
		log: log.With().Str("job", "vacuum").Logger(),
	}
}

// Name implements Job.
func (j *VacuumJob) Name() string { return "vacuum" }

// Run implements Job.
func (j *VacuumJob) Run() error {
	for _, db := range j.dbs {
		if err := db.Vacuum(); err != nil {
			return err
		}
		j.log.Debug().Str("database", db.Name()).Msg("Vacuumed database")
	}
	return nil
}
