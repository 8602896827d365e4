package sessions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fairlens/fairlens/internal/database"
)

// StoredSession is a persisted session's metadata row.
type StoredSession struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository persists session snapshots as msgpack blobs.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new session repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a session snapshot.
func (r *Repository) Save(id string, snap Snapshot) error {
	blob, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", id, err)
	}

	_, err = r.db.Conn().Exec(`
		INSERT INTO sessions (id, name, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, id, snap.Name, blob, snap.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

// Load returns a session snapshot, or nil if the id is unknown.
func (r *Repository) Load(id string) (*Snapshot, error) {
	var blob []byte
	err := r.db.Conn().QueryRow(`SELECT snapshot FROM sessions WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &snap, nil
}

// List returns metadata for all persisted sessions, newest first.
func (r *Repository) List() ([]StoredSession, error) {
	rows, err := r.db.Conn().Query(`
		SELECT id, name, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []StoredSession
	for rows.Next() {
		var s StoredSession
		var created, updated string
		if err := rows.Scan(&s.ID, &s.Name, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		s.CreatedAt = parseDBTime(created)
		s.UpdatedAt = parseDBTime(updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a persisted session. Unknown ids are not an error.
func (r *Repository) Delete(id string) error {
	if _, err := r.db.Conn().Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// DeleteOlderThan removes sessions not updated since the cutoff and
// returns how many were purged.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Conn().Exec(
		`DELETE FROM sessions WHERE updated_at < ?`,
		cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// parseDBTime handles both sqlite's datetime() format and RFC3339.
func parseDBTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
