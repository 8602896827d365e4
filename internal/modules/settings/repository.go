// Package settings provides a small key-value store for application
// preferences that must survive restarts.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/fairlens/fairlens/internal/database"
)

// Well-known setting keys.
const (
	KeyLastSessionID = "last_session_id"
	KeyOptimizerMode = "optimizer_mode"
)

// Repository stores settings in the reference database.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the value for a key, or nil if unset.
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.Conn().QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set stores a value for a key, replacing any previous value.
func (r *Repository) Set(key, value string) error {
	_, err := r.db.Conn().Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Conn().Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// All returns every stored setting.
func (r *Repository) All() (map[string]string, error) {
	rows, err := r.db.Conn().Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// GetString returns the value for a key, or the fallback if unset.
func (r *Repository) GetString(key, fallback string) string {
	v, err := r.Get(key)
	if err != nil || v == nil {
		return fallback
	}
	return *v
}

// GetFloat returns a numeric setting, or the fallback when the key is
// unset or not parseable.
func (r *Repository) GetFloat(key string, fallback float64) float64 {
	v, err := r.Get(key)
	if err != nil || v == nil {
		return fallback
	}
	f, err := strconv.ParseFloat(*v, 64)
	if err != nil {
		return fallback
	}
	return f
}
