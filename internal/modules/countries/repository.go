// Package countries provides the country reference data: an embedded
// seed dataset and a sqlite-backed repository.
package countries

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fairlens/fairlens/internal/database"
	"github.com/fairlens/fairlens/internal/domain"
)

//go:embed countries.json
var seedData []byte

// Repository provides read access to country reference data.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new country repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Seed loads the embedded dataset into the countries table. Existing
// rows are replaced so upgrading the binary refreshes the data.
func (r *Repository) Seed() error {
	countries, err := parseSeed()
	if err != nil {
		return err
	}

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO countries
			(iso_code, name, labour_rights, corruption, freedom, rule_of_law, modern_slavery)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range countries {
		if _, err := stmt.Exec(c.ISOCode, c.Name, c.LabourRights, c.Corruption, c.Freedom, c.RuleOfLaw, c.ModernSlavery); err != nil {
			return fmt.Errorf("failed to seed country %s: %w", c.ISOCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

// All returns every country, ordered by name.
func (r *Repository) All() ([]domain.Country, error) {
	rows, err := r.db.Conn().Query(`
		SELECT iso_code, name, labour_rights, corruption, freedom, rule_of_law, modern_slavery
		FROM countries
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	var out []domain.Country
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ISOCode, &c.Name, &c.LabourRights, &c.Corruption, &c.Freedom, &c.RuleOfLaw, &c.ModernSlavery); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one country by ISO code.
func (r *Repository) Get(iso string) (*domain.Country, error) {
	var c domain.Country
	err := r.db.Conn().QueryRow(`
		SELECT iso_code, name, labour_rights, corruption, freedom, rule_of_law, modern_slavery
		FROM countries
		WHERE iso_code = ?
	`, iso).Scan(&c.ISOCode, &c.Name, &c.LabourRights, &c.Corruption, &c.Freedom, &c.RuleOfLaw, &c.ModernSlavery)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query country %s: %w", iso, err)
	}
	return &c, nil
}

// GetMany returns the countries for the given ISO codes, keyed by code.
// Unknown codes are simply absent from the result.
func (r *Repository) GetMany(isos []string) (map[string]domain.Country, error) {
	out := make(map[string]domain.Country, len(isos))
	for _, iso := range isos {
		c, err := r.Get(iso)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out[iso] = *c
		}
	}
	return out, nil
}

// parseSeed decodes the embedded dataset, sorted by ISO code for
// deterministic seeding.
func parseSeed() ([]domain.Country, error) {
	var countries []domain.Country
	if err := json.Unmarshal(seedData, &countries); err != nil {
		return nil, fmt.Errorf("failed to parse embedded country dataset: %w", err)
	}
	sort.Slice(countries, func(i, j int) bool {
		return countries[i].ISOCode < countries[j].ISOCode
	})
	return countries, nil
}
