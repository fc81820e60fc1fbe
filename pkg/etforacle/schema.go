package etforacle

import (
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogSeedYAML []byte

type catalogSeed struct {
	Markets     []MarketSummary `yaml:"markets"`
	Sectors     []Sector        `yaml:"sectors"`
	Performance []PricePoint    `yaml:"performance"`
}

func loadCatalogSeed(data []byte) (*catalogSeed, error) {
	var seed catalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	for i, m := range seed.Markets {
		if m.IndexName == "" {
			return nil, fmt.Errorf("catalog seed: market %d has no index_name", i)
		}
		if !m.Status.Valid() {
			return nil, fmt.Errorf("catalog seed: market %q has invalid status %q", m.IndexName, m.Status)
		}
	}
	return &seed, nil
}

func initDatabase(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS markets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			index_name TEXT NOT NULL UNIQUE,
			region TEXT NOT NULL,
			price TEXT NOT NULL,
			change TEXT NOT NULL,
			change_percent TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('up', 'down', 'neutral')),
			position INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS sectors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			position INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS price_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			price TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS operation_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			operation_type TEXT NOT NULL,
			subject TEXT NOT NULL,
			status TEXT NOT NULL,
			details TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}
	if err := exec(tx, "CREATE INDEX IF NOT EXISTS idx_operation_logs_created_at ON operation_logs(created_at)"); err != nil {
		return err
	}

	seed, err := loadCatalogSeed(catalogSeedYAML)
	if err != nil {
		return err
	}
	if err := seedCatalog(tx, seed); err != nil {
		return err
	}

	return tx.Commit()
}

// seedCatalog fills each catalog table only while it is empty.
func seedCatalog(tx *sql.Tx, seed *catalogSeed) error {
	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM markets").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		for i, m := range seed.Markets {
			if _, err := tx.Exec(`
				INSERT INTO markets (index_name, region, price, change, change_percent, status, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, m.IndexName, m.Region, m.Price, m.Change, m.ChangePercent, string(m.Status), i); err != nil {
				return err
			}
		}
	}

	if err := tx.QueryRow("SELECT COUNT(*) FROM sectors").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		for i, s := range seed.Sectors {
			if _, err := tx.Exec("INSERT INTO sectors (name, description, position) VALUES (?, ?, ?)", s.Name, s.Description, i); err != nil {
				return err
			}
		}
	}

	if err := tx.QueryRow("SELECT COUNT(*) FROM price_points").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		for i, p := range seed.Performance {
			if _, err := tx.Exec("INSERT INTO price_points (label, price, position) VALUES (?, ?, ?)", p.Label, p.Price, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func exec(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}
