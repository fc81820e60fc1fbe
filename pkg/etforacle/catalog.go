package etforacle

import (
	"database/sql"
	"errors"
	"strings"
)

// ListMarkets returns the seed index cards in display order.
func (c *Core) ListMarkets() ([]MarketSummary, error) {
	rows, err := c.db.Query(`
		SELECT region, index_name, price, change, change_percent, status
		FROM markets
		ORDER BY position, id
	`)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query markets", err)
	}
	defer rows.Close()

	markets := []MarketSummary{}
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan market", err)
		}
		markets = append(markets, m)
	}
	return markets, rows.Err()
}

// GetMarket returns the index card with the given name, matched
// case-insensitively.
func (c *Core) GetMarket(indexName string) (*MarketSummary, error) {
	name := strings.TrimSpace(indexName)
	if name == "" {
		return nil, NewError(ErrCodeInvalidInput, "index name is required")
	}
	row := c.db.QueryRow(`
		SELECT region, index_name, price, change, change_percent, status
		FROM markets
		WHERE index_name = ? COLLATE NOCASE
	`, name)
	m, err := scanMarket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewError(ErrCodeNotFound, "market not found: "+name)
	}
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query market", err)
	}
	return &m, nil
}

// ListSectors returns the analyzer sectors in display order.
func (c *Core) ListSectors() ([]Sector, error) {
	rows, err := c.db.Query("SELECT name, COALESCE(description, '') FROM sectors ORDER BY position, id")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query sectors", err)
	}
	defer rows.Close()

	sectors := []Sector{}
	for rows.Next() {
		var s Sector
		if err := rows.Scan(&s.Name, &s.Description); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan sector", err)
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

// PriceSeries returns the intraday series shown by the performance chart.
func (c *Core) PriceSeries() ([]PricePoint, error) {
	rows, err := c.db.Query("SELECT label, price FROM price_points ORDER BY position, id")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query price series", err)
	}
	defer rows.Close()

	points := []PricePoint{}
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.Label, &p.Price); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan price point", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMarket(row rowScanner) (MarketSummary, error) {
	var m MarketSummary
	var status string
	if err := row.Scan(&m.Region, &m.IndexName, &m.Price, &m.Change, &m.ChangePercent, &status); err != nil {
		return MarketSummary{}, err
	}
	m.Status = MarketStatus(status)
	return m, nil
}
