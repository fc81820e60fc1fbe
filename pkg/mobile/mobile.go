package mobile

import (
	"context"
	"encoding/json"

	"etforacle/pkg/etforacle"
)

// Core wraps the ETF Oracle core for gomobile bindings. Every value crosses
// the boundary as a JSON string.
type Core struct {
	core *etforacle.Core
}

// Open initializes the core with a database path and a Gemini API key.
// An empty key is accepted. Analyses then fail: the selected market stays
// recorded, loading clears and any earlier insight is kept.
func Open(dbPath, apiKey string) (*Core, error) {
	generator, err := etforacle.NewGenerator(etforacle.GeneratorConfig{
		Provider: etforacle.ProviderGemini,
		APIKey:   apiKey,
	})
	if err != nil {
		return nil, err
	}
	return open(dbPath, generator)
}

func open(dbPath string, generator etforacle.Generator) (*Core, error) {
	core, err := etforacle.OpenWithOptions(etforacle.Options{
		DBPath:    dbPath,
		Generator: generator,
	})
	if err != nil {
		return nil, err
	}
	return &Core{core: core}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// MarketsJSON returns the market overview cards.
func (c *Core) MarketsJSON() (string, error) {
	data, err := c.core.ListMarkets()
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// SectorsJSON returns the analyzer sectors.
func (c *Core) SectorsJSON() (string, error) {
	data, err := c.core.ListSectors()
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// PerformanceJSON returns the intraday chart series.
func (c *Core) PerformanceJSON() (string, error) {
	data, err := c.core.PriceSeries()
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// SelectMarket starts an analysis; poll StateJSON for the result.
func (c *Core) SelectMarket(market string) {
	c.core.SelectMarket(market)
}

// SelectSector starts an analysis of the sector's ETF market.
func (c *Core) SelectSector(sector string) {
	c.core.SelectSector(sector)
}

// StateJSON returns the current insight view state.
func (c *Core) StateJSON() (string, error) {
	return marshalJSON(c.core.ViewState())
}

// TickerDetail returns the deep-dive text for one ETF. It blocks until the
// request completes.
func (c *Core) TickerDetail(ticker string) (string, error) {
	return c.core.RequestTickerDetail(context.Background(), ticker)
}

// OperationLogsJSON returns recent operation logs.
func (c *Core) OperationLogsJSON(limit, offset int) (string, error) {
	data, err := c.core.GetOperationLogs(limit, offset)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
