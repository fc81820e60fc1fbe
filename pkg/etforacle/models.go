package etforacle

import "time"

// RiskLevel is the qualitative risk label attached to an ETF pick.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// MarketStatus is the direction of an index's last move.
type MarketStatus string

const (
	StatusUp      MarketStatus = "up"
	StatusDown    MarketStatus = "down"
	StatusNeutral MarketStatus = "neutral"
)

// Valid reports whether s is one of the known statuses.
func (s MarketStatus) Valid() bool {
	switch s {
	case StatusUp, StatusDown, StatusNeutral:
		return true
	}
	return false
}

// MarketSummary is a static index card shown on the dashboard.
type MarketSummary struct {
	Region        string       `json:"region" yaml:"region"`
	IndexName     string       `json:"index_name" yaml:"index_name"`
	Price         Amount       `json:"price" yaml:"price"`
	Change        Amount       `json:"change" yaml:"change"`
	ChangePercent Amount       `json:"change_percent" yaml:"change_percent"`
	Status        MarketStatus `json:"status" yaml:"status"`
}

// Sector is a curated ETF theme offered by the analyzer tab.
type Sector struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// PricePoint is one sample of the intraday performance chart.
type PricePoint struct {
	Label string `json:"label" yaml:"label"`
	Price Amount `json:"price" yaml:"price"`
}

// ETFRecommendation describes one ETF pick. It is declared for clients but
// never populated: the generated text is not parsed into records.
type ETFRecommendation struct {
	Ticker       string    `json:"ticker"`
	Name         string    `json:"name"`
	ExpenseRatio string    `json:"expense_ratio"`
	YTDReturn    string    `json:"ytd_return"`
	Description  string    `json:"description"`
	RiskLevel    RiskLevel `json:"risk_level"`
}

// Source is one grounding citation returned with a generation.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// MarketInsight is the result of one analysis request. A fresh value is
// produced per request and replaces the previous one wholesale.
type MarketInsight struct {
	ID              string              `json:"id"`
	Market          string              `json:"market"`
	Model           string              `json:"model,omitempty"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Summary         string              `json:"summary"`
	Recommendations []ETFRecommendation `json:"recommendations"`
	Sources         []Source            `json:"sources"`
}

// OperationLog records that an insight or ticker request happened.
type OperationLog struct {
	ID         int64  `json:"id"`
	Operation  string `json:"operation_type"`
	Subject    string `json:"subject"`
	Status     string `json:"status"`
	Details    string `json:"details,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at,omitempty"`
}

const (
	OperationMarketInsight = "market_insight"
	OperationTickerDetail  = "ticker_detail"

	OperationStatusSuccess = "success"
	OperationStatusFailed  = "failed"
)
