package api

import (
	"strings"
	"time"

	"etforacle/pkg/etforacle"
)

// maxDisplayedSources is how many grounding sources the dashboard lists.
const maxDisplayedSources = 3

type selectMarketPayload struct {
	Market string `json:"market"`
}

type tickerDetailResponse struct {
	Ticker string `json:"ticker"`
	Detail string `json:"detail"`
}

type operationLogsResponse struct {
	Items  []etforacle.OperationLog `json:"items"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

// insightStateResponse is the view snapshot shaped for rendering.
type insightStateResponse struct {
	SelectedMarket *string          `json:"selected_market"`
	Loading        bool             `json:"loading"`
	Insight        *insightResponse `json:"insight"`
}

type insightResponse struct {
	ID              string                        `json:"id"`
	Market          string                        `json:"market"`
	Model           string                        `json:"model"`
	GeneratedAt     time.Time                     `json:"generated_at"`
	Summary         string                        `json:"summary"`
	Paragraphs      []string                      `json:"paragraphs"`
	Recommendations []etforacle.ETFRecommendation `json:"recommendations"`
	Sources         []etforacle.Source            `json:"sources"`
	SourceCount     int                           `json:"source_count"`
}

func newInsightStateResponse(state etforacle.ViewState) insightStateResponse {
	resp := insightStateResponse{
		SelectedMarket: state.SelectedMarket,
		Loading:        state.Loading,
	}
	if state.Insight == nil {
		return resp
	}

	insight := state.Insight
	sources := insight.Sources
	if len(sources) > maxDisplayedSources {
		sources = sources[:maxDisplayedSources]
	}
	if sources == nil {
		sources = []etforacle.Source{}
	}
	recommendations := insight.Recommendations
	if recommendations == nil {
		recommendations = []etforacle.ETFRecommendation{}
	}
	resp.Insight = &insightResponse{
		ID:              insight.ID,
		Market:          insight.Market,
		Model:           insight.Model,
		GeneratedAt:     insight.GeneratedAt,
		Summary:         insight.Summary,
		Paragraphs:      splitParagraphs(insight.Summary),
		Recommendations: recommendations,
		Sources:         sources,
		SourceCount:     len(insight.Sources),
	}
	return resp
}

// splitParagraphs splits on newlines and drops blank lines.
func splitParagraphs(text string) []string {
	paragraphs := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}
