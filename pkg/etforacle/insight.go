package etforacle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	insightFallbackSummary = "Unable to retrieve data at this time."
	tickerFallbackDetail   = "Detailed analysis currently unavailable."
	defaultSourceTitle     = "Market Source"
	defaultSourceURI       = "#"
)

// InsightClient turns market identifiers into grounded MarketInsight values.
// It makes exactly one generator call per request and never retries.
type InsightClient struct {
	generator Generator
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

// InsightClientOptions configures an InsightClient.
type InsightClientOptions struct {
	Logger *slog.Logger
	// Timeout bounds a single request; zero leaves it to the transport.
	Timeout time.Duration
}

// NewInsightClient creates a client over the given generator.
func NewInsightClient(generator Generator, opts InsightClientOptions) *InsightClient {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightClient{
		generator: generator,
		logger:    logger,
		timeout:   opts.Timeout,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// RequestInsight asks for a trend summary and ETF picks for market.
// Recommendations are always empty; the generated text is the payload.
func (c *InsightClient) RequestInsight(ctx context.Context, market string) (*MarketInsight, error) {
	if strings.TrimSpace(market) == "" {
		return nil, NewError(ErrCodeInvalidInput, "market identifier is required")
	}

	id := c.newID()
	generation, err := c.generate(ctx, "market insight", id, buildMarketInsightPrompt(market))
	if err != nil {
		return nil, err
	}

	summary := generation.Text
	if summary == "" {
		summary = insightFallbackSummary
	}
	return &MarketInsight{
		ID:              id,
		Market:          market,
		Model:           generation.Model,
		GeneratedAt:     c.now().UTC(),
		Summary:         summary,
		Recommendations: []ETFRecommendation{},
		Sources:         normalizeSources(generation.Sources),
	}, nil
}

// RequestTickerDetail returns a free-text deep dive for a single ETF.
func (c *InsightClient) RequestTickerDetail(ctx context.Context, ticker string) (string, error) {
	if strings.TrimSpace(ticker) == "" {
		return "", NewError(ErrCodeInvalidInput, "ticker is required")
	}

	generation, err := c.generate(ctx, "ticker detail", c.newID(), buildTickerDetailPrompt(ticker))
	if err != nil {
		return "", err
	}
	if generation.Text == "" {
		return tickerFallbackDetail, nil
	}
	return generation.Text, nil
}

func (c *InsightClient) generate(ctx context.Context, operation, requestID, prompt string) (Generation, error) {
	if c.generator == nil {
		return Generation{}, requestError(operation, NewError(ErrCodeInternal, "no generator configured"))
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Info("ai generate dispatched", "operation", operation, "request_id", requestID)
	start := time.Now()
	generation, err := c.generator.Generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("ai generate failed",
			"operation", operation,
			"request_id", requestID,
			"duration_ms", elapsed.Milliseconds(),
			"err", err,
		)
		return Generation{}, requestError(operation, err)
	}
	c.logger.Info("ai generate completed",
		"operation", operation,
		"request_id", requestID,
		"model", generation.Model,
		"sources", len(generation.Sources),
		"duration_ms", elapsed.Milliseconds(),
	)
	return generation, nil
}

// normalizeSources keeps API order and duplicates, defaulting missing
// fields. Nil input yields an empty, non-nil slice.
func normalizeSources(raw []Source) []Source {
	sources := make([]Source, 0, len(raw))
	for _, s := range raw {
		if s.Title == "" {
			s.Title = defaultSourceTitle
		}
		if s.URI == "" {
			s.URI = defaultSourceURI
		}
		sources = append(sources, s)
	}
	return sources
}
