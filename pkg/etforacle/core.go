package etforacle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Options controls Core initialization.
type Options struct {
	DBPath         string
	Logger         *slog.Logger
	Generator      Generator
	ViewPolicy     ViewPolicy
	RequestTimeout time.Duration
}

// Core provides the dashboard catalog, the insight view and its
// operation log on top of a SQLite database.
type Core struct {
	db       *sql.DB
	logger   *slog.Logger
	insights *InsightClient
	view     *InsightView
	dbPath   string
}

// Open initializes a Core with a Gemini generator and no API key.
func Open(dbPath string) (*Core, error) {
	return OpenWithOptions(Options{DBPath: dbPath})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	if opts.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(opts.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	generator := opts.Generator
	if generator == nil {
		g, err := NewGenerator(GeneratorConfig{Provider: ProviderGemini, Logger: logger})
		if err != nil {
			return nil, err
		}
		generator = g
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	c := &Core{
		db:     db,
		logger: logger,
		insights: NewInsightClient(generator, InsightClientOptions{
			Logger:  logger,
			Timeout: opts.RequestTimeout,
		}),
		dbPath: cleanPath,
	}
	c.view = NewInsightView(c.fetchInsight, opts.ViewPolicy, logger)
	return c, nil
}

// Close releases database resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the underlying database path.
func (c *Core) DBPath() string {
	return c.dbPath
}

// Logger returns the core logger.
func (c *Core) Logger() *slog.Logger {
	return c.logger
}

// SelectMarket starts an analysis of market through the insight view.
func (c *Core) SelectMarket(market string) <-chan struct{} {
	return c.view.SelectMarket(market)
}

// SelectSector starts an analysis of the "<Sector> ETF Market" identifier.
func (c *Core) SelectSector(sector string) <-chan struct{} {
	return c.view.SelectMarket(SectorMarketIdentifier(sector))
}

// ViewState returns the current insight view snapshot.
func (c *Core) ViewState() ViewState {
	return c.view.Snapshot()
}

// ViewPolicy returns the policy the insight view was built with.
func (c *Core) ViewPolicy() ViewPolicy {
	return c.view.Policy()
}

// RequestInsight runs one analysis outside the view and records it.
func (c *Core) RequestInsight(ctx context.Context, market string) (*MarketInsight, error) {
	return c.fetchInsight(ctx, market)
}

// RequestTickerDetail returns the deep-dive text for ticker and records it.
func (c *Core) RequestTickerDetail(ctx context.Context, ticker string) (string, error) {
	start := time.Now()
	detail, err := c.insights.RequestTickerDetail(ctx, ticker)
	c.recordOperation(OperationTickerDetail, ticker, start, err, fmt.Sprintf("chars=%d", len(detail)))
	return detail, err
}

func (c *Core) fetchInsight(ctx context.Context, market string) (*MarketInsight, error) {
	start := time.Now()
	insight, err := c.insights.RequestInsight(ctx, market)
	details := ""
	if insight != nil {
		details = fmt.Sprintf("sources=%d", len(insight.Sources))
	}
	c.recordOperation(OperationMarketInsight, market, start, err, details)
	return insight, err
}

func (c *Core) recordOperation(operation, subject string, start time.Time, opErr error, details string) {
	status := OperationStatusSuccess
	if opErr != nil {
		status = OperationStatusFailed
		details = opErr.Error()
	}
	_, err := c.AddOperationLog(OperationLog{
		Operation:  operation,
		Subject:    subject,
		Status:     status,
		Details:    details,
		DurationMS: time.Since(start).Milliseconds(),
	})
	if err != nil {
		c.logger.Warn("failed to record operation log", "operation", operation, "subject", subject, "err", err)
	}
}
