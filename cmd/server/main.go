package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"etforacle/internal/api"
	"etforacle/internal/config"
	"etforacle/internal/logging"
	"etforacle/pkg/etforacle"
)

var getppid = os.Getppid
var sleep = time.Sleep
var exit = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "server",
		Short:         "ETF Oracle dashboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, configFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Path to a config file (default: config.yaml in the app config dir or working dir)")
	pf.String("data-dir", "", "Directory for storing database and application data")
	pf.String("provider", "", "AI provider: gemini, openai or anthropic")
	pf.String("model", "", "Model name (default depends on provider)")
	pf.String("base-url", "", "Override the AI API base URL")
	pf.String("policy", "", "Insight view policy: latest-selection or last-completion")

	root.Flags().Int("port", 8000, "Port to run the server on")
	root.Flags().String("host", "127.0.0.1", "Host to bind the server to")
	root.Flags().String("web-dir", "", "Directory for SPA static files (optional)")

	root.AddCommand(
		newAnalyzeCmd(&configFile),
		newDetailCmd(&configFile),
		newMarketsCmd(&configFile),
	)
	return root
}

// app bundles what every command needs after startup.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	core   *etforacle.Core
	writer *logging.DailyWriter
}

func (a *app) Close() {
	if err := a.core.Close(); err != nil {
		a.logger.Error("failed to close core", "err", err)
	}
	if err := a.writer.Close(); err != nil {
		a.logger.Error("failed to close log writer", "err", err)
	}
}

// openApp resolves configuration and opens the logger and core. Log lines
// are mirrored to logOut in addition to the daily file.
func openApp(cmd *cobra.Command, configFile string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logDir, err := cfg.LogDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	logger, writer, err := logging.NewLogger(logging.Options{
		Dir:           logDir,
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		FilePrefix:    cfg.Log.FilePrefix,
		RetentionDays: cfg.Log.RetentionDays,
		Stdout:        logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	core, err := openCore(cfg, logger)
	if err != nil {
		_ = writer.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, core: core, writer: writer}, nil
}

func openCore(cfg *config.Config, logger *slog.Logger) (*etforacle.Core, error) {
	provider, err := etforacle.ParseProvider(cfg.AI.Provider)
	if err != nil {
		return nil, err
	}
	policy, err := etforacle.ParseViewPolicy(cfg.View.Policy)
	if err != nil {
		return nil, err
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("no API key configured; insight requests will fail", "provider", provider)
	}
	generator, err := etforacle.NewGenerator(etforacle.GeneratorConfig{
		Provider: provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	core, err := etforacle.OpenWithOptions(etforacle.Options{
		DBPath:         dbPath,
		Logger:         logger,
		Generator:      generator,
		ViewPolicy:     policy,
		RequestTimeout: cfg.AI.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize core: %w", err)
	}
	logger.Info("core opened",
		"db_path", dbPath,
		"provider", provider,
		"model", cfg.AI.Model,
		"view_policy", policy,
		"config_file", cfg.ConfigFile,
	)
	return core, nil
}

func runServer(cmd *cobra.Command, configFile string) error {
	a, err := openApp(cmd, configFile, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	if os.Getenv("ETF_ORACLE_PARENT_WATCH") == "1" {
		go watchParent(logger)
	}

	handler := api.NewRouter(a.core)
	if resolvedWebDir := resolveWebDir(a.cfg.Server.WebDir); resolvedWebDir != "" {
		logger.Info("serving SPA", "web_dir", resolvedWebDir)
		handler = api.WithSPA(handler, resolvedWebDir)
	}
	handler = middleware.Compress(5)(handler)

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr(), err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	serveErr := make(chan error, 1)
	logger.Info("server starting", "addr", listener.Addr().String(), "log_file", a.writer.Path())
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
		return err
	}
	return nil
}

func watchParent(logger *slog.Logger) {
	for {
		sleep(1 * time.Second)
		if getppid() == 1 {
			logger.Info("parent process exited; shutting down")
			exit(0)
		}
	}
}

func resolveWebDir(input string) string {
	if input != "" {
		if dirExists(input) {
			return input
		}
		return ""
	}

	candidates := []string{"web/dist", "static"}
	for _, candidate := range candidates {
		if dirExists(candidate) {
			return candidate
		}
	}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		for _, candidate := range candidates {
			path := filepath.Join(base, candidate)
			if dirExists(path) {
				return path
			}
		}
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
