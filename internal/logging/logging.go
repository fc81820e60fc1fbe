package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	serviceName   = "etforacle"
	defaultPrefix = serviceName
	dateLayout    = "2006-01-02"
)

// DailyWriter appends to <prefix>-<yyyy-mm-dd>.log in its directory,
// switching files when the local date changes.
type DailyWriter struct {
	dir       string
	prefix    string
	retention int
	now       func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

// WriterOptions configures a DailyWriter. An empty Prefix means
// "etforacle"; RetentionDays of 0 keeps every file.
type WriterOptions struct {
	Dir           string
	Prefix        string
	RetentionDays int
}

// NewDailyWriter creates the directory and opens today's file.
func NewDailyWriter(opts WriterOptions) (*DailyWriter, error) {
	return newDailyWriter(opts, time.Now)
}

func newDailyWriter(opts WriterOptions, now func() time.Time) (*DailyWriter, error) {
	if opts.Dir == "" {
		return nil, errors.New("log directory is required")
	}
	if opts.RetentionDays < 0 {
		return nil, fmt.Errorf("invalid log retention %d", opts.RetentionDays)
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if strings.ContainsAny(prefix, `/\`) {
		return nil, fmt.Errorf("invalid log file prefix %q", prefix)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}

	w := &DailyWriter{dir: opts.Dir, prefix: prefix, retention: opts.RetentionDays, now: now}
	if err := w.openFor(now()); err != nil {
		return nil, err
	}
	return w, nil
}

// Path returns the file currently written to.
func (w *DailyWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pathFor(w.day)
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t := w.now(); t.Format(dateLayout) != w.day || w.file == nil {
		if err := w.openFor(t); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *DailyWriter) pathFor(day string) string {
	return filepath.Join(w.dir, w.prefix+"-"+day+".log")
}

// openFor swaps to the file for t's date and prunes expired files.
// Callers hold mu, except during construction.
func (w *DailyWriter) openFor(t time.Time) error {
	day := t.Format(dateLayout)
	file, err := os.OpenFile(w.pathFor(day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	w.file = file
	w.day = day
	w.prune(t)
	return nil
}

func (w *DailyWriter) prune(t time.Time) {
	if w.retention == 0 {
		return
	}
	matches, err := filepath.Glob(filepath.Join(w.dir, w.prefix+"-*.log"))
	if err != nil {
		return
	}
	today, _ := time.ParseInLocation(dateLayout, t.Format(dateLayout), t.Location())
	cutoff := today.AddDate(0, 0, -w.retention)
	for _, path := range matches {
		name := filepath.Base(path)
		day := strings.TrimSuffix(strings.TrimPrefix(name, w.prefix+"-"), ".log")
		date, err := time.ParseInLocation(dateLayout, day, t.Location())
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			_ = os.Remove(path)
		}
	}
}

// Options configures NewLogger.
type Options struct {
	Dir           string
	FilePrefix    string
	Level         string
	Format        string
	RetentionDays int
	// Stdout receives a copy of every record; nil means os.Stdout.
	Stdout io.Writer
}

// NewLogger creates a slog.Logger writing to stdout and a daily file and
// installs it as the default logger.
func NewLogger(opts Options) (*slog.Logger, *DailyWriter, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	writer, err := NewDailyWriter(WriterOptions{
		Dir:           opts.Dir,
		Prefix:        opts.FilePrefix,
		RetentionDays: opts.RetentionDays,
	})
	if err != nil {
		return nil, nil, err
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	handler := newHandler(io.MultiWriter(stdout, writer), level, opts.Format)
	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)
	return logger, writer, nil
}

// ParseLevel accepts debug, info, warn, error or a numeric slog level.
// Empty means info.
func ParseLevel(value string) (slog.Level, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	if i, err := strconv.Atoi(value); err == nil {
		return slog.Level(i), nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
}

func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, options)
	}
	return slog.NewTextHandler(w, options)
}
