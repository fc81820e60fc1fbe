package etforacle

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubGenerator returns a fixed generation and records prompts.
type stubGenerator struct {
	mu         sync.Mutex
	prompts    []string
	generation Generation
	err        error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.generation, s.err
}

func (s *stubGenerator) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestCore opens a Core on a temp database backed by gen.
func setupTestCore(t *testing.T, gen Generator) *Core {
	t.Helper()
	core, err := OpenWithOptions(Options{
		DBPath:    filepath.Join(t.TempDir(), "test.db"),
		Logger:    discardLogger(),
		Generator: gen,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}
