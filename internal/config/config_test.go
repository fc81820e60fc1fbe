package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the app config dir and working directory at empty temp
// dirs and clears key-related environment variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ETF_ORACLE_AI_API_KEY", "")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
	assert.Equal(t, "etforacle.db", cfg.DBName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "etforacle", cfg.Log.FilePrefix)
	assert.Equal(t, 7, cfg.Log.RetentionDays)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Empty(t, cfg.AI.Model)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Zero(t, cfg.AI.RequestTimeout)
	assert.Equal(t, "latest-selection", cfg.View.Policy)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9100
ai:
  provider: anthropic
  request_timeout: 45s
view:
  policy: last-completion
log:
  file_prefix: oracle-api
  retention_days: 14
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "oracle-api", cfg.Log.FilePrefix)
	assert.Equal(t, 14, cfg.Log.RetentionDays)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, 45*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, "last-completion", cfg.View.Policy)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFindsConfigInWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("db_name: other.db\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.DBName)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o644))
	t.Setenv("ETF_ORACLE_SERVER_PORT", "9200")
	t.Setenv("ETF_ORACLE_AI_MODEL", "gemini-2.5-pro")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ETF_ORACLE_SERVER_PORT", "9200")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8000, "")
	flags.String("data-dir", "", "")
	dataDir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, flags.Parse([]string{"--port", "9300", "--data-dir", dataDir}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoadUnsetFlagKeepsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ETF_ORACLE_SERVER_PORT", "9200")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 8000, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestAPIKeyFallback(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		apiKey     string
		geminiKey  string
		want       string
	}{
		{"configured wins", "from-config", "from-env", "from-gemini", "from-config"},
		{"api key env", "", "from-env", "from-gemini", "from-env"},
		{"gemini env", "", "", "from-gemini", "from-gemini"},
		{"absent", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("ETF_ORACLE_AI_API_KEY", tt.configured)
			t.Setenv("API_KEY", tt.apiKey)
			t.Setenv("GEMINI_API_KEY", tt.geminiKey)

			cfg, err := Load("", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.AI.APIKey)
		})
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("ETF_ORACLE_SERVER_PORT", "70000")
	_, err := Load("", nil)
	assert.ErrorContains(t, err, "server.port")

	t.Setenv("ETF_ORACLE_SERVER_PORT", "8000")
	t.Setenv("ETF_ORACLE_AI_REQUEST_TIMEOUT", "-1s")
	_, err = Load("", nil)
	assert.ErrorContains(t, err, "ai.request_timeout")
}

func TestResolveDataDirAndPaths(t *testing.T) {
	isolate(t)
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := &Config{DataDir: dataDir, DBName: "etforacle.db"}

	dir, err := cfg.ResolveDataDir()
	require.NoError(t, err)
	assert.Equal(t, dataDir, dir)
	assert.DirExists(t, dataDir)

	dbPath, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "etforacle.db"), dbPath)

	logDir, err := cfg.LogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "logs"), logDir)
}

func TestResolveDataDirDefaultsToAppDir(t *testing.T) {
	home := isolate(t)
	cfg := &Config{DBName: "etforacle.db"}

	dir, err := cfg.ResolveDataDir()
	require.NoError(t, err)
	assert.DirExists(t, dir)
	if runtime.GOOS != "windows" {
		rel, err := filepath.Rel(home, dir)
		require.NoError(t, err)
		assert.NotContains(t, rel, "..")
	}
}

func TestIsMacOSWindows(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "darwin", IsMacOS())
	assert.Equal(t, runtime.GOOS == "windows", IsWindows())
}
