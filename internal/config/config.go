package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "ETF_ORACLE"
	defaultDBName  = "etforacle.db"
	configFileName = "config"
)

// Config is the resolved application configuration.
type Config struct {
	Server  ServerConfig `mapstructure:"server"`
	DataDir string       `mapstructure:"data_dir"`
	DBName  string       `mapstructure:"db_name"`
	Log     LogConfig    `mapstructure:"log"`
	AI      AIConfig     `mapstructure:"ai"`
	View    ViewConfig   `mapstructure:"view"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	WebDir string `mapstructure:"web_dir"`
}

type LogConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	FilePrefix    string `mapstructure:"file_prefix"`
	RetentionDays int    `mapstructure:"retention_days"`
}

type AIConfig struct {
	Provider       string        `mapstructure:"provider"`
	Model          string        `mapstructure:"model"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type ViewConfig struct {
	Policy string `mapstructure:"policy"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"host":     "server.host",
	"port":     "server.port",
	"web-dir":  "server.web_dir",
	"data-dir": "data_dir",
	"provider": "ai.provider",
	"model":    "ai.model",
	"base-url": "ai.base_url",
	"policy":   "view.policy",
}

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.web_dir", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("db_name", defaultDBName)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_prefix", "etforacle")
	v.SetDefault("log.retention_days", 7)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.request_timeout", time.Duration(0))
	v.SetDefault("view.policy", "latest-selection")
}

// Load resolves configuration from defaults, an optional config file,
// ETF_ORACLE_* environment variables and any flags that were set, in
// increasing precedence. configFile may be empty.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		if dir, err := appConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.AI.APIKey = resolveAPIKey(cfg.AI.APIKey)
	if strings.TrimSpace(cfg.DBName) == "" {
		cfg.DBName = defaultDBName
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveAPIKey falls back to API_KEY and then GEMINI_API_KEY. An empty
// result is allowed.
func resolveAPIKey(configured string) string {
	if key := strings.TrimSpace(configured); key != "" {
		return key
	}
	for _, name := range []string{"API_KEY", "GEMINI_API_KEY"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.AI.RequestTimeout < 0 {
		return fmt.Errorf("invalid ai.request_timeout %s", c.AI.RequestTimeout)
	}
	if c.Log.RetentionDays < 0 {
		return fmt.Errorf("invalid log.retention_days %d", c.Log.RetentionDays)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ResolveDataDir returns the configured data directory, or the per-user app
// directory when none is set. The directory is created if missing.
func (c *Config) ResolveDataDir() (string, error) {
	dir := strings.TrimSpace(c.DataDir)
	if dir == "" {
		appDir, err := appConfigDir()
		if err != nil {
			return "", err
		}
		dir = appDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.DBName), nil
}

// LogDir returns the directory for daily log files.
func (c *Config) LogDir() (string, error) {
	dir, err := c.ResolveDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "ETFOracle"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "ETFOracle"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "etforacle"), nil
	}
	return filepath.Join(configDir, "etforacle"), nil
}
