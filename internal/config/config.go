// ABOUTME: Configuration loading and parsing for toolhouse-hub
// ABOUTME: Supports TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "TOOLHOUSE_HUB_CONFIG"

const appName = "toolhouse-hub"

// Storage backends.
const (
	BackendFile    = "file"
	BackendSQLite  = "sqlite"
	BackendSQLite3 = "sqlite3"
	BackendMemory  = "memory"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete toolhouse-hub configuration
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Storage StorageConfig `toml:"storage"`
	HTTP    HTTPConfig    `toml:"http"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
}

// CatalogConfig selects the agent catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// StorageConfig holds conversation history storage settings
type StorageConfig struct {
	Backend    string `toml:"backend"`
	Path       string `toml:"path"`
	Key        string `toml:"key"`
	MaxEntries int    `toml:"max_entries"`
}

// HTTPConfig holds settings for requests to agent endpoints
type HTTPConfig struct {
	Timeout   time.Duration `toml:"-"`
	APIKey    string        `toml:"api_key"`
	UserAgent string        `toml:"user_agent"`

	// Raw string value for TOML unmarshaling
	TimeoutRaw string `toml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxAgeDays int    `toml:"max_age_days"`
	MaxBackups int    `toml:"max_backups"`
}

// UIConfig holds terminal output settings
type UIConfig struct {
	Color    string `toml:"color"`
	Markdown bool   `toml:"markdown"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendFile,
			Path:       filepath.Join(dataHome(), appName),
			Key:        "toolhouse-chat-history",
			MaxEntries: 50,
		},
		HTTP: HTTPConfig{
			Timeout:    2 * time.Minute,
			TimeoutRaw: "2m",
			UserAgent:  appName,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "text",
			MaxSizeMB:  10,
			MaxAgeDays: 28,
			MaxBackups: 3,
		},
		UI: UIConfig{
			Color:    ColorAuto,
			Markdown: true,
		},
	}
}

// Path returns the config file location, honouring TOOLHOUSE_HUB_CONFIG and
// XDG_CONFIG_HOME.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName, "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// dataHome returns $XDG_DATA_HOME or ~/.local/share.
func dataHome() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Settings absent from the file keep their defaults.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	meta, err := toml.Decode(expanded, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parsing config file: unknown keys: %s", strings.Join(keys, ", "))
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist. It reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// expandHome turns a leading "~/" into the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendSQLite3:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of file, sqlite, sqlite3, memory (got %q)", c.Storage.Backend)
	}

	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	if c.Storage.MaxEntries <= 0 {
		return fmt.Errorf("storage.max_entries must be positive")
	}

	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	switch c.UI.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("ui.color must be one of auto, always, never (got %q)", c.UI.Color)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	raw := strings.TrimSpace(cfg.HTTP.TimeoutRaw)
	if raw == "" || raw == "0" {
		cfg.HTTP.Timeout = 0
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing http.timeout %q: %w", raw, err)
	}
	cfg.HTTP.Timeout = d
	return nil
}

// Encode writes cfg as TOML, used by the init command.
func Encode(cfg *Config) ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return []byte(b.String()), nil
}
