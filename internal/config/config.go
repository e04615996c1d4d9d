package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/janekbaraniewski/wfdash/internal/projection"
	"github.com/janekbaraniewski/wfdash/internal/source"
)

const (
	defaultAddr           = "127.0.0.1:8050"
	defaultRangeStart     = "2025-10-01"
	defaultRangeEnd       = "2027-12-31"
	defaultSourceTimeout  = 10
	defaultRefreshSeconds = 30
)

type StoreConfig struct {
	// Path of the SQLite file; empty means the XDG state dir default.
	Path string `json:"path"`
}

type SourceConfig struct {
	Path           string `json:"path"`
	URL            string `json:"url"`
	DataSheet      string `json:"data_sheet"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type UIConfig struct {
	RangeStart             string `json:"range_start"`
	RangeEnd               string `json:"range_end"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
}

type Config struct {
	Store   StoreConfig  `json:"store"`
	Source  SourceConfig `json:"source"`
	Server  ServerConfig `json:"server"`
	UI      UIConfig     `json:"ui"`
	LogMode string       `json:"log_mode"`
}

func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			DataSheet:      source.DefaultDataSheet,
			TimeoutSeconds: defaultSourceTimeout,
		},
		Server: ServerConfig{Addr: defaultAddr},
		UI: UIConfig{
			RangeStart:             defaultRangeStart,
			RangeEnd:               defaultRangeEnd,
			RefreshIntervalSeconds: defaultRefreshSeconds,
		},
		LogMode: "dev",
	}
}

const dbFileName = "workflow-db.sqlite"

// appDir resolves a per-user wfdash directory: the Windows env var, then the
// XDG one, then the XDG default under the home dir.
func appDir(windowsEnv, xdgEnv string, homeDefault ...string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv(windowsEnv), "wfdash")
	}
	if base := strings.TrimSpace(os.Getenv(xdgEnv)); base != "" {
		return filepath.Join(base, "wfdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append(append([]string{home}, homeDefault...), "wfdash")...)
}

func ConfigDir() string {
	return appDir("APPDATA", "XDG_CONFIG_HOME", ".config")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// StateDir holds the contributions database.
func StateDir() string {
	return appDir("LOCALAPPDATA", "XDG_STATE_HOME", ".local", "state")
}

// DBPath is the configured store path, or the state dir default.
func (c Config) DBPath() string {
	if p := strings.TrimSpace(c.Store.Path); p != "" {
		return p
	}
	return filepath.Join(StateDir(), dbFileName)
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the settings file, fills defaults for anything left empty
// and applies WFDASH_* environment overrides. A missing file is not an error.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Source.DataSheet == "" {
		cfg.Source.DataSheet = def.Source.DataSheet
	}
	if cfg.Source.TimeoutSeconds <= 0 {
		cfg.Source.TimeoutSeconds = def.Source.TimeoutSeconds
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.UI.RangeStart == "" {
		cfg.UI.RangeStart = def.UI.RangeStart
	}
	if cfg.UI.RangeEnd == "" {
		cfg.UI.RangeEnd = def.UI.RangeEnd
	}
	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = def.UI.RefreshIntervalSeconds
	}
	if cfg.LogMode == "" {
		cfg.LogMode = def.LogMode
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("WFDASH_DB_PATH")); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("WFDASH_SOURCE_PATH")); v != "" {
		cfg.Source.Path = v
		cfg.Source.URL = ""
	}
	if v := strings.TrimSpace(os.Getenv("WFDASH_SOURCE_URL")); v != "" {
		cfg.Source.URL = v
		cfg.Source.Path = ""
	}
	if v := strings.TrimSpace(os.Getenv("WFDASH_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("WFDASH_LOG_MODE")); v != "" {
		cfg.LogMode = v
	}
}

// SourceConfig converts the settings into the bulk source's config.
func (c Config) SourceConfig() source.Config {
	return source.Config{
		Path:      c.Source.Path,
		URL:       c.Source.URL,
		DataSheet: c.Source.DataSheet,
		Timeout:   time.Duration(c.Source.TimeoutSeconds) * time.Second,
	}
}

// Range parses the configured date-picker bounds.
func (c UIConfig) Range() (projection.Range, error) {
	return projection.ParseRange(c.RangeStart, c.RangeEnd)
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveRange persists the dashboard's date range into the config file
// (read-modify-write).
func SaveRange(r projection.Range) error {
	return SaveRangeTo(ConfigPath(), r)
}

func SaveRangeTo(path string, r projection.Range) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := readFile(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.UI.RangeStart = r.Start.ISO()
	cfg.UI.RangeEnd = r.End.ISO()
	return SaveTo(path, cfg)
}

// readFile loads the file without env overrides so they are never persisted.
func readFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}
