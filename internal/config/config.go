package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

var (
	ErrMissingHost        = errors.New("jira.host is required")
	ErrMissingCredentials = errors.New("jira.principal and jira.token are required")
)

type Config struct {
	Jira     JiraConfig     `toml:"jira"`
	UI       UIConfig       `toml:"ui"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type JiraConfig struct {
	Host            string   `toml:"host"`
	Principal       string   `toml:"principal"`
	Token           string   `toml:"token"`
	DefaultBoardID  int      `toml:"default_board_id"`
	CoreAPIVersion  string   `toml:"core_api_version"`
	AgileAPIVersion string   `toml:"agile_api_version"`
	RequestTimeout  Duration `toml:"request_timeout"`
}

type UIConfig struct {
	Theme           string   `toml:"theme"` // default | mono
	RefreshInterval int      `toml:"refresh_interval"`
	TickRate        Duration `toml:"tick_rate"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Duration is a time.Duration that reads and writes as a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText parses values such as "30s" or "250ms".
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" || raw == "0" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default(dbPath string) Config {
	return Config{
		Jira: JiraConfig{
			Host:            "https://your-domain.atlassian.net",
			CoreAPIVersion:  "3",
			AgileAPIVersion: "1.0",
			RequestTimeout:  Duration{30 * time.Second},
		},
		UI: UIConfig{
			Theme:           "default",
			RefreshInterval: 30,
			TickRate:        Duration{250 * time.Millisecond},
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".jdeck/log",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Jira.CoreAPIVersion) == "" {
		return errors.New("jira.core_api_version is required")
	}
	if strings.TrimSpace(c.Jira.AgileAPIVersion) == "" {
		return errors.New("jira.agile_api_version is required")
	}
	if c.Jira.DefaultBoardID < 0 {
		return fmt.Errorf("jira.default_board_id must be >= 0, got %d", c.Jira.DefaultBoardID)
	}
	if c.Jira.RequestTimeout.Duration < 0 {
		return errors.New("jira.request_timeout must be >= 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.UI.Theme)) {
	case "", "default", "mono":
	default:
		return fmt.Errorf("invalid ui.theme: %q", c.UI.Theme)
	}
	if c.UI.RefreshInterval < 0 {
		return fmt.Errorf("ui.refresh_interval must be >= 0, got %d", c.UI.RefreshInterval)
	}
	if c.UI.TickRate.Duration <= 0 {
		return errors.New("ui.tick_rate must be > 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// RequireConnection reports whether the Jira connection fields are usable.
func (c Config) RequireConnection() error {
	host := strings.TrimSpace(c.Jira.Host)
	if host == "" {
		return ErrMissingHost
	}
	u, err := url.Parse(host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid jira.host %q: expected scheme and host", c.Jira.Host)
	}
	if strings.TrimSpace(c.Jira.Principal) == "" || strings.TrimSpace(c.Jira.Token) == "" {
		return ErrMissingCredentials
	}
	return nil
}

// RefreshInterval returns the auto refresh period, zero when disabled.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.UI.RefreshInterval) * time.Second
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteDefault writes cfg to path unless a file already exists there.
func WriteDefault(path string, cfg Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// UpsertDefaultBoard rewrites jira.default_board_id and keeps every other key.
func UpsertDefaultBoard(path string, boardID int) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if boardID <= 0 {
		return fmt.Errorf("board id must be > 0, got %d", boardID)
	}

	doc := map[string]any{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(content) > 0 {
			if err := toml.Unmarshal(content, &doc); err != nil {
				return fmt.Errorf("decode toml: %w", err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("read config: %w", err)
	}

	jira, _ := doc["jira"].(map[string]any)
	if jira == nil {
		jira = map[string]any{}
	}
	jira["default_board_id"] = int64(boardID)
	doc["jira"] = jira

	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
