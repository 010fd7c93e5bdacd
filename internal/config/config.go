package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	"github.com/kk-code-lab/medfind/internal/search"
)

//go:embed config.toml.sample
var configTemplate string

type Config struct {
	BaseURL        string   `toml:"base_url"`
	Debounce       Duration `toml:"debounce"`
	PageSize       int      `toml:"page_size"`
	RequestTimeout Duration `toml:"request_timeout"`
	SessionDir     string   `toml:"session_dir"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(strings.TrimSpace(string(text)))
	return err
}

func Default() *Config {
	return &Config{
		BaseURL:        backend.DefaultBaseURL,
		Debounce:       Duration{search.DefaultDebounceDelay},
		PageSize:       query.DefaultPageSize,
		RequestTimeout: Duration{backend.DefaultTimeout},
		SessionDir:     recent.SessionDir(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/medfind/config.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "medfind", "config.toml"), nil
}

// Load reads the config at path. A missing file yields the defaults; unset
// fields are filled in from them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.Debounce.Duration == 0 {
		c.Debounce = defaults.Debounce
	}
	if c.PageSize == 0 {
		c.PageSize = defaults.PageSize
	}
	if c.RequestTimeout.Duration == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if strings.TrimSpace(c.SessionDir) == "" {
		c.SessionDir = defaults.SessionDir
	}
}

func (c *Config) Validate() error {
	if c.Debounce.Duration < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	return nil
}

// Marshal renders the effective configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteTemplate writes the commented sample config to path without
// overwriting an existing file.
func WriteTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.WriteString(configTemplate); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}
