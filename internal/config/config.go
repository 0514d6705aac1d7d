// Package config loads mathsketch settings from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mathsketch/internal/analysis"
)

type Speech struct {
	Enabled  bool    `toml:"enabled"`
	Command  string  `toml:"command"`
	Language string  `toml:"language"`
	Rate     float64 `toml:"rate"`
	Pitch    float64 `toml:"pitch"`
}

// Discovery looks up the analysis service over mDNS when no endpoint is set.
type Discovery struct {
	Enabled bool     `toml:"enabled"`
	Service string   `toml:"service"`
	Wait    Duration `toml:"wait"`
}

// Feed broadcasts results to LAN subscribers over websocket.
type Feed struct {
	Enabled bool   `toml:"enabled"`
	Port    int    `toml:"port"`
	Service string `toml:"service"`
}

type Notify struct {
	Enabled bool `toml:"enabled"`
}

type Config struct {
	Endpoint  string    `toml:"endpoint"`
	Prompt    string    `toml:"prompt"`
	Timeout   Duration  `toml:"timeout"`
	Speech    Speech    `toml:"speech"`
	Discovery Discovery `toml:"discovery"`
	Feed      Feed      `toml:"feed"`
	Notify    Notify    `toml:"notify"`
}

// Duration reads TOML strings such as "30s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *Config {
	return &Config{
		Endpoint: analysis.DefaultEndpoint,
		Prompt:   analysis.DefaultPrompt,
		Speech: Speech{
			Enabled:  true,
			Command:  "espeak-ng",
			Language: "en-US",
			Rate:     1,
			Pitch:    1,
		},
		Discovery: Discovery{
			Service: "_mathsketch._tcp",
			Wait:    Duration{2 * time.Second},
		},
		Feed: Feed{
			Port:    8888,
			Service: "_mathsketch-feed._tcp",
		},
	}
}

// Path returns the default location of the config file.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mathsketch", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies MATHSKETCH_* overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("MATHSKETCH_ENDPOINT")); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("MATHSKETCH_PROMPT")); v != "" {
		c.Prompt = v
	}
	if v := strings.TrimSpace(os.Getenv("MATHSKETCH_SPEECH_COMMAND")); v != "" {
		c.Speech.Command = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("endpoint %q must be an http(s) URL", c.Endpoint))
		}
	} else if !c.Discovery.Enabled {
		errs = append(errs, errors.New("endpoint is empty and discovery is disabled"))
	}
	if c.Timeout.Duration < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if c.Speech.Rate <= 0 || c.Speech.Rate > 10 {
		errs = append(errs, fmt.Errorf("speech.rate %v out of range (0,10]", c.Speech.Rate))
	}
	if c.Speech.Pitch < 0 || c.Speech.Pitch > 2 {
		errs = append(errs, fmt.Errorf("speech.pitch %v out of range [0,2]", c.Speech.Pitch))
	}
	if c.Feed.Enabled && (c.Feed.Port < 1 || c.Feed.Port > 65535) {
		errs = append(errs, fmt.Errorf("feed.port %d out of range", c.Feed.Port))
	}
	return errors.Join(errs...)
}
