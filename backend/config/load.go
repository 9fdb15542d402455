package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/klppl/digg-invite-brutforce/backend/candidate"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

func init() {
	ini.PrettyFormat = false
}

var iniOptions = ini.LoadOptions{
	SkipUnrecognizableLines:  true,
	SpaceBeforeInlineComment: true,
}

// Default returns the stock configuration. Target.BaseURL is left empty and
// must be supplied.
func Default() *Config {
	return &Config{
		Target: Target{
			InvalidMarker: verdict.DefaultInvalidMarker,
			AcceptSignals: append([]string(nil), verdict.DefaultAcceptSignals...),
		},
		Browser: Browser{
			Headless:        true,
			PageLoadTimeout: 10 * time.Second,
			SettleDelay:     2 * time.Second,
			ViewportWidth:   800,
			ViewportHeight:  600,
			StartupAttempts: 2,
		},
		Run: Run{
			Workers:         4,
			TokensPerWorker: 10000,
			TokenLength:     candidate.DefaultLength,
			Alphabet:        candidate.DefaultAlphabet,
			Delay:           500 * time.Millisecond,
			ProgressEvery:   50,
			ResultsDir:      "results",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. Files ending in .yaml or .yml are YAML,
// anything else is INI.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	default:
		file, err := ini.LoadSources(iniOptions, path)
		if err != nil {
			return nil, errors.Wrap(err, "can't open config file")
		}
		if err := file.MapTo(cfg); err != nil {
			return nil, errors.Wrap(err, "can't map config file")
		}
	}
	return cfg, nil
}

// Write saves cfg to path in the format implied by its extension.
func Write(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create config directory")
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "encode config")
		}
		return os.WriteFile(path, data, 0o644)
	default:
		file := ini.Empty()
		if err := ini.ReflectFrom(file, cfg); err != nil {
			return errors.Wrap(err, "encode config")
		}
		return file.SaveTo(path)
	}
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target.BaseURL) == "" {
		return errors.New("target base URL is required")
	}
	u, err := url.Parse(strings.ReplaceAll(c.Target.BaseURL, "{token}", "x"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("target base URL %q must be an absolute http(s) URL", c.Target.BaseURL)
	}
	if c.Run.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.Run.TokensPerWorker <= 0 {
		return errors.New("tokens per worker must be positive")
	}
	if c.Run.Delay <= 0 {
		return errors.New("delay between attempts must be positive")
	}
	if c.Run.MaxRate < 0 {
		return errors.New("max rate must not be negative")
	}
	if c.Browser.PageLoadTimeout <= 0 {
		return errors.New("page load timeout must be positive")
	}
	return nil
}
