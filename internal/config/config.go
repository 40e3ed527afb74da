// Package config assembles runtime settings from defaults, an optional
// YAML file, CCNAPREP_* environment variables and command-line flags, in
// that order of precedence (later wins).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ccnaprep settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Bank     BankConfig     `yaml:"bank"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Practice PracticeConfig `yaml:"practice"`
	Exam     ExamConfig     `yaml:"exam"`
}

// ServerConfig points at the answer-checking server.
type ServerConfig struct {
	URL       string        `yaml:"url"`
	CSRFToken string        `yaml:"csrf_token"`
	Timeout   time.Duration `yaml:"timeout"` // Default: 8s
}

// BankConfig locates the question bank.
type BankConfig struct {
	Path      string `yaml:"path"`
	ImageBase string `yaml:"image_base"` // Directory or http(s) URL. Default: bank directory.
	Shuffle   bool   `yaml:"shuffle"`
}

// StoreConfig locates the history database.
type StoreConfig struct {
	Path     string `yaml:"path"` // Default: $XDG_DATA_HOME/ccnaprep/history.db
	Disabled bool   `yaml:"disabled"`
}

// LogConfig configures the structured log file.
type LogConfig struct {
	File  string `yaml:"file"`  // Default: $XDG_STATE_HOME/ccnaprep/ccnaprep.log
	Level string `yaml:"level"` // debug, info, warn, error
}

// PracticeConfig tunes practice-mode timings.
type PracticeConfig struct {
	VerifyDelay  time.Duration `yaml:"verify_delay"`  // Default: 250ms
	AutoAdvance  time.Duration `yaml:"auto_advance"`  // Default: 1100ms, 0 disables
	PreloadDelay time.Duration `yaml:"preload_delay"` // Default: 300ms
}

// ExamConfig tunes exam grading.
type ExamConfig struct {
	Concurrency int `yaml:"concurrency"` // Default: 4
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://127.0.0.1:8000",
			Timeout: 8 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Practice: PracticeConfig{
			VerifyDelay:  250 * time.Millisecond,
			AutoAdvance:  1100 * time.Millisecond,
			PreloadDelay: 300 * time.Millisecond,
		},
		Exam: ExamConfig{
			Concurrency: 4,
		},
	}
}

// DefaultPath resolves the config file location:
// $CCNAPREP_CONFIG, else $XDG_CONFIG_HOME/ccnaprep/config.yaml,
// else ~/.config/ccnaprep/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv("CCNAPREP_CONFIG"); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ccnaprep", "config.yaml"), nil
}

// Load returns defaults overlaid with the YAML file at path. An empty path
// means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnv overlays CCNAPREP_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CCNAPREP_SERVER"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("CCNAPREP_CSRF_TOKEN"); v != "" {
		c.Server.CSRFToken = v
	}
	if v := os.Getenv("CCNAPREP_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("CCNAPREP_TIMEOUT: %w", err)
		}
		c.Server.Timeout = d
	}
	if v := os.Getenv("CCNAPREP_BANK"); v != "" {
		c.Bank.Path = v
	}
	if v := os.Getenv("CCNAPREP_IMAGE_BASE"); v != "" {
		c.Bank.ImageBase = v
	}
	if v := os.Getenv("CCNAPREP_SHUFFLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CCNAPREP_SHUFFLE: %w", err)
		}
		c.Bank.Shuffle = b
	}
	if v := os.Getenv("CCNAPREP_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("CCNAPREP_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("CCNAPREP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// parseDuration accepts Go durations ("8s") or bare milliseconds ("8000").
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

// ResolvedImageBase returns the image base, defaulting to the directory
// containing the bank file.
func (c Config) ResolvedImageBase() string {
	if c.Bank.ImageBase != "" {
		return c.Bank.ImageBase
	}
	if c.Bank.Path == "" {
		return ""
	}
	return filepath.Dir(c.Bank.Path)
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Bank.Path == "" {
		errs = append(errs, errors.New("question bank is required (--bank or CCNAPREP_BANK)"))
	}
	if err := validateURL(c.Server.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout))
	}
	if c.Practice.VerifyDelay < 0 || c.Practice.AutoAdvance < 0 || c.Practice.PreloadDelay < 0 {
		errs = append(errs, errors.New("practice delays must not be negative"))
	}
	if c.Exam.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("exam concurrency must be at least 1, got %d", c.Exam.Concurrency))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("server url %q: missing host", raw)
	}
	return nil
}
