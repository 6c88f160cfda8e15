// Package config loads the host configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/borgmon/timeblock/pkg/logx"
	"github.com/borgmon/timeblock/pkg/notify"
	"github.com/borgmon/timeblock/pkg/schedule"
	"github.com/borgmon/timeblock/pkg/store"
	yaml "go.yaml.in/yaml/v3"
)

// Config is the host configuration. Alert settings are not here: they live in
// the block store next to the blocks so every writer sees the same values.
type Config struct {
	// PollInterval is a Go duration string, default "5s"
	PollInterval string       `yaml:"poll_interval"`
	Store        store.Config `yaml:"store"`
	Log          logx.Config  `yaml:"log"`
	Notify       NotifyConfig `yaml:"notify"`
	AutoStart    bool         `yaml:"auto_start"`
	WatchStore   bool         `yaml:"watch_store"`
}

// NotifyConfig selects how alerts are rendered
type NotifyConfig struct {
	Styles     []string `yaml:"styles"`
	SoundFile  string   `yaml:"sound_file"`
	RatePerSec int      `yaml:"rate_per_sec"`
	QueueSize  int      `yaml:"queue_size"`
}

// Default returns the configuration used when no file exists
func Default() Config {
	return Config{
		PollInterval: schedule.DefaultInterval.String(),
		Store:        store.Config{Driver: "file"},
		Log:          logx.Config{Level: "info", Console: true},
		Notify: NotifyConfig{
			Styles:     []string{notify.StyleSystem},
			RatePerSec: notify.DefaultRatePerSec,
			QueueSize:  notify.DefaultQueueSize,
		},
		WatchStore: true,
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "timeblock", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Interval returns the parsed poll interval
func (c Config) Interval() time.Duration {
	d, err := ParseDurationOrDefault("poll_interval", c.PollInterval, schedule.DefaultInterval)
	if err != nil {
		return schedule.DefaultInterval
	}
	return d
}

// Validate rejects values the host cannot run with
func (c Config) Validate() error {
	d, err := ParseDurationOrDefault("poll_interval", c.PollInterval, schedule.DefaultInterval)
	if err != nil {
		return err
	}
	if d >= time.Minute {
		return fmt.Errorf("poll_interval: %s would skip whole minutes, keep it under 1m", d)
	}
	if c.Notify.RatePerSec < 0 {
		return fmt.Errorf("notify.rate_per_sec: must be >= 0")
	}
	if c.Notify.QueueSize < 0 {
		return fmt.Errorf("notify.queue_size: must be >= 0")
	}
	return nil
}

// Save writes cfg to path as YAML, creating the directory
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
