// Package config loads the server configuration from an optional YAML file.
// Flags in cmd/server override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DataDir holds the SQLite database file.
	DataDir string `yaml:"data_dir"`

	// StaticDir is served as the frontend root.
	StaticDir string `yaml:"static_dir"`

	// DefaultSyncIntervalMin is used when a feed does not specify its own
	// refresh interval.
	DefaultSyncIntervalMin int `yaml:"default_sync_interval_min"`

	// SyncWorkers bounds how many feeds are fetched concurrently.
	SyncWorkers int `yaml:"sync_workers"`

	// FetchTimeoutSec is the per-feed fetch deadline in seconds.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`

	// HorizonDays bounds recurrence expansion and conflict scanning into
	// the future.
	HorizonDays int `yaml:"horizon_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:                 ":8088",
		DataDir:                "/data",
		StaticDir:              "./static",
		DefaultSyncIntervalMin: 15,
		SyncWorkers:            4,
		FetchTimeoutSec:        30,
		HorizonDays:            365,
	}
}

// Load reads the configuration file at path, filling unset fields with
// defaults. A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.StaticDir == "" {
		c.StaticDir = d.StaticDir
	}
	if c.DefaultSyncIntervalMin <= 0 {
		c.DefaultSyncIntervalMin = d.DefaultSyncIntervalMin
	}
	if c.SyncWorkers <= 0 {
		c.SyncWorkers = d.SyncWorkers
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = d.FetchTimeoutSec
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
}
