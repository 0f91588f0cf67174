package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Zuo-Peng/sift/internal/extract"
)

type Config struct {
	CLIRoot     string `toml:"cli_root"`
	DesktopRoot string `toml:"desktop_root"`
	DBPath      string `toml:"db_path"`

	MaxScanBytes     int `toml:"max_scan_bytes"`
	MaxEvents        int `toml:"max_events"`
	MaxObjects       int `toml:"max_objects"`
	SearchTextBudget int `toml:"search_text_budget"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	lim := extract.DefaultLimits()
	cfg := &Config{
		CLIRoot:          filepath.Join(home, ".claude", "projects"),
		DesktopRoot:      defaultDesktopRoot(home),
		DBPath:           filepath.Join(home, ".config", "sift", "sift.db"),
		MaxScanBytes:     lim.MaxScanBytes,
		MaxEvents:        lim.MaxEvents,
		MaxObjects:       lim.MaxObjects,
		SearchTextBudget: lim.SearchTextBudget,
	}

	cfgPath := filepath.Join(home, ".config", "sift", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// Environment overrides win over the config file.
	if v := firstEnv("SIFT_CLI_ROOT", "CLAUDE_SESSIONS_DIR", "SESSIONS_DIR"); v != "" {
		cfg.CLIRoot = v
	}
	if v := os.Getenv("SIFT_DESKTOP_ROOT"); v != "" {
		cfg.DesktopRoot = v
	}

	// expand ~ in paths
	cfg.CLIRoot = expandHome(cfg.CLIRoot, home)
	cfg.DesktopRoot = expandHome(cfg.DesktopRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

// Limits builds the engine configuration carried by this config.
func (c *Config) Limits() extract.Limits {
	return extract.Limits{
		MaxScanBytes:     c.MaxScanBytes,
		MaxEvents:        c.MaxEvents,
		MaxObjects:       c.MaxObjects,
		SearchTextBudget: c.SearchTextBudget,
	}
}

// defaultDesktopRoot guesses where the desktop app keeps its IndexedDB store.
func defaultDesktopRoot(home string) string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "Claude", "IndexedDB")
	}
	return filepath.Join(home, "AppData", "Roaming", "Claude", "IndexedDB")
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
