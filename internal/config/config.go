package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures quotebox settings.
type Config struct {
	RemoteURL      string
	FetchLimit     int
	PollInterval   time.Duration
	ConflictPolicy string
	RemoteCategory string
	DataDir        string
	SyncEnabled    bool
}

const (
	defaultConfigPath     = "~/.config/quotebox/config.toml"
	defaultDataDir        = "~/.local/share/quotebox"
	defaultRemoteURL      = "https://jsonplaceholder.typicode.com/posts"
	defaultFetchLimit     = 5
	defaultPollInterval   = 15 * time.Second
	defaultConflictPolicy = "server"
	defaultRemoteCategory = "Server"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		RemoteURL:      defaultRemoteURL,
		FetchLimit:     defaultFetchLimit,
		PollInterval:   defaultPollInterval,
		ConflictPolicy: defaultConflictPolicy,
		RemoteCategory: defaultRemoteCategory,
		DataDir:        mustExpand(defaultDataDir),
		SyncEnabled:    true,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		RemoteURL      string `toml:"remote_url"`
		FetchLimit     int    `toml:"fetch_limit"`
		PollInterval   string `toml:"poll_interval"`
		ConflictPolicy string `toml:"conflict_policy"`
		RemoteCategory string `toml:"remote_category"`
		DataDir        string `toml:"data_dir"`
		SyncEnabled    *bool  `toml:"sync_enabled"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.RemoteURL); v != "" {
		cfg.RemoteURL = v
	}
	if raw.FetchLimit > 0 {
		cfg.FetchLimit = raw.FetchLimit
	}
	if v := strings.TrimSpace(raw.PollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: poll_interval: %w", err)
		}
		if d > 0 {
			cfg.PollInterval = d
		}
	}
	if v := strings.ToLower(strings.TrimSpace(raw.ConflictPolicy)); v != "" {
		if v != "server" && v != "manual" {
			return Config{}, fmt.Errorf("parse config: conflict_policy %q must be server or manual", raw.ConflictPolicy)
		}
		cfg.ConflictPolicy = v
	}
	if v := strings.TrimSpace(raw.RemoteCategory); v != "" {
		cfg.RemoteCategory = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if raw.SyncEnabled != nil {
		cfg.SyncEnabled = *raw.SyncEnabled
	}

	return cfg, nil
}

// DBPath returns the path of the local SQLite store.
func (c Config) DBPath() string {
	return filepath.Join(c.dataDir(), "quotebox.db")
}

// LogPath returns the path of the structured log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "quotebox.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
