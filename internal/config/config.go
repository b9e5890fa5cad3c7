package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	LibraryDir string `yaml:"library_dir"`
	Verbose    bool   `yaml:"verbose"`
	DryRun     bool   `yaml:"dry_run"`

	// Providers to query for direct searches, in order. Valid entries:
	// musicbrainz, lastfm, discogs.
	Providers []string `yaml:"providers"`

	LastFMAPIKey   string `yaml:"lastfm_api_key"`
	DiscogsToken   string `yaml:"discogs_token"`
	AcoustIDAPIKey string `yaml:"acoustid_api_key"`
	AudDAPIToken   string `yaml:"audd_api_token"`

	// AudDConfidence overrides the fixed confidence reported for AudD
	// matches. 0 keeps the default.
	AudDConfidence float64 `yaml:"audd_confidence"`

	// Per-provider request intervals in seconds.
	MusicBrainzInterval float64 `yaml:"musicbrainz_interval"`
	LastFMInterval      float64 `yaml:"lastfm_interval"`
	DiscogsInterval     float64 `yaml:"discogs_interval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Providers:           []string{"musicbrainz", "lastfm", "discogs"},
		MusicBrainzInterval: 1.0,
		LastFMInterval:      0.2,
		DiscogsInterval:     1.0,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.LibraryDir = ExpandHome(cfg.LibraryDir)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./tagscout.yaml",
		"./tagscout.yml",
		filepath.Join(home, ".config", "tagscout", "config.yaml"),
		filepath.Join(home, ".config", "tagscout", "config.yml"),
		filepath.Join(home, ".tagscout.yaml"),
		filepath.Join(home, ".tagscout.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "tagscout", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "tagscout", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LibraryDir == "" {
		return fmt.Errorf("library directory cannot be empty")
	}

	validProviders := map[string]bool{"musicbrainz": true, "lastfm": true, "discogs": true}
	for _, p := range c.Providers {
		if !validProviders[p] {
			return fmt.Errorf("unknown provider %q, valid providers: musicbrainz, lastfm, discogs", p)
		}
	}

	if c.AudDConfidence < 0 || c.AudDConfidence > 1 {
		return fmt.Errorf("audd_confidence must be between 0.0 and 1.0, got %.2f", c.AudDConfidence)
	}

	if c.MusicBrainzInterval < 0 || c.LastFMInterval < 0 || c.DiscogsInterval < 0 {
		return fmt.Errorf("request intervals cannot be negative")
	}

	return nil
}

func (c *Config) hasProvider(name string) bool {
	for _, p := range c.Providers {
		if p == name {
			return true
		}
	}
	return false
}

// EnabledProviders returns the configured providers that have the
// credentials they need. MusicBrainz needs none; Last.fm and Discogs
// are skipped without a key.
func (c *Config) EnabledProviders() []string {
	var out []string
	for _, p := range c.Providers {
		switch p {
		case "musicbrainz":
			out = append(out, p)
		case "lastfm":
			if c.LastFMAPIKey != "" {
				out = append(out, p)
			}
		case "discogs":
			if c.DiscogsToken != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
