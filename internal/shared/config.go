package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Discovery   DiscoveryConfig   `toml:"discovery"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the client-credentials grant.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DiscoveryConfig contains release-discovery tuning knobs.
//
// LookbackDays is clamped to [1, 14] by Validate. Delays separate sequential
// per-artist catalog calls; priority batches use the shorter delay and the
// larger artist cap.
type DiscoveryConfig struct {
	LookbackDays        int     `toml:"lookback_days"`
	CatalogTTLHours     int     `toml:"catalog_ttl_hours"`
	UpcomingTTLHours    int     `toml:"upcoming_ttl_hours"`
	PriorityDelayMS     int     `toml:"priority_delay_ms"`
	BackgroundDelayMS   int     `toml:"background_delay_ms"`
	PriorityMaxArtists  int     `toml:"priority_max_artists"`
	BackgroundMaxArtist int     `toml:"background_max_artists"`
	RequestsPerSecond   float64 `toml:"requests_per_second"`
}

// Validate clamps discovery settings to their documented ranges.
func (d *DiscoveryConfig) Validate() error {
	if d.LookbackDays < 1 || d.LookbackDays > 14 {
		return fmt.Errorf("%w: lookback_days must be in [1, 14], got %d", ErrInvalidConfig, d.LookbackDays)
	}
	if d.CatalogTTLHours < 1 || d.UpcomingTTLHours < 1 {
		return fmt.Errorf("%w: cache TTLs must be positive", ErrInvalidConfig)
	}
	return nil
}

// CatalogTTL returns the TTL for cached per-artist catalog pages.
func (d *DiscoveryConfig) CatalogTTL() time.Duration {
	return time.Duration(d.CatalogTTLHours) * time.Hour
}

// UpcomingTTL returns the TTL for the fully-assembled upcoming-releases answer.
func (d *DiscoveryConfig) UpcomingTTL() time.Duration {
	return time.Duration(d.UpcomingTTLHours) * time.Hour
}

// Delay returns the inter-request delay for the given batch priority.
func (d *DiscoveryConfig) Delay(priority bool) time.Duration {
	if priority {
		return time.Duration(d.PriorityDelayMS) * time.Millisecond
	}
	return time.Duration(d.BackgroundDelayMS) * time.Millisecond
}

// MaxArtists returns the per-batch artist cap for the given batch priority.
func (d *DiscoveryConfig) MaxArtists(priority bool) int {
	if priority {
		return d.PriorityMaxArtists
	}
	return d.BackgroundMaxArtist
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Discovery.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
