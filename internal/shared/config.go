package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Export      ExportConfig      `toml:"export"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the Spotify application identity.
//
// The implicit grant flow needs no client secret; the client id identifies
// a registered application whose allowed redirect URIs include the local
// capture address.
type SpotifyConfig struct {
	ClientID string `toml:"client_id"`
}

// DatabaseConfig contains export history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the local OAuth capture listener settings.
//
// The port is part of the redirect URI registered with Spotify and must not
// be changed to a dynamically chosen one.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// RedirectURI returns the capture server's registered redirect address.
func (s ServerConfig) RedirectURI() string {
	return fmt.Sprintf("http://%s:%d/redirect", s.Host, s.Port)
}

// Addr returns the host:port the capture server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ExportConfig contains defaults for export runs.
//
// MaxPages of 0 leaves pagination unbounded.
type ExportConfig struct {
	Workers   int     `toml:"workers"`
	Retries   int     `toml:"retries"`
	RateLimit float64 `toml:"rate_limit"`
	MaxPages  int     `toml:"max_pages"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// SPX_* environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
//
// SPX_* environment variables override embedded values.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// applyEnv overrides config values from the environment.
//
// Populated by the caller's .env file via godotenv, or the ambient shell.
func (c *Config) applyEnv() {
	if v := os.Getenv("SPX_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPX_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
