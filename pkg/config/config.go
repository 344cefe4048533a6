package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for starcat
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Textures TexturesConfig `mapstructure:"textures"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Encode   EncodeConfig   `mapstructure:"encode"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// CatalogConfig locates the catalog document
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// TexturesConfig describes the texture directory
type TexturesConfig struct {
	Dir               string   `mapstructure:"dir"`
	Ignore            []string `mapstructure:"ignore"` // doublestar globs hidden from listings
	LargeWarningBytes int64    `mapstructure:"large_warning_bytes"`
}

// FetchConfig bounds texture downloads
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	UserAgent string        `mapstructure:"user_agent"`
}

// EncodeConfig holds encoder settings
type EncodeConfig struct {
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

// SeedConfig points at an optional seed list replacing the built-in one
type SeedConfig struct {
	File string `mapstructure:"file"`
}

var defaultConfig = Config{
	Catalog: CatalogConfig{Path: "objects.json"},
	Textures: TexturesConfig{
		Dir:               "textures",
		Ignore:            []string{".*.tmp-*"},
		LargeWarningBytes: 5 * 1024 * 1024,
	},
	Fetch: FetchConfig{
		Timeout:   parseDurationDefault("30s"),
		MaxBytes:  50 * 1024 * 1024,
		UserAgent: "starcat-texture-fetch",
	},
	Encode: EncodeConfig{JPEGQuality: 85},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Textures.Ignore = append([]string(nil), defaultConfig.Textures.Ignore...)
	return &c
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", defaultConfig.Catalog.Path)
	v.SetDefault("textures.dir", defaultConfig.Textures.Dir)
	v.SetDefault("textures.ignore", defaultConfig.Textures.Ignore)
	v.SetDefault("textures.large_warning_bytes", defaultConfig.Textures.LargeWarningBytes)
	v.SetDefault("fetch.timeout", defaultConfig.Fetch.Timeout)
	v.SetDefault("fetch.max_bytes", defaultConfig.Fetch.MaxBytes)
	v.SetDefault("fetch.user_agent", defaultConfig.Fetch.UserAgent)
	v.SetDefault("encode.jpeg_quality", defaultConfig.Encode.JPEGQuality)
	v.SetDefault("seed.file", defaultConfig.Seed.File)
}

// NewViper builds a viper instance with defaults, environment overrides and the
// config file. When configFile is empty the usual locations are searched and a
// missing file is not an error. Any file that is read is validated against the
// embedded config schema first.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("starcat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if home, err := GetStarcatHome(); err == nil {
			v.AddConfigPath(filepath.Join(home, "config"))
		}
	}

	v.SetEnvPrefix("STARCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		return v, nil
	}

	if used := v.ConfigFileUsed(); used != "" {
		if err := ValidateConfigFile(used); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// FromViper decodes v into a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if config.Encode.JPEGQuality < 1 || config.Encode.JPEGQuality > 100 {
		return nil, fmt.Errorf("encode.jpeg_quality must be between 1 and 100 (got %d)", config.Encode.JPEGQuality)
	}
	if config.Fetch.Timeout <= 0 {
		return nil, fmt.Errorf("fetch.timeout must be positive (got %s)", config.Fetch.Timeout)
	}
	return &config, nil
}

// LoadConfig loads configuration from defaults, the optional config file and
// STARCAT_* environment variables.
func LoadConfig(configFile string) (*Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// parseDurationDefault is a helper to create default duration values from string literal
func parseDurationDefault(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// GetStarcatHome returns the starcat home directory
func GetStarcatHome() (string, error) {
	if home := os.Getenv("STARCAT_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}

	return filepath.Join(homeDir, ".starcat"), nil
}
