// Package config provides Viper-based configuration loading for the spillrom server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP/websocket listener settings.
type ServerConfig struct {
	// Bind is the listen address for the HTTP server.
	Bind string `mapstructure:"bind"`
	// Port is the TCP port for the HTTP server.
	Port int `mapstructure:"port"`
	// PublicURL is the externally reachable base URL used in join links
	// and QR codes. Falls back to http://<bind>:<port> when empty.
	PublicURL string `mapstructure:"public_url"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Bind, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RoomsConfig holds room registry settings.
type RoomsConfig struct {
	// CodeLength is the number of characters in a generated room code.
	CodeLength int `mapstructure:"code_length"`
	// MaxAge is the age after which an abandoned room is swept.
	MaxAge time.Duration `mapstructure:"max_age"`
	// CleanupInterval is how often the sweeper looks for expired rooms.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DemoConfig holds bot simulation settings.
type DemoConfig struct {
	// MaxBots caps the number of synthetic players per room.
	MaxBots int `mapstructure:"max_bots"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Rooms   RoomsConfig   `mapstructure:"rooms"`
	Demo    DemoConfig    `mapstructure:"demo"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRooms(c.Rooms); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDemo(c.Demo); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Bind == "" {
		errs = append(errs, "server.bind must not be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateRooms(r RoomsConfig) error {
	var errs []string
	if r.CodeLength < 3 || r.CodeLength > 12 {
		errs = append(errs, fmt.Sprintf("rooms.code_length must be 3-12, got %d", r.CodeLength))
	}
	if r.MaxAge <= 0 {
		errs = append(errs, "rooms.max_age must be positive")
	}
	if r.CleanupInterval <= 0 {
		errs = append(errs, "rooms.cleanup_interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDemo(d DemoConfig) error {
	if d.MaxBots < 1 {
		return fmt.Errorf("demo.max_bots must be >= 1, got %d", d.MaxBots)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SPILLROM_ prefix
	v.SetEnvPrefix("SPILLROM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_url", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rooms.code_length", 4)
	v.SetDefault("rooms.max_age", "3h")
	v.SetDefault("rooms.cleanup_interval", "10m")

	v.SetDefault("demo.max_bots", 8)
}
