package config

import (
	"fmt"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/infra/storage/postgres"
	redisstore "github.com/vietddude/toolguard/internal/infra/storage/redis"
)

// Duration accepts Go duration strings ("30s", "720h") in YAML.
type Duration time.Duration

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Recovery     RecoveryConfig     `yaml:"recovery"`
	Services     []ServiceConfig    `yaml:"services"`
	Checkpoints  CheckpointConfig   `yaml:"checkpoints"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Redis        redisstore.Config  `yaml:"redis"`
	Database     postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RecoveryConfig holds the engine's tunables.
type RecoveryConfig struct {
	Preferences  domain.Preferences `yaml:"preferences"`
	InitialDelay Duration           `yaml:"initial_delay"`
	MaxDelay     Duration           `yaml:"max_delay"`
	MaxAttempts  int                `yaml:"max_attempts"`
}

// ServiceConfig holds settings for one embedded third-party tool. The
// alternatives list is product data, ordered by preference.
type ServiceConfig struct {
	ID           string   `yaml:"id"`
	Alternatives []string `yaml:"alternatives"`
}

// CheckpointConfig holds checkpoint lifecycle settings.
type CheckpointConfig struct {
	MaxPerWorkspace int      `yaml:"max_per_workspace"`
	Retention       Duration `yaml:"retention"` // 0 = infinite
}

// ConnectivityConfig holds the connectivity probe settings.
type ConnectivityConfig struct {
	ProbeURL      string   `yaml:"probe_url"`
	ProbeInterval Duration `yaml:"probe_interval"`
}

// AlternativesTable flattens the service list into the lookup the
// error handler consumes.
func (c *AppConfig) AlternativesTable() map[string][]string {
	if len(c.Services) == 0 {
		return nil
	}
	table := make(map[string][]string, len(c.Services))
	for _, svc := range c.Services {
		table[svc.ID] = svc.Alternatives
	}
	return table
}
