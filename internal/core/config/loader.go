package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vietddude/toolguard/internal/core/domain"
	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Recovery.InitialDelay == 0 {
		cfg.Recovery.InitialDelay = Duration(1 * time.Second)
	}
	if cfg.Recovery.MaxDelay == 0 {
		cfg.Recovery.MaxDelay = Duration(30 * time.Second)
	}
	if cfg.Recovery.MaxAttempts == 0 {
		cfg.Recovery.MaxAttempts = 5
	}
	if cfg.Recovery.Preferences == (domain.Preferences{}) {
		cfg.Recovery.Preferences = domain.DefaultPreferences()
	}

	if cfg.Checkpoints.MaxPerWorkspace == 0 {
		cfg.Checkpoints.MaxPerWorkspace = 10
	}

	if cfg.Connectivity.ProbeInterval == 0 {
		cfg.Connectivity.ProbeInterval = Duration(30 * time.Second)
	}
}
