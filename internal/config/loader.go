package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config,
// defaults. Missing files are not errors; malformed JSON is.
func Load(globalPath, projectPath string) (*ContractorConfig, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.contractor/config.json
// Project: .contractor/config.json (relative to cwd)
func LoadDefault() (*ContractorConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	globalPath := filepath.Join(homeDir, ".contractor", "config.json")
	projectPath := filepath.Join(".contractor", "config.json")

	return Load(globalPath, projectPath)
}

// mergeConfigFile layers one JSON config file onto the base. Fields the
// file sets overwrite the base; fields it omits keep their current value.
// Missing files are silently skipped.
func mergeConfigFile(base *ContractorConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Missing file is not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, base); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	return nil
}

// Validate rejects values the engine cannot run with.
func (c *ContractorConfig) Validate() error {
	if c.Engine.Concurrency <= 0 {
		return fmt.Errorf("engine.concurrency must be positive, got %d", c.Engine.Concurrency)
	}
	if c.Engine.TaskTimeoutSeconds < 0 {
		return fmt.Errorf("engine.task_timeout_seconds cannot be negative, got %d", c.Engine.TaskTimeoutSeconds)
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries cannot be negative, got %d", c.Engine.MaxRetries)
	}
	if c.Engine.MaxPasses <= 0 {
		return fmt.Errorf("engine.max_passes must be positive, got %d", c.Engine.MaxPasses)
	}
	if c.Crew.WorkDelayMillis < 0 {
		return fmt.Errorf("crew.work_delay_millis cannot be negative, got %d", c.Crew.WorkDelayMillis)
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when the archive is enabled")
	}
	return nil
}
