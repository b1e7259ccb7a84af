// Package config loads sprintloom.yaml. A missing file yields defaults
// without error, and fields absent from the file keep their defaults.
// Command-line flags override the loaded values by mutating the returned
// struct.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/sprintloom/internal/scheduler"
)

// DefaultPath is where the CLI looks for configuration.
const DefaultPath = "sprintloom.yaml"

// Default values for Config fields.
const (
	DefaultVelocity      = scheduler.DefaultPointsPerSprint
	DefaultSprintDays    = scheduler.DefaultWorkingDaysPerSprint
	DefaultMaxIterations = scheduler.DefaultMaxIterations
	DefaultMaxParallel   = 4
	DefaultHistoryDir    = ".sprintloom"
)

// Config is the on-disk configuration.
type Config struct {
	Velocity      float64 `yaml:"velocity"`    // points per full-time developer per sprint
	SprintDays    int     `yaml:"sprint_days"` // working days per sprint
	MaxIterations int     `yaml:"max_iterations"`
	MaxParallel   int     `yaml:"max_parallel"`
	HistoryDir    string  `yaml:"history_dir"`
	Model         string  `yaml:"model"`
}

func defaults() Config {
	return Config{
		Velocity:      DefaultVelocity,
		SprintDays:    DefaultSprintDays,
		MaxIterations: DefaultMaxIterations,
		MaxParallel:   DefaultMaxParallel,
		HistoryDir:    DefaultHistoryDir,
	}
}

// partialConfig tells an absent field (nil) apart from an explicit zero.
type partialConfig struct {
	Velocity      *float64 `yaml:"velocity"`
	SprintDays    *int     `yaml:"sprint_days"`
	MaxIterations *int     `yaml:"max_iterations"`
	MaxParallel   *int     `yaml:"max_parallel"`
	HistoryDir    *string  `yaml:"history_dir"`
	Model         *string  `yaml:"model"`
}

// LoadConfig reads the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var partial partialConfig
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if partial.Velocity != nil {
		cfg.Velocity = *partial.Velocity
	}
	if partial.SprintDays != nil {
		cfg.SprintDays = *partial.SprintDays
	}
	if partial.MaxIterations != nil {
		cfg.MaxIterations = *partial.MaxIterations
	}
	if partial.MaxParallel != nil {
		cfg.MaxParallel = *partial.MaxParallel
	}
	if partial.HistoryDir != nil {
		cfg.HistoryDir = *partial.HistoryDir
	}
	if partial.Model != nil {
		cfg.Model = *partial.Model
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects values the scheduler cannot default its way out of.
func (c *Config) Validate() error {
	if c.Velocity < 0 {
		return fmt.Errorf("velocity must not be negative, got %v", c.Velocity)
	}
	if c.SprintDays < 0 {
		return fmt.Errorf("sprint_days must not be negative, got %d", c.SprintDays)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations)
	}
	if c.MaxParallel < 0 {
		return fmt.Errorf("max_parallel must not be negative, got %d", c.MaxParallel)
	}
	return nil
}

// Scheduler converts the file settings into a scheduling config. Zero values
// fall back to the scheduler's own defaults.
func (c *Config) Scheduler() scheduler.Config {
	return scheduler.Config{
		PointsPerSprint:      c.Velocity,
		WorkingDaysPerSprint: c.SprintDays,
		MaxIterations:        c.MaxIterations,
	}
}
