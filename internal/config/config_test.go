package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshharrison/sprintloom/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sprintloom.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "sprintloom.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing config file, got %v", err)
	}
	if cfg.Velocity != config.DefaultVelocity {
		t.Errorf("Velocity = %v, want %v", cfg.Velocity, config.DefaultVelocity)
	}
	if cfg.SprintDays != config.DefaultSprintDays {
		t.Errorf("SprintDays = %d, want %d", cfg.SprintDays, config.DefaultSprintDays)
	}
	if cfg.MaxIterations != config.DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", cfg.MaxIterations, config.DefaultMaxIterations)
	}
	if cfg.MaxParallel != config.DefaultMaxParallel {
		t.Errorf("MaxParallel = %d, want %d", cfg.MaxParallel, config.DefaultMaxParallel)
	}
	if cfg.HistoryDir != config.DefaultHistoryDir {
		t.Errorf("HistoryDir = %q, want %q", cfg.HistoryDir, config.DefaultHistoryDir)
	}
	if cfg.Model != "" {
		t.Errorf("Model = %q, want empty", cfg.Model)
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	tests := []struct {
		name         string
		yaml         string
		wantVelocity float64
		wantDays     int
		wantParallel int
		wantModel    string
	}{
		{
			name:         "only velocity set",
			yaml:         "velocity: 21\n",
			wantVelocity: 21,
			wantDays:     config.DefaultSprintDays,
			wantParallel: config.DefaultMaxParallel,
		},
		{
			name:         "sprint_days and max_parallel overridden",
			yaml:         "sprint_days: 5\nmax_parallel: 1\n",
			wantVelocity: config.DefaultVelocity,
			wantDays:     5,
			wantParallel: 1,
		},
		{
			name:         "explicit zero velocity kept",
			yaml:         "velocity: 0\n",
			wantVelocity: 0,
			wantDays:     config.DefaultSprintDays,
			wantParallel: config.DefaultMaxParallel,
		},
		{
			name:         "model set",
			yaml:         "model: claude-haiku\n",
			wantVelocity: config.DefaultVelocity,
			wantDays:     config.DefaultSprintDays,
			wantParallel: config.DefaultMaxParallel,
			wantModel:    "claude-haiku",
		},
		{
			name:         "empty file",
			yaml:         "",
			wantVelocity: config.DefaultVelocity,
			wantDays:     config.DefaultSprintDays,
			wantParallel: config.DefaultMaxParallel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadConfig(writeConfig(t, tt.yaml))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Velocity != tt.wantVelocity {
				t.Errorf("Velocity = %v, want %v", cfg.Velocity, tt.wantVelocity)
			}
			if cfg.SprintDays != tt.wantDays {
				t.Errorf("SprintDays = %d, want %d", cfg.SprintDays, tt.wantDays)
			}
			if cfg.MaxParallel != tt.wantParallel {
				t.Errorf("MaxParallel = %d, want %d", cfg.MaxParallel, tt.wantParallel)
			}
			if cfg.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", cfg.Model, tt.wantModel)
			}
		})
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	if _, err := config.LoadConfig(writeConfig(t, "velocity: [unterminated\n")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadConfig_NegativeRejected(t *testing.T) {
	if _, err := config.LoadConfig(writeConfig(t, "sprint_days: -1\n")); err == nil {
		t.Fatal("expected error for negative sprint_days")
	}
}

func TestScheduler(t *testing.T) {
	cfg := &config.Config{Velocity: 20, SprintDays: 5, MaxIterations: 100}
	sc := cfg.Scheduler()
	if sc.PointsPerSprint != 20 || sc.WorkingDaysPerSprint != 5 || sc.MaxIterations != 100 {
		t.Errorf("Scheduler() = %+v", sc)
	}
	if got := sc.DailyVelocity(); got != 4 {
		t.Errorf("DailyVelocity = %v, want 4", got)
	}
}
