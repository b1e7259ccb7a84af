package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/forecast"
)

const historyFile = "history.json"

// Snapshot records one saved forecast of a plan.
type Snapshot struct {
	PlanID           string    `json:"plan_id"`
	PlanName         string    `json:"plan_name,omitempty"`
	TakenAt          time.Time `json:"taken_at"`
	ProjectedEndDate time.Time `json:"projected_end_date"`
	TargetDate       time.Time `json:"target_date,omitempty"`
	TotalPoints      float64   `json:"total_points"`
	SprintCount      float64   `json:"sprint_count"`
	IsAtRisk         bool      `json:"is_at_risk"`
	Circular         bool      `json:"has_circular_dependency,omitempty"`
}

// FromReport captures the headline numbers of a forecast.
func FromReport(r *forecast.Report, takenAt time.Time) Snapshot {
	return Snapshot{
		PlanID:           r.PlanID,
		PlanName:         r.PlanName,
		TakenAt:          takenAt,
		ProjectedEndDate: r.ProjectedEndDate,
		TargetDate:       r.TargetDate,
		TotalPoints:      r.TotalPoints,
		SprintCount:      r.SprintCount,
		IsAtRisk:         r.IsAtRisk,
		Circular:         r.HasCircularDependency,
	}
}

// History is the persisted, append-only list of snapshots.
type History struct {
	Snapshots []Snapshot `json:"snapshots"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

// Load reads the history kept under dir. A missing file is an empty history.
func Load(dir string) (*History, error) {
	path := filepath.Join(dir, historyFile)
	h := &History{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return h, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return h, nil
}

// Exists checks if a history file exists under dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, historyFile))
	return err == nil
}

// Save persists the history to disk.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return os.WriteFile(h.path, data, 0644)
}

// Append adds a snapshot and saves.
func (h *History) Append(s Snapshot) error {
	h.mu.Lock()
	h.Snapshots = append(h.Snapshots, s)
	h.mu.Unlock()
	return h.Save()
}

// Latest returns the most recent snapshot of a plan.
func (h *History) Latest(planID string) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var latest Snapshot
	found := false
	for _, s := range h.Snapshots {
		if s.PlanID != planID {
			continue
		}
		if !found || !s.TakenAt.Before(latest.TakenAt) {
			latest = s
			found = true
		}
	}
	return latest, found
}

// ForPlan returns a plan's snapshots in the order they were taken.
func (h *History) ForPlan(planID string) []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []Snapshot
	for _, s := range h.Snapshots {
		if s.PlanID == planID {
			out = append(out, s)
		}
	}
	return out
}

// Drift is the movement of the projected end date from prev to cur in
// working days; positive means the forecast slipped.
func Drift(prev, cur Snapshot) int {
	if cur.ProjectedEndDate.Before(prev.ProjectedEndDate) {
		return -calendar.BusinessDayDiff(cur.ProjectedEndDate, prev.ProjectedEndDate)
	}
	return calendar.BusinessDayDiff(prev.ProjectedEndDate, cur.ProjectedEndDate)
}

// Clean removes the history directory.
func Clean(dir string) error {
	return os.RemoveAll(dir)
}
