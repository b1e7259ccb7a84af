package forecast

import (
	"time"

	"github.com/joshharrison/sprintloom/internal/scheduler"
)

// Report is the completion forecast for one plan.
type Report struct {
	PlanID                string                 `json:"plan_id"`
	PlanName              string                 `json:"plan_name"`
	StartDate             time.Time              `json:"start_date"`
	TargetDate            time.Time              `json:"target_date"`
	TotalPoints           float64                `json:"total_points"` // remaining effort
	TotalDays             float64                `json:"total_days"`
	DaysToComplete        int                    `json:"days_to_complete"`
	SprintCount           float64                `json:"sprint_count"`
	ProjectedEndDate      time.Time              `json:"projected_end_date"`
	IsAtRisk              bool                   `json:"is_at_risk"`
	SlipDays              int                    `json:"slip_days"` // working days past target
	HasCircularDependency bool                   `json:"has_circular_dependency"`
	Unscheduled           []string               `json:"unscheduled,omitempty"`
	ActiveDevCount        int                    `json:"active_dev_count"`
	Assignments           []scheduler.Assignment `json:"assignments"`
	Config                scheduler.Config       `json:"config"`
}

// Sprint is one fixed window of the breakdown.
type Sprint struct {
	Index     int         `json:"index"` // 1-based
	StartDay  float64     `json:"start_day"`
	EndDay    float64     `json:"end_day"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Devs      []DevSprint `json:"devs"`
}

// TotalPoints sums the sliced points across developers.
func (s Sprint) TotalPoints() float64 {
	var total float64
	for _, d := range s.Devs {
		total += d.TotalPoints
	}
	return total
}

// DevSprint is one developer's share of a sprint.
type DevSprint struct {
	DevName     string        `json:"dev_name"`
	Stories     []SprintStory `json:"stories"`
	TotalPoints float64       `json:"total_points"`
}

// SprintStory is an assignment sliced to the part that overlaps a sprint.
type SprintStory struct {
	scheduler.Assignment
	SprintPoints float64 `json:"sprint_points"`
	Partial      bool    `json:"partial"`
}
