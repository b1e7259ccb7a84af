package scheduler

// Scheduling defaults.
const (
	DefaultPointsPerSprint      = 13
	DefaultWorkingDaysPerSprint = 10
	DefaultMaxIterations        = 3000

	// MinVelocity floors a developer's daily velocity so a fully
	// unavailable developer still yields a finite duration.
	MinVelocity = 0.01
)

// Config holds the velocity parameters of a scheduling run.
type Config struct {
	PointsPerSprint      float64 `json:"points_per_sprint"` // points one full-time developer finishes per sprint
	WorkingDaysPerSprint int     `json:"working_days_per_sprint"`
	MaxIterations        int     `json:"max_iterations"`
}

// DailyVelocity is the points per working day of a full-time developer.
func (c Config) DailyVelocity() float64 {
	c = c.withDefaults()
	return c.PointsPerSprint / float64(c.WorkingDaysPerSprint)
}

func (c Config) withDefaults() Config {
	if c.PointsPerSprint <= 0 {
		c.PointsPerSprint = DefaultPointsPerSprint
	}
	if c.WorkingDaysPerSprint <= 0 {
		c.WorkingDaysPerSprint = DefaultWorkingDaysPerSprint
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	return c
}

// Assignment places one story on one developer. Offsets are in working days
// from the plan start.
type Assignment struct {
	StoryID   string  `json:"story_id"`
	StoryName string  `json:"story_name"`
	EpicID    string  `json:"epic_id"`
	EpicName  string  `json:"epic_name"`
	DevIndex  int     `json:"dev_index"`
	DevName   string  `json:"dev_name"`
	Start     float64 `json:"start_day"`
	End       float64 `json:"end_day"`      // finish by effort alone; frees the developer
	Complete  float64 `json:"complete_day"` // End deferred by the minimum-duration floor
	Points    float64 `json:"points"`
}

// Result is the output of one scheduling run.
type Result struct {
	TotalDays             float64      `json:"total_days"`
	TotalPoints           float64      `json:"total_points"` // pending effort, placed or not
	HasCircularDependency bool         `json:"has_circular_dependency"`
	Assignments           []Assignment `json:"assignments"`
	Unscheduled           []string     `json:"unscheduled,omitempty"` // pending stories left unplaced
}

// DeveloperLoad summarises the work placed on one developer.
type DeveloperLoad struct {
	DevIndex int     `json:"dev_index"`
	DevName  string  `json:"dev_name"`
	Points   float64 `json:"points"`
	Busy     float64 `json:"busy_days"`  // working days spent on effort
	Finish   float64 `json:"finish_day"` // when the developer becomes free for good
	Stories  int     `json:"story_count"`
}
