package graph

import "time"

// WorkItem is a single story: the smallest unit of schedulable effort.
type WorkItem struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Points       float64    `json:"points"`
	Dependencies []string   `json:"dependencies,omitempty"` // story IDs; duplicates tolerated
	Bundle       string     `json:"bundle_id,omitempty"`    // bundle tag or developer name
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	MinDays      float64    `json:"min_days,omitempty"` // completion floor in days
	Done         bool       `json:"is_done"`
}

// Epic groups stories and carries its own epic-level dependencies.
type Epic struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Stories      []WorkItem `json:"stories"`
	Dependencies []string   `json:"dependencies,omitempty"` // epic IDs
	Done         bool       `json:"is_done"`
}

// Plan is one delivery strategy: a dated backlog of epics.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	TargetDate  time.Time `json:"target_date"`
	Epics       []Epic    `json:"epics"`
}

// Item is a flattened story annotated with its owning epic.
type Item struct {
	WorkItem
	EpicID   string
	EpicName string
	Index    int // position in plan order
}

// WorkGraph is the flattened, addressable view of a Plan.
type WorkGraph struct {
	Items       map[string]*Item
	Order       []string            // story IDs in plan order
	EpicDeps    map[string][]string // epic -> epics it depends on
	EpicStories map[string][]string // epic -> member story IDs
	EpicDone    map[string]bool
	Adj         map[string][]string // pending story -> pending stories it blocks
	RevAdj      map[string][]string // pending story -> pending stories blocking it
}
