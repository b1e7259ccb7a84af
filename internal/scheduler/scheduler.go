// Package scheduler computes a feasible, deterministic schedule for a plan's
// pending stories over a developer pool using greedy list scheduling.
package scheduler

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/graph"
	"github.com/joshharrison/sprintloom/internal/team"
)

// boundaryEpsilon absorbs float noise when testing whether an item crosses a
// sprint boundary (13 points at 1.3/day is not 10.000000000000002 days).
const boundaryEpsilon = 1e-9

// devTimeline is one developer's simulated availability.
type devTimeline struct {
	nextFree float64
	velocity float64 // points per working day, before the MinVelocity floor
}

// simulation is the mutable state of exactly one Schedule call.
//
// bundles is the sticky bundle -> developer lock: the first time a bundle
// tag is placed, the chosen developer owns every later story with that tag.
type simulation struct {
	cfg       Config
	graph     *graph.WorkGraph
	pool      *team.Pool
	planStart time.Time

	devs    []devTimeline
	bundles map[string]int
	done    map[string]bool
	finish  map[string]float64

	remaining   int
	totalPoints float64
	maxDay      float64
	assignments []Assignment
}

// Schedule runs the greedy scheduler. It is a pure function of its inputs:
// no state survives the call, and equal inputs yield equal results.
//
// Each iteration recomputes the ready set, orders it by points descending
// (stable on plan order) and places the first story that has a candidate
// developer. The run stops when everything is placed, when nothing is ready
// or placeable, or after cfg.MaxIterations iterations; any stop with work
// left reports HasCircularDependency.
func Schedule(plan *graph.Plan, pool *team.Pool, cfg Config) *Result {
	if pool == nil || pool.Len() == 0 {
		pool = team.New(nil)
	}
	s := newSimulation(plan, pool, cfg.withDefaults())

	for iter := 0; s.remaining > 0 && iter < s.cfg.MaxIterations; iter++ {
		ready := s.graph.Ready(s.done)
		if len(ready) == 0 {
			break
		}
		sort.SliceStable(ready, func(a, b int) bool {
			return points(ready[a].Points) > points(ready[b].Points)
		})
		if !s.placeFirst(ready) {
			break
		}
	}

	return s.result()
}

func newSimulation(plan *graph.Plan, pool *team.Pool, cfg Config) *simulation {
	s := &simulation{
		cfg:     cfg,
		graph:   graph.Build(plan),
		pool:    pool,
		devs:    make([]devTimeline, pool.Len()),
		bundles: make(map[string]int),
		done:    make(map[string]bool),
		finish:  make(map[string]float64),
	}
	if plan != nil {
		s.planStart = plan.StartDate
	}

	daily := cfg.DailyVelocity()
	for i, d := range pool.Developers {
		s.devs[i] = devTimeline{velocity: daily * d.Capacity / 100}
	}

	// Stories already done count as finished at offset 0.
	for _, id := range s.graph.Order {
		if s.graph.EffectiveDone(id) {
			s.done[id] = true
			s.finish[id] = 0
		} else {
			s.remaining++
			s.totalPoints += points(s.graph.Items[id].Points)
		}
	}
	return s
}

// placeFirst places the first story in ready order that has a candidate.
func (s *simulation) placeFirst(ready []*graph.Item) bool {
	for _, item := range ready {
		if s.place(item) {
			return true
		}
	}
	return false
}

// candidates resolves which developers may take item, in tie-break order.
func (s *simulation) candidates(bundle string) []int {
	if bundle != "" {
		if dev, locked := s.bundles[bundle]; locked {
			return []int{dev}
		}
		if dev := s.pool.Lookup(bundle); dev >= 0 {
			return []int{dev}
		}
	}
	return s.pool.Generalists()
}

// constraint is the earliest offset dependencies and dates allow item to
// start, independent of which developer takes it.
func (s *simulation) constraint(item *graph.Item) float64 {
	var c float64
	for _, blocker := range s.graph.Blockers(item.ID) {
		if f, ok := s.finish[blocker]; ok && f > c {
			c = f
		}
	}
	if item.BlockedUntil != nil && !s.planStart.IsZero() {
		if offset := float64(calendar.BusinessDayDiff(s.planStart, *item.BlockedUntil)); offset > c {
			c = offset
		}
	}
	return c
}

func (s *simulation) place(item *graph.Item) bool {
	bundle := strings.TrimSpace(item.Bundle)
	constraint := s.constraint(item)

	chosen := -1
	earliest := math.Inf(1)
	for _, idx := range s.candidates(bundle) {
		start := math.Max(s.devs[idx].nextFree, constraint)
		if start < earliest {
			earliest = start
			chosen = idx
		}
	}
	if chosen < 0 {
		return false
	}

	if bundle != "" {
		if _, locked := s.bundles[bundle]; !locked {
			s.bundles[bundle] = chosen
		}
	}

	pts := points(item.Points)
	duration := pts / math.Max(MinVelocity, s.devs[chosen].velocity)

	// Items that fit in one sprint must not straddle a sprint boundary.
	start := earliest
	if pts <= s.cfg.PointsPerSprint {
		days := float64(s.cfg.WorkingDaysPerSprint)
		sprintEnd := (math.Floor(start/days) + 1) * days
		if start+duration > sprintEnd+boundaryEpsilon {
			start = sprintEnd
		}
	}

	end := start + duration
	complete := start + math.Max(duration, points(item.MinDays))

	s.devs[chosen].nextFree = end
	s.finish[item.ID] = complete
	s.done[item.ID] = true
	s.remaining--
	if complete > s.maxDay {
		s.maxDay = complete
	}

	s.assignments = append(s.assignments, Assignment{
		StoryID:   item.ID,
		StoryName: item.Name,
		EpicID:    item.EpicID,
		EpicName:  item.EpicName,
		DevIndex:  chosen,
		DevName:   s.pool.Developers[chosen].Name,
		Start:     start,
		End:       end,
		Complete:  complete,
		Points:    pts,
	})
	return true
}

func (s *simulation) result() *Result {
	r := &Result{
		TotalDays:             s.maxDay,
		TotalPoints:           s.totalPoints,
		HasCircularDependency: s.remaining > 0,
		Assignments:           s.assignments,
	}
	if r.Assignments == nil {
		r.Assignments = []Assignment{}
	}
	for _, id := range s.graph.Order {
		if !s.done[id] {
			r.Unscheduled = append(r.Unscheduled, id)
		}
	}
	return r
}

// points clamps negative and NaN values to zero.
func points(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Loads summarises each developer's placed work, one entry per pool member.
func (r *Result) Loads(pool *team.Pool) []DeveloperLoad {
	loads := make([]DeveloperLoad, pool.Len())
	for i, d := range pool.Developers {
		loads[i] = DeveloperLoad{DevIndex: i, DevName: d.Name}
	}
	for _, a := range r.Assignments {
		if a.DevIndex < 0 || a.DevIndex >= len(loads) {
			continue
		}
		l := &loads[a.DevIndex]
		l.Points += a.Points
		l.Busy += a.End - a.Start
		l.Stories++
		if a.End > l.Finish {
			l.Finish = a.End
		}
	}
	return loads
}

// Assignment returns the assignment for a story, if it was placed.
func (r *Result) Assignment(storyID string) (Assignment, bool) {
	for _, a := range r.Assignments {
		if a.StoryID == storyID {
			return a, true
		}
	}
	return Assignment{}, false
}
