// Package backlog imports plan and team records from exported JSON.
//
// Exports are lenient: IDs may be numbers or strings, numeric fields may be
// strings or garbage (treated as 0), and three top-level shapes are accepted:
// {"groups": [...], "team": [...], "velocity": n}, {"strategies": [...]},
// or a bare array of strategies.
package backlog

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/graph"
	"github.com/joshharrison/sprintloom/internal/team"
)

// Group is a named set of alternative strategies.
type Group struct {
	ID         string
	Name       string
	Strategies []*graph.Plan
}

// Backlog is everything an export file carries.
type Backlog struct {
	Groups   []Group
	Team     []team.Developer
	Velocity float64 // points per developer per sprint; 0 when absent
	Warnings []string
}

// Load reads and parses an export file.
func Load(path string) (*Backlog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backlog: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes an export document.
func Parse(data []byte) (*Backlog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	b := &Backlog{}

	switch {
	case root.IsArray():
		b.Groups = []Group{{Name: "Imported Strategies", Strategies: b.strategies(root)}}
	case root.Get("groups").IsArray():
		root.Get("groups").ForEach(func(_, g gjson.Result) bool {
			b.Groups = append(b.Groups, Group{
				ID:         g.Get("id").String(),
				Name:       g.Get("name").String(),
				Strategies: b.strategies(g.Get("strategies")),
			})
			return true
		})
		b.Team = parseTeam(root.Get("team"))
		b.Velocity = number(root.Get("velocity"))
		if v := root.Get("velocityPerSprint"); v.Exists() {
			b.Velocity = number(v)
		}
	case root.Get("strategies").IsArray():
		b.Groups = []Group{{Name: "Imported Group", Strategies: b.strategies(root.Get("strategies"))}}
	default:
		return nil, fmt.Errorf("unrecognised format: expected groups, strategies or an array of strategies")
	}
	return b, nil
}

// Plans returns every strategy across all groups in file order.
func (b *Backlog) Plans() []*graph.Plan {
	var out []*graph.Plan
	for _, g := range b.Groups {
		out = append(out, g.Strategies...)
	}
	return out
}

// Find returns the strategy whose ID matches key, or whose name matches it
// case-insensitively. An empty key selects the only strategy, if there is one.
func (b *Backlog) Find(key string) (*graph.Plan, error) {
	plans := b.Plans()
	if key == "" {
		if len(plans) == 1 {
			return plans[0], nil
		}
		return nil, fmt.Errorf("%d strategies found; choose one with --strategy", len(plans))
	}
	for _, p := range plans {
		if p.ID == key {
			return p, nil
		}
	}
	for _, p := range plans {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(key)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("strategy %q not found", key)
}

func (b *Backlog) warnf(format string, args ...any) {
	b.Warnings = append(b.Warnings, fmt.Sprintf(format, args...))
}

func (b *Backlog) strategies(arr gjson.Result) []*graph.Plan {
	var out []*graph.Plan
	arr.ForEach(func(_, s gjson.Result) bool {
		p := &graph.Plan{
			ID:          s.Get("id").String(),
			Name:        s.Get("name").String(),
			Description: s.Get("description").String(),
		}
		p.StartDate = b.date(s.Get("startDate"), "strategy %q startDate", p.ID)
		p.TargetDate = b.date(s.Get("targetDate"), "strategy %q targetDate", p.ID)
		s.Get("epics").ForEach(func(_, e gjson.Result) bool {
			p.Epics = append(p.Epics, b.epic(e))
			return true
		})
		out = append(out, p)
		return true
	})
	return out
}

func (b *Backlog) epic(e gjson.Result) graph.Epic {
	epic := graph.Epic{
		ID:           e.Get("id").String(),
		Name:         e.Get("name").String(),
		Dependencies: ids(e.Get("dependencies")),
		Done:         e.Get("isDone").Bool(),
	}
	e.Get("stories").ForEach(func(_, s gjson.Result) bool {
		item := graph.WorkItem{
			ID:           s.Get("id").String(),
			Name:         s.Get("name").String(),
			Points:       number(s.Get("points")),
			Dependencies: ids(s.Get("dependencies")),
			Bundle:       strings.TrimSpace(s.Get("bundleId").String()),
			MinDays:      number(s.Get("minDays")),
			Done:         s.Get("isDone").Bool(),
		}
		if bu := s.Get("blockedUntil"); bu.Exists() && bu.String() != "" {
			if t, err := calendar.ParseDate(bu.String()); err == nil {
				item.BlockedUntil = &t
			} else {
				b.warnf("story %q: ignoring blockedUntil: %v", item.ID, err)
			}
		}
		epic.Stories = append(epic.Stories, item)
		return true
	})
	return epic
}

// date parses an optional date field; a malformed value is a warning.
func (b *Backlog) date(r gjson.Result, format string, args ...any) (t time.Time) {
	if !r.Exists() || r.String() == "" {
		return t
	}
	parsed, err := calendar.ParseDate(r.String())
	if err != nil {
		b.warnf(format+": %v", append(args, err)...)
		return t
	}
	return parsed
}

func parseTeam(arr gjson.Result) []team.Developer {
	var devs []team.Developer
	arr.ForEach(func(_, d gjson.Result) bool {
		capacity := 100.0
		if c := d.Get("capacity"); c.Exists() {
			capacity = number(c)
		}
		devs = append(devs, team.Developer{
			Name:       d.Get("name").String(),
			Capacity:   capacity,
			Restricted: d.Get("restricted").Bool(),
		})
		return true
	})
	return devs
}

func ids(arr gjson.Result) []string {
	var out []string
	arr.ForEach(func(_, v gjson.Result) bool {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

var leadingNumber = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// number reads a numeric field leniently: JSON numbers as-is, strings by
// their leading numeric prefix ("5pts" is 5), anything else 0.
func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number:
		return r.Num
	case gjson.String:
		m := leadingNumber.FindString(strings.TrimSpace(r.Str))
		if m == "" {
			return 0
		}
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}
