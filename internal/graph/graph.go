package graph

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/gammazero/toposort"
)

// Build flattens a Plan into a WorkGraph. It is purely structural and must be
// rebuilt whenever the plan changes.
func Build(plan *Plan) *WorkGraph {
	g := &WorkGraph{
		Items:       make(map[string]*Item),
		EpicDeps:    make(map[string][]string),
		EpicStories: make(map[string][]string),
		EpicDone:    make(map[string]bool),
		Adj:         make(map[string][]string),
		RevAdj:      make(map[string][]string),
	}
	if plan == nil {
		return g
	}

	for ei := range plan.Epics {
		epic := &plan.Epics[ei]
		g.EpicDeps[epic.ID] = epic.Dependencies
		g.EpicDone[epic.ID] = epic.Done
		if _, ok := g.EpicStories[epic.ID]; !ok {
			g.EpicStories[epic.ID] = nil
		}

		for si := range epic.Stories {
			s := epic.Stories[si]
			if _, dup := g.Items[s.ID]; dup {
				log.Printf("warning: duplicate story id %q in epic %q ignored", s.ID, epic.ID)
				continue
			}
			g.Items[s.ID] = &Item{
				WorkItem: s,
				EpicID:   epic.ID,
				EpicName: epic.Name,
				Index:    len(g.Order),
			}
			g.Order = append(g.Order, s.ID)
			g.EpicStories[epic.ID] = append(g.EpicStories[epic.ID], s.ID)
		}
	}

	g.buildEdges()
	return g
}

// buildEdges records blocker -> blocked edges between pending stories, from
// both story dependencies and the epic dependencies of the owning epic.
func (g *WorkGraph) buildEdges() {
	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.Adj[from] = append(g.Adj[from], to)
		g.RevAdj[to] = append(g.RevAdj[to], from)
	}

	for _, id := range g.Order {
		if g.EffectiveDone(id) {
			continue
		}
		for _, blocker := range g.Blockers(id) {
			if !g.EffectiveDone(blocker) {
				addEdge(blocker, id)
			}
		}
	}
}

// Blockers returns every known story that must finish before id can start:
// its own story dependencies plus all stories of the epics its epic depends on.
// Unknown IDs are dropped.
func (g *WorkGraph) Blockers(id string) []string {
	item, ok := g.Items[id]
	if !ok {
		return nil
	}
	var out []string
	for _, dep := range item.Dependencies {
		if _, known := g.Items[dep]; known {
			out = append(out, dep)
		}
	}
	for _, epicID := range g.EpicDeps[item.EpicID] {
		out = append(out, g.EpicStories[epicID]...)
	}
	return out
}

// EffectiveDone reports whether a story is done on its own or through its epic.
func (g *WorkGraph) EffectiveDone(id string) bool {
	item, ok := g.Items[id]
	if !ok {
		return false
	}
	return item.Done || g.EpicDone[item.EpicID]
}

// Pending returns the stories not yet effectively done, in plan order.
func (g *WorkGraph) Pending() []*Item {
	var out []*Item
	for _, id := range g.Order {
		if !g.EffectiveDone(id) {
			out = append(out, g.Items[id])
		}
	}
	return out
}

// Ready returns, in plan order, the stories that are not done and whose
// story dependencies and blocking epics are fully done. A dependency that
// resolves to no known story is satisfied.
func (g *WorkGraph) Ready(done map[string]bool) []*Item {
	var ready []*Item
	for _, id := range g.Order {
		if done[id] {
			continue
		}
		item := g.Items[id]
		if g.storyDepsDone(item, done) && g.epicDepsDone(item, done) {
			ready = append(ready, item)
		}
	}
	return ready
}

func (g *WorkGraph) storyDepsDone(item *Item, done map[string]bool) bool {
	for _, dep := range item.Dependencies {
		if _, known := g.Items[dep]; known && !done[dep] {
			return false
		}
	}
	return true
}

func (g *WorkGraph) epicDepsDone(item *Item, done map[string]bool) bool {
	for _, epicID := range g.EpicDeps[item.EpicID] {
		for _, sid := range g.EpicStories[epicID] {
			if !done[sid] {
				return false
			}
		}
	}
	return true
}

// DetectCycle returns a cycle among pending stories, or nil if there is none.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *WorkGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.Order {
		if g.EffectiveDone(id) || color[id] != white {
			continue
		}
		if cycle := dfs(id); cycle != nil {
			return cycle
		}
	}
	return nil
}

// Layers groups pending stories by dependency depth: layer 0 has no pending
// blockers, layer n depends on something in layer n-1. Within a layer stories
// keep plan order. Returns an error if the pending graph has a cycle.
func (g *WorkGraph) Layers() ([][]string, error) {
	var edges []toposort.Edge
	for _, id := range g.Order {
		if g.EffectiveDone(id) {
			continue
		}
		preds := g.RevAdj[id]
		if len(preds) == 0 {
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, pred := range preds {
			edges = append(edges, toposort.Edge{pred, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		if cycle := g.DetectCycle(); cycle != nil {
			return nil, fmt.Errorf("dependency cycle detected: %s", strings.Join(cycle, " -> "))
		}
		return nil, fmt.Errorf("dependency cycle detected: %w", err)
	}

	depth := make(map[string]int)
	maxDepth := -1
	for _, node := range sorted {
		id, ok := node.(string)
		if !ok {
			continue
		}
		d := 0
		for _, pred := range g.RevAdj[id] {
			if depth[pred]+1 > d {
				d = depth[pred] + 1
			}
		}
		depth[id] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	layers := make([][]string, maxDepth+1)
	for id, d := range depth {
		layers[d] = append(layers[d], id)
	}
	for _, layer := range layers {
		sort.Slice(layer, func(a, b int) bool {
			return g.Items[layer[a]].Index < g.Items[layer[b]].Index
		})
	}
	return layers, nil
}

// Filter returns a copy of the plan keeping only epics matching pred.
// Dependencies on dropped epics or stories become vacuously satisfied.
func (p *Plan) Filter(pred func(*Epic) bool) *Plan {
	out := *p
	out.Epics = nil
	for i := range p.Epics {
		if pred(&p.Epics[i]) {
			out.Epics = append(out.Epics, cloneEpic(p.Epics[i]))
		}
	}
	return &out
}

// Clone returns a deep copy of the plan so concurrent runs share nothing.
func (p *Plan) Clone() *Plan {
	return p.Filter(func(*Epic) bool { return true })
}

func cloneEpic(e Epic) Epic {
	e.Dependencies = append([]string(nil), e.Dependencies...)
	stories := make([]WorkItem, len(e.Stories))
	for i, s := range e.Stories {
		s.Dependencies = append([]string(nil), s.Dependencies...)
		if s.BlockedUntil != nil {
			bu := *s.BlockedUntil
			s.BlockedUntil = &bu
		}
		stories[i] = s
	}
	e.Stories = stories
	return e
}
