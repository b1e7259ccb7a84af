package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/joshharrison/sprintloom/internal/forecast"
	"github.com/joshharrison/sprintloom/internal/graph"
	"github.com/joshharrison/sprintloom/internal/scheduler"
	"github.com/joshharrison/sprintloom/internal/team"
)

func makePlan() *graph.Plan {
	return &graph.Plan{
		ID:         "test-plan",
		Name:       "Fast Track",
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TargetDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Epics: []graph.Epic{{
			ID:   "e1",
			Name: "Auth",
			Stories: []graph.WorkItem{
				{ID: "a", Name: "Login form", Points: 12},
				{ID: "b", Name: "A story title that is much too long to fit in the column", Points: 3, Dependencies: []string{"a"}},
			},
		}},
	}
}

func makePool() *team.Pool {
	return team.New([]team.Developer{{Name: "Alice", Capacity: 100}})
}

func makeReporter(plan *graph.Plan) *Reporter {
	pool := makePool()
	return New(forecast.Compute(plan, pool, scheduler.Config{PointsPerSprint: 10}), pool)
}

func TestPrintForecast(t *testing.T) {
	rpt := makeReporter(makePlan())

	var buf bytes.Buffer
	captured := rpt.PrintForecast(&buf)
	output := buf.String()

	if captured != output {
		t.Error("returned text should match written output")
	}
	for _, want := range []string{"Sprintloom Forecast", "Fast Track", "test-plan", "AT RISK", "Login form", "Alice", "15 pts"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(output, "much too long to fit in the column") {
		t.Error("long titles should be truncated")
	}
}

func TestPrintForecast_Circular(t *testing.T) {
	plan := makePlan()
	plan.Epics[0].Stories[0].Dependencies = []string{"b"}
	rpt := makeReporter(plan)

	var buf bytes.Buffer
	rpt.PrintForecast(&buf)
	output := buf.String()

	if !strings.Contains(output, "STUCK") {
		t.Error("expected stuck badge")
	}
	if !strings.Contains(output, "circular dependency") {
		t.Error("expected circular dependency notice")
	}
}

func TestPrintBreakdown(t *testing.T) {
	rpt := makeReporter(makePlan())

	var buf bytes.Buffer
	rpt.PrintBreakdown(&buf)
	output := buf.String()

	if !strings.Contains(output, "Sprint 1") || !strings.Contains(output, "Sprint 2") {
		t.Errorf("expected two sprints, got:\n%s", output)
	}
	if !strings.Contains(output, "10.0 of 12 pts") {
		t.Errorf("expected sliced points for the large story, got:\n%s", output)
	}
}

func TestPrintPortfolio(t *testing.T) {
	late := makeReporter(makePlan()).Report
	safePlan := makePlan()
	safePlan.ID = "safe"
	safePlan.Name = "Safe"
	safePlan.TargetDate = time.Time{}
	safe := makeReporter(safePlan).Report

	var buf bytes.Buffer
	PrintPortfolio(&buf, []*forecast.Report{late, safe})
	output := buf.String()

	if !strings.Contains(output, "Fast Track") || !strings.Contains(output, "Safe") {
		t.Error("expected both strategies listed")
	}
	if !strings.Contains(output, "2 total") || !strings.Contains(output, "1 at risk") {
		t.Errorf("unexpected totals:\n%s", output)
	}
}

func TestPrintLayers(t *testing.T) {
	var buf bytes.Buffer
	PrintLayers(&buf, graph.Build(makePlan()))
	output := buf.String()
	if !strings.Contains(output, "2 pending stories in 2 layers") {
		t.Errorf("unexpected layers output:\n%s", output)
	}

	cyclic := makePlan()
	cyclic.Epics[0].Stories[0].Dependencies = []string{"b"}
	buf.Reset()
	PrintLayers(&buf, graph.Build(cyclic))
	if !strings.Contains(buf.String(), "cycle") {
		t.Errorf("expected cycle error, got:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	rpt := makeReporter(makePlan())

	data, err := rpt.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["plan_id"] != "test-plan" {
		t.Errorf("plan_id = %v", decoded["plan_id"])
	}
	if decoded["is_at_risk"] != true {
		t.Error("JSON should carry the risk flag")
	}
	devs, ok := decoded["developers"].([]any)
	if !ok || len(devs) != 1 {
		t.Errorf("developers = %v", decoded["developers"])
	}
}

func TestFit(t *testing.T) {
	if got := fit("abc", 5); got != "abc  " {
		t.Errorf("fit pad = %q", got)
	}
	if got := fit("abcdefgh", 6); got != "abc..." {
		t.Errorf("fit truncate = %q", got)
	}
	if got := fit("日本語テキスト", 8); got != "日本... " {
		t.Errorf("fit wide = %q", got)
	}
}
