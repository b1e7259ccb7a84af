package claude

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshharrison/sprintloom/internal/forecast"
)

func TestStripFences_Clean(t *testing.T) {
	input := "The plan finishes on 2024-02-01."
	if got := stripFences(input); got != input {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestStripFences_WithTag(t *testing.T) {
	got := stripFences("```markdown\nOn track.\n```")
	if got != "On track." {
		t.Errorf("expected fences removed, got %q", got)
	}
}

func TestStripFences_WithWhitespace(t *testing.T) {
	got := stripFences("  \n```\nOn track.\n```\n  ")
	if got != "On track." {
		t.Errorf("expected fences removed, got %q", got)
	}
}

func TestStripANSI(t *testing.T) {
	got := StripANSI("\x1b[1;31mAT RISK\x1b[0m done")
	if got != "AT RISK done" {
		t.Errorf("StripANSI = %q", got)
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClient("", ""); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	c, err := NewClient("test-key", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if string(c.model) != DefaultModel {
		t.Errorf("model = %q, want %q", c.model, DefaultModel)
	}

	c, err = NewClient("test-key", "custom-model")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if string(c.model) != "custom-model" {
		t.Errorf("model = %q, want custom-model", c.model)
	}
}

func sampleData() PromptData {
	return PromptData{
		PlanID:           "p1",
		PlanName:         "Fast Track",
		StartDate:        "2024-01-01",
		TargetDate:       "2024-01-05",
		ProjectedEndDate: "2024-01-22",
		TotalPoints:      15,
		DaysToComplete:   15,
		SprintCount:      1.5,
		DevCount:         1,
		IsAtRisk:         true,
		SlipDays:         11,
		Report:           "Schedule body",
	}
}

func TestRenderPrompt_Default(t *testing.T) {
	got, err := RenderPrompt(sampleData(), "")
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	for _, want := range []string{"Fast Track (p1)", "2024-01-22", "15.0 points over 15 working days", "AT RISK, 11 working days", "Schedule body"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "could not be placed") {
		t.Error("prompt should not mention unscheduled stories when there are none")
	}
}

func TestRenderPrompt_Unscheduled(t *testing.T) {
	data := sampleData()
	data.IsAtRisk = false
	data.Circular = true
	data.Unscheduled = []string{"a", "b"}
	data.Drift = "+2 working days"

	got, err := RenderPrompt(data, "")
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	if !strings.Contains(got, "2 stories could not be placed: a, b") {
		t.Errorf("unexpected prompt:\n%s", got)
	}
	if !strings.Contains(got, "Status: on track") || !strings.Contains(got, "+2 working days") {
		t.Errorf("unexpected prompt:\n%s", got)
	}
}

func TestRenderPrompt_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	if err := os.WriteFile(path, []byte("Plan {{.PlanName}} ends {{.ProjectedEndDate}}"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := RenderPrompt(sampleData(), path)
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	if got != "Plan Fast Track ends 2024-01-22" {
		t.Errorf("got %q", got)
	}
}

func TestRenderPrompt_MissingTemplate(t *testing.T) {
	if _, err := RenderPrompt(sampleData(), "/nonexistent/prompt.tmpl"); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestNewPromptData(t *testing.T) {
	r := &forecast.Report{
		PlanID:           "p1",
		PlanName:         "Plan",
		ProjectedEndDate: time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
		ActiveDevCount:   2,
		IsAtRisk:         true,
		SlipDays:         3,
	}
	data := NewPromptData(r, "\x1b[1mbody\x1b[0m", "+1 working days")
	if data.ProjectedEndDate != "2024-01-22" || data.TargetDate != "N/A" {
		t.Errorf("dates = %q / %q", data.ProjectedEndDate, data.TargetDate)
	}
	if data.DevCount != 2 || !data.IsAtRisk || data.SlipDays != 3 {
		t.Errorf("unexpected data %+v", data)
	}
	if data.Report != "body" {
		t.Errorf("report should be stripped of color codes, got %q", data.Report)
	}
}
