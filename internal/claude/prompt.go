package claude

import (
	"bytes"
	"os"
	"text/template"

	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/forecast"
)

const defaultPromptTemplate = `Strategy: {{.PlanName}}{{if .PlanID}} ({{.PlanID}}){{end}}
Start date: {{.StartDate}}
Target date: {{.TargetDate}}
Projected end date: {{.ProjectedEndDate}}
Remaining effort: {{printf "%.1f" .TotalPoints}} points over {{.DaysToComplete}} working days ({{printf "%.1f" .SprintCount}} sprints)
Team size: {{.DevCount}}
{{- if .IsAtRisk}}
Status: AT RISK, {{.SlipDays}} working days past target
{{- else}}
Status: on track
{{- end}}
{{- if .Circular}}
Scheduling stopped early; {{len .Unscheduled}} stories could not be placed: {{range $i, $id := .Unscheduled}}{{if $i}}, {{end}}{{$id}}{{end}}
{{- end}}
{{- if .Drift}}
Change since last saved forecast: {{.Drift}}
{{- end}}

## Forecast report
{{.Report}}
`

// PromptData holds the data used to render a narrative prompt.
type PromptData struct {
	PlanID           string
	PlanName         string
	StartDate        string
	TargetDate       string
	ProjectedEndDate string
	TotalPoints      float64
	DaysToComplete   int
	SprintCount      float64
	DevCount         int
	IsAtRisk         bool
	SlipDays         int
	Circular         bool
	Unscheduled      []string
	Drift            string // e.g. "+3 working days"; empty when unknown
	Report           string // plain-text forecast as printed to the terminal
}

// NewPromptData fills prompt fields from a forecast and its printed report.
func NewPromptData(r *forecast.Report, report, drift string) PromptData {
	return PromptData{
		PlanID:           r.PlanID,
		PlanName:         r.PlanName,
		StartDate:        calendar.Format(r.StartDate),
		TargetDate:       calendar.Format(r.TargetDate),
		ProjectedEndDate: calendar.Format(r.ProjectedEndDate),
		TotalPoints:      r.TotalPoints,
		DaysToComplete:   r.DaysToComplete,
		SprintCount:      r.SprintCount,
		DevCount:         r.ActiveDevCount,
		IsAtRisk:         r.IsAtRisk,
		SlipDays:         r.SlipDays,
		Circular:         r.HasCircularDependency,
		Unscheduled:      r.Unscheduled,
		Drift:            drift,
		Report:           StripANSI(report),
	}
}

// RenderPrompt renders a prompt using either a custom template file or the default.
func RenderPrompt(data PromptData, templatePath string) (string, error) {
	tmplStr := defaultPromptTemplate
	if templatePath != "" {
		content, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		tmplStr = string(content)
	}

	tmpl, err := template.New("prompt").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
