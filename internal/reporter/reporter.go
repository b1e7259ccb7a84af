package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/forecast"
	"github.com/joshharrison/sprintloom/internal/graph"
	"github.com/joshharrison/sprintloom/internal/scheduler"
	"github.com/joshharrison/sprintloom/internal/team"
	"github.com/joshharrison/sprintloom/internal/ui"
)

const (
	titleWidth = 40
	nameWidth  = 14
)

// Reporter renders one forecast for the terminal or as JSON.
type Reporter struct {
	Report *forecast.Report
	Pool   *team.Pool
}

// New creates a new Reporter.
func New(r *forecast.Report, pool *team.Pool) *Reporter {
	if pool == nil || pool.Len() == 0 {
		pool = team.New(nil)
	}
	return &Reporter{Report: r, Pool: pool}
}

// fit truncates s to width display columns and pads it to exactly width.
func fit(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}

func (r *Reporter) loads() []scheduler.DeveloperLoad {
	res := &scheduler.Result{Assignments: r.Report.Assignments}
	return res.Loads(r.Pool)
}

// dayDate maps a working-day offset to the calendar date it lands on.
func (r *Reporter) dayDate(day float64) string {
	return calendar.Format(calendar.AddBusinessDays(r.Report.StartDate, int(math.Ceil(day))))
}

// PrintForecast writes the forecast summary, developer loads and schedule.
// The plain text is also returned so it can feed a narrative summary.
func (r *Reporter) PrintForecast(w io.Writer) string {
	var b strings.Builder
	mw := io.MultiWriter(w, &b)
	rep := r.Report

	fmt.Fprintf(mw, "\n%s %s\n", "📈", ui.BoldCyan("Sprintloom Forecast"))
	fmt.Fprintf(mw, "%s\n", ui.Cyan("══════════════════════════"))
	name := rep.PlanName
	if name == "" {
		name = rep.PlanID
	}
	fmt.Fprintf(mw, "Strategy:   %s %s\n", ui.Bold(name), ui.Dim("("+rep.PlanID+")"))
	fmt.Fprintf(mw, "Start:      %s\n", calendar.Format(rep.StartDate))
	fmt.Fprintf(mw, "Target:     %s\n", calendar.Format(rep.TargetDate))
	fmt.Fprintf(mw, "Projected:  %s  %s", ui.Bold(calendar.Format(rep.ProjectedEndDate)),
		ui.RiskBadge(rep.IsAtRisk, rep.HasCircularDependency))
	if rep.SlipDays > 0 {
		fmt.Fprintf(mw, " %s", ui.Red(fmt.Sprintf("(%d working days late)", rep.SlipDays)))
	}
	fmt.Fprintln(mw)
	fmt.Fprintf(mw, "Remaining:  %s over %d working days (%.1f sprints)\n",
		formatPoints(rep.TotalPoints), rep.DaysToComplete, rep.SprintCount)
	fmt.Fprintf(mw, "Team:       %d developers at %s per sprint\n\n",
		rep.ActiveDevCount, formatPoints(rep.Config.PointsPerSprint))

	fmt.Fprintf(mw, "  👥 %s\n", ui.Bold("Developers"))
	for _, l := range r.loads() {
		fmt.Fprintf(mw, "    %s %8s  %2d stories  free after %s\n",
			ui.DevName(fit(l.DevName, nameWidth)), formatPoints(l.Points), l.Stories, r.dayDate(l.Finish))
	}
	fmt.Fprintln(mw)

	fmt.Fprintf(mw, "  🗓  %s\n", ui.Bold("Schedule"))
	if len(rep.Assignments) == 0 {
		fmt.Fprintf(mw, "    %s\n", ui.Dim("nothing to schedule"))
	}
	for _, a := range rep.Assignments {
		floor := ""
		if a.Complete > a.End {
			floor = ui.Dim(fmt.Sprintf(" (held to %s)", r.dayDate(a.Complete)))
		}
		fmt.Fprintf(mw, "    %s %s %s %s  %s → %s%s\n",
			ui.StatusIcon("scheduled"),
			ui.BoldMagenta(fit(a.StoryID, 8)),
			fit(a.StoryName, titleWidth),
			ui.DevName(fit(a.DevName, nameWidth)),
			r.dayDate(a.Start), r.dayDate(a.Complete), floor)
	}

	if rep.HasCircularDependency {
		fmt.Fprintf(mw, "\n%s\n", ui.BoldRed("Scheduling stopped: circular dependency or unplaceable work"))
		for _, id := range rep.Unscheduled {
			fmt.Fprintf(mw, "    %s %s\n", ui.StatusIcon("unscheduled"), ui.BoldMagenta(id))
		}
	}

	return b.String()
}

// PrintBreakdown writes the per-sprint, per-developer slice of the schedule.
func (r *Reporter) PrintBreakdown(w io.Writer) {
	for _, sp := range forecast.Breakdown(r.Report, r.Pool) {
		fmt.Fprintf(w, "\n  🏁 %s %d  %s  %s\n", ui.Bold("Sprint"), sp.Index,
			ui.Dim(calendar.Format(sp.StartDate)+" → "+calendar.Format(sp.EndDate)),
			formatPoints(sp.TotalPoints()))
		for _, dev := range sp.Devs {
			if len(dev.Stories) == 0 {
				continue
			}
			fmt.Fprintf(w, "    %s %s\n", ui.DevName(fit(dev.DevName, nameWidth)), formatPoints(dev.TotalPoints))
			for _, s := range dev.Stories {
				status := "scheduled"
				if s.Partial {
					status = "partial"
				}
				fmt.Fprintf(w, "      %s %s %s %s\n", ui.StatusIcon(status),
					ui.BoldMagenta(fit(s.StoryID, 8)), fit(s.StoryName, titleWidth),
					ui.Dim(fmt.Sprintf("%.1f of %s", s.SprintPoints, formatPoints(s.Points))))
			}
		}
	}
}

// PrintPortfolio writes one line per strategy, in input order.
func PrintPortfolio(w io.Writer, reports []*forecast.Report) {
	fmt.Fprintf(w, "\n%s %s\n", "📊", ui.BoldCyan("Sprintloom Portfolio"))
	fmt.Fprintf(w, "%s\n", ui.Cyan("══════════════════════════"))
	atRisk := 0
	for _, rep := range reports {
		if rep.IsAtRisk || rep.HasCircularDependency {
			atRisk++
		}
		name := rep.PlanName
		if name == "" {
			name = rep.PlanID
		}
		fmt.Fprintf(w, "  %s %8s %5.1f sprints  %s  target %s  %s\n",
			fit(name, titleWidth), formatPoints(rep.TotalPoints), rep.SprintCount,
			ui.Bold(calendar.Format(rep.ProjectedEndDate)), calendar.Format(rep.TargetDate),
			ui.RiskBadge(rep.IsAtRisk, rep.HasCircularDependency))
	}
	fmt.Fprintf(w, "%s\n", ui.Cyan("──────────────────────────"))
	fmt.Fprintf(w, "Strategies: %d total, %s\n", len(reports), ui.Red(fmt.Sprintf("%d at risk", atRisk)))
}

// PrintLayers writes the dependency layers of a work graph, or the cycle
// that prevents layering.
func PrintLayers(w io.Writer, g *graph.WorkGraph) {
	layers, err := g.Layers()
	if err != nil {
		fmt.Fprintf(w, "%s %v\n", ui.BoldRed("✗"), err)
		return
	}
	fmt.Fprintf(w, "%d pending stories in %d layers\n", len(g.Pending()), len(layers))
	for i, layer := range layers {
		fmt.Fprintf(w, "\n  %s %d\n", ui.Bold("Layer"), i+1)
		for _, id := range layer {
			item := g.Items[id]
			fmt.Fprintf(w, "    %s %s %s\n", ui.BoldMagenta(fit(id, 8)), fit(item.Name, titleWidth),
				ui.Dim(formatPoints(item.Points)))
		}
	}
}

// JSON returns the machine-readable forecast with per-developer loads.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		*forecast.Report
		Developers []scheduler.DeveloperLoad `json:"developers"`
	}
	return json.MarshalIndent(output{Report: r.Report, Developers: r.loads()}, "", "  ")
}

func formatPoints(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f pts", p)
	}
	return fmt.Sprintf("%.1f pts", p)
}
