package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
)

// PrintLogo renders the sprintloom banner to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------------+")
	bars.Fprintln(w, "   |  ====  ======  ==  ========  |")
	brand.Fprintln(w, "   |  S P R I N T L O O M         |")
	bars.Fprintln(w, "   |    ======  ====  ======  ==  |")
	frame.Fprintln(w, "   +------------------------------+")
	tag.Fprintln(w, "   Backlog completion forecasts")
	fmt.Fprintln(w)
}

// devColors is a palette of distinct bold colors for differentiating developers.
var devColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

func devColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(devColors)))
}

// DevName colors a developer name consistently across runs.
func DevName(name string) string {
	return devColors[devColorIndex(name)](name)
}

// Warn prints a yellow warning line to stderr.
func Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", BoldYellow("warning:"), fmt.Sprintf(format, args...))
}

// RiskBadge labels a forecast against its target date.
func RiskBadge(atRisk, circular bool) string {
	switch {
	case circular:
		return BoldRed("STUCK")
	case atRisk:
		return BoldRed("AT RISK")
	default:
		return BoldGreen("ON TRACK")
	}
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "done":
		return Green("✓")
	case "scheduled":
		return Cyan("●")
	case "partial":
		return Yellow("◐")
	case "unscheduled":
		return Red("✗")
	default:
		return Dim("◌")
	}
}

// Drift renders a signed business-day change; later is red, earlier green.
func Drift(days int) string {
	switch {
	case days > 0:
		return Red(fmt.Sprintf("+%dd", days))
	case days < 0:
		return Green(fmt.Sprintf("%dd", days))
	default:
		return Dim("±0d")
	}
}
