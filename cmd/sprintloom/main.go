package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joshharrison/sprintloom/internal/backlog"
	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/claude"
	"github.com/joshharrison/sprintloom/internal/config"
	"github.com/joshharrison/sprintloom/internal/forecast"
	"github.com/joshharrison/sprintloom/internal/graph"
	"github.com/joshharrison/sprintloom/internal/reporter"
	"github.com/joshharrison/sprintloom/internal/scheduler"
	"github.com/joshharrison/sprintloom/internal/state"
	"github.com/joshharrison/sprintloom/internal/team"
	"github.com/joshharrison/sprintloom/internal/ui"
	"github.com/spf13/cobra"
)

var (
	flagConfig     string
	flagVelocity   float64
	flagSprintDays int
	flagJSON       bool
	flagStrategy   string
	flagEpics      []string
	flagStart      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sprintloom",
		Short: "Forecast backlog completion dates from story points and team capacity",
		Long: `Sprintloom reads an exported backlog of strategies, epics and stories,
simulates a greedy day-by-day assignment of stories to developers, and
projects when each strategy will finish against its target date.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().Float64Var(&flagVelocity, "velocity", 0, "Points per full-time developer per sprint")
	rootCmd.PersistentFlags().IntVar(&flagSprintDays, "sprint-days", 0, "Working days per sprint")
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "", "Override the plan start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(portfolioCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.BoldRed("error:"), err)
		os.Exit(1)
	}
}

// inputs is everything a command needs after loading files and flags.
type inputs struct {
	cfg     *config.Config
	backlog *backlog.Backlog
	pool    *team.Pool
	sched   scheduler.Config
}

// loadInputs reads config and backlog, then layers flags on top. Velocity
// precedence is flag, then the export's own velocity, then the config file.
func loadInputs(cmd *cobra.Command, path string) (*inputs, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}

	bl, err := backlog.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range bl.Warnings {
		ui.Warn("%s", w)
	}

	if bl.Velocity > 0 {
		cfg.Velocity = bl.Velocity
	}
	if cmd.Flags().Changed("velocity") {
		cfg.Velocity = flagVelocity
	}
	if cmd.Flags().Changed("sprint-days") {
		cfg.SprintDays = flagSprintDays
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &inputs{
		cfg:     cfg,
		backlog: bl,
		pool:    team.New(bl.Team),
		sched:   cfg.Scheduler(),
	}, nil
}

// preparePlan applies the --epic and --start flags to a copy of plan.
func preparePlan(plan *graph.Plan) (*graph.Plan, error) {
	out := plan.Clone()
	if len(flagEpics) > 0 {
		out = out.Filter(func(e *graph.Epic) bool {
			for _, key := range flagEpics {
				if e.ID == key || strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(key)) {
					return true
				}
			}
			return false
		})
		if len(out.Epics) == 0 {
			return nil, fmt.Errorf("no epics match %s", strings.Join(flagEpics, ", "))
		}
	}
	if flagStart != "" {
		start, err := calendar.ParseDate(flagStart)
		if err != nil {
			return nil, fmt.Errorf("--start: %w", err)
		}
		out.StartDate = start
	}
	return out, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, cancelling..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func forecastCmd() *cobra.Command {
	var (
		flagBreakdown      bool
		flagNarrate        bool
		flagSave           bool
		flagPromptTemplate string
	)

	cmd := &cobra.Command{
		Use:   "forecast <backlog.json>",
		Short: "Schedule one strategy and project its completion date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd, args[0])
			if err != nil {
				return err
			}
			chosen, err := in.backlog.Find(flagStrategy)
			if err != nil {
				return err
			}
			plan, err := preparePlan(chosen)
			if err != nil {
				return err
			}

			report := forecast.Compute(plan, in.pool, in.sched)
			rpt := reporter.New(report, in.pool)

			drift := ""
			if flagSave {
				if drift, err = saveSnapshot(in.cfg.HistoryDir, report); err != nil {
					return err
				}
			}

			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintLogo()
			text := rpt.PrintForecast(os.Stdout)
			if flagBreakdown {
				rpt.PrintBreakdown(os.Stdout)
			}
			if drift != "" {
				fmt.Printf("\n💾 %s %s\n", ui.Dim("Saved snapshot; change since last:"), drift)
			}

			if flagNarrate {
				ctx, cancel := signalContext()
				defer cancel()
				if err := narrate(ctx, in.cfg.Model, flagPromptTemplate, report, text, drift); err != nil {
					ui.Warn("narrative unavailable: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Strategy ID or name (required when the file has several)")
	cmd.Flags().StringSliceVar(&flagEpics, "epic", nil, "Only forecast these epics (ID or name, repeatable)")
	cmd.Flags().BoolVar(&flagBreakdown, "breakdown", false, "Show the per-sprint breakdown")
	cmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Ask Claude for a narrative summary")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Record the forecast in the snapshot history")
	cmd.Flags().StringVar(&flagPromptTemplate, "prompt-template", "", "Custom narrative prompt template path")

	return cmd
}

func narrate(ctx context.Context, model, templatePath string, report *forecast.Report, text, drift string) error {
	client, err := claude.NewClient("", model)
	if err != nil {
		return err
	}
	prompt, err := claude.RenderPrompt(claude.NewPromptData(report, text, drift), templatePath)
	if err != nil {
		return fmt.Errorf("render prompt: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n🤖 %s\n", ui.Dim("Asking Claude for a summary..."))
	summary, err := client.NarrateForecast(ctx, prompt)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n%s\n", ui.BoldCyan("Narrative"), summary)
	return nil
}

// saveSnapshot appends the forecast to history and describes the drift
// from the previous snapshot of the same plan.
func saveSnapshot(dir string, report *forecast.Report) (string, error) {
	h, err := state.Load(dir)
	if err != nil {
		return "", err
	}
	snap := state.FromReport(report, time.Now())
	prev, hadPrev := h.Latest(report.PlanID)
	if err := h.Append(snap); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	if !hadPrev {
		return ui.Dim("first snapshot"), nil
	}
	return ui.Drift(state.Drift(prev, snap)), nil
}

func portfolioCmd() *cobra.Command {
	var (
		flagMaxParallel int
		flagSave        bool
	)

	cmd := &cobra.Command{
		Use:   "portfolio <backlog.json>",
		Short: "Forecast every strategy in the file side by side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInputs(cmd, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-parallel") {
				in.cfg.MaxParallel = flagMaxParallel
			}

			var plans []*graph.Plan
			for _, p := range in.backlog.Plans() {
				prepared, err := preparePlan(p)
				if err != nil {
					return fmt.Errorf("strategy %s: %w", p.ID, err)
				}
				plans = append(plans, prepared)
			}
			if len(plans) == 0 {
				return fmt.Errorf("no strategies found in %s", args[0])
			}

			ctx, cancel := signalContext()
			defer cancel()
			reports, err := forecast.ComputeAll(ctx, plans, in.pool, in.sched, in.cfg.MaxParallel)
			if err != nil {
				return err
			}

			if flagSave {
				for _, r := range reports {
					if _, err := saveSnapshot(in.cfg.HistoryDir, r); err != nil {
						return err
					}
				}
			}

			if flagJSON {
				return outputJSON(reports)
			}
			reporter.PrintPortfolio(os.Stdout, reports)
			return nil
		},
	}

	cmd.Flags().IntVar(&flagMaxParallel, "max-parallel", config.DefaultMaxParallel, "Max strategies forecast concurrently")
	cmd.Flags().StringSliceVar(&flagEpics, "epic", nil, "Only forecast these epics (ID or name, repeatable)")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Record every forecast in the snapshot history")

	return cmd
}

func graphCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "graph <backlog.json>",
		Short: "Show the story dependency layers of a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bl, err := backlog.Load(args[0])
			if err != nil {
				return err
			}
			chosen, err := bl.Find(flagStrategy)
			if err != nil {
				return err
			}
			plan, err := preparePlan(chosen)
			if err != nil {
				return err
			}
			g := graph.Build(plan)

			switch flagFormat {
			case "dot":
				printDOT(g)
			case "ascii":
				fmt.Printf("🔗 %s\n", ui.BoldCyan("Story Dependency Graph"))
				fmt.Println(ui.Cyan("═══════════════════════"))
				reporter.PrintLayers(os.Stdout, g)
			default:
				return fmt.Errorf("unsupported format: %s (use ascii or dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Strategy ID or name")
	cmd.Flags().StringSliceVar(&flagEpics, "epic", nil, "Only include these epics (ID or name, repeatable)")
	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")

	return cmd
}

func historyCmd() *cobra.Command {
	var flagClean bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved forecast snapshots and how they drifted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flagConfig)
			if err != nil {
				return err
			}

			if flagClean {
				if err := state.Clean(cfg.HistoryDir); err != nil {
					return fmt.Errorf("clean history: %w", err)
				}
				fmt.Printf("🧹 %s %s\n", ui.Green("Removed"), cfg.HistoryDir)
				return nil
			}

			if !state.Exists(cfg.HistoryDir) {
				return fmt.Errorf("no snapshots yet (run forecast --save)")
			}
			h, err := state.Load(cfg.HistoryDir)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(h)
			}

			var order []string
			seen := make(map[string]bool)
			for _, s := range h.Snapshots {
				if flagStrategy != "" && s.PlanID != flagStrategy {
					continue
				}
				if !seen[s.PlanID] {
					seen[s.PlanID] = true
					order = append(order, s.PlanID)
				}
			}

			for _, id := range order {
				snaps := h.ForPlan(id)
				name := snaps[len(snaps)-1].PlanName
				fmt.Printf("\n📜 %s %s\n", ui.Bold(name), ui.Dim("("+id+")"))
				for i, s := range snaps {
					drift := ""
					if i > 0 {
						drift = ui.Drift(state.Drift(snaps[i-1], s))
					}
					fmt.Printf("    %s  projected %s  %.1f sprints  %s %s\n",
						ui.Dim(s.TakenAt.Format("2006-01-02 15:04")),
						ui.Bold(calendar.Format(s.ProjectedEndDate)),
						s.SprintCount,
						ui.RiskBadge(s.IsAtRisk, s.Circular),
						drift)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagClean, "clean", false, "Delete all saved snapshots")
	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Only show this strategy ID")

	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printDOT(g *graph.WorkGraph) {
	fmt.Println("digraph sprintloom {")
	fmt.Println("  rankdir=LR;")
	fmt.Println("  node [shape=box, style=rounded];")
	fmt.Println()

	for _, id := range g.Order {
		item := g.Items[id]
		attrs := fmt.Sprintf(`label="%s\n%s (%g)"`, id, strings.ReplaceAll(item.Name, `"`, `'`), item.Points)
		if g.EffectiveDone(id) {
			attrs += `, style="rounded,dashed", color=gray`
		}
		fmt.Printf("  %q [%s];\n", id, attrs)
	}

	fmt.Println()

	for _, from := range g.Order {
		for _, to := range g.Adj[from] {
			fmt.Printf("  %q -> %q;\n", from, to)
		}
	}

	fmt.Println("}")
}
