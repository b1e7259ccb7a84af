// Package forecast turns a schedule into summary statistics: remaining effort,
// projected finish date, risk against the target and a per-sprint breakdown.
package forecast

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/sprintloom/internal/calendar"
	"github.com/joshharrison/sprintloom/internal/graph"
	"github.com/joshharrison/sprintloom/internal/scheduler"
	"github.com/joshharrison/sprintloom/internal/team"
)

// DefaultParallel bounds ComputeAll when no limit is given.
const DefaultParallel = 4

// Compute schedules the plan and derives its forecast.
func Compute(plan *graph.Plan, pool *team.Pool, cfg scheduler.Config) *Report {
	if plan == nil {
		plan = &graph.Plan{}
	}
	if pool == nil || pool.Len() == 0 {
		pool = team.New(nil)
	}
	if cfg.WorkingDaysPerSprint <= 0 {
		cfg.WorkingDaysPerSprint = scheduler.DefaultWorkingDaysPerSprint
	}
	if cfg.PointsPerSprint <= 0 {
		cfg.PointsPerSprint = scheduler.DefaultPointsPerSprint
	}

	sched := scheduler.Schedule(plan, pool, cfg)

	days := int(math.Ceil(sched.TotalDays))
	projected := calendar.AddBusinessDays(plan.StartDate, days)

	r := &Report{
		PlanID:                plan.ID,
		PlanName:              plan.Name,
		StartDate:             plan.StartDate,
		TargetDate:            plan.TargetDate,
		TotalPoints:           sched.TotalPoints,
		TotalDays:             sched.TotalDays,
		DaysToComplete:        days,
		SprintCount:           math.Round(sched.TotalDays/float64(cfg.WorkingDaysPerSprint)*10) / 10,
		ProjectedEndDate:      projected,
		HasCircularDependency: sched.HasCircularDependency,
		Unscheduled:           sched.Unscheduled,
		ActiveDevCount:        pool.Declared(),
		Assignments:           sched.Assignments,
		Config:                cfg,
	}
	if !plan.TargetDate.IsZero() {
		target := calendar.Midnight(plan.TargetDate)
		if projected.After(target) {
			r.IsAtRisk = true
			r.SlipDays = calendar.BusinessDayDiff(target, projected)
		}
	}
	return r
}

// ComputeAll forecasts every plan concurrently, at most limit at a time.
// Each run works on its own copy of the plan and team. Reports come back in
// input order; a cancelled context abandons the remaining work.
func ComputeAll(ctx context.Context, plans []*graph.Plan, pool *team.Pool, cfg scheduler.Config, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = DefaultParallel
	}
	if pool == nil {
		pool = team.New(nil)
	}

	reports := make([]*Report, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, plan := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("forecast %s: %w", plan.ID, err)
			}
			reports[i] = Compute(plan.Clone(), pool.Clone(), cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Breakdown slices every assignment across fixed sprint windows. Each
// assignment's points are split by the overlap of [Start, End) with the
// window; the number of sprints covers the latest End, minimum one.
func Breakdown(r *Report, pool *team.Pool) []Sprint {
	if pool == nil || pool.Len() == 0 {
		pool = team.New(nil)
	}
	days := float64(r.Config.WorkingDaysPerSprint)
	if days <= 0 {
		days = scheduler.DefaultWorkingDaysPerSprint
	}

	n := 1
	for _, a := range r.Assignments {
		need := int(math.Ceil(a.End / days))
		if a.End <= a.Start {
			// A zero-length item sits in the window holding its start.
			need = int(math.Floor(a.Start/days)) + 1
		}
		n = max(n, need)
	}

	sprints := make([]Sprint, n)
	for i := range sprints {
		lo, hi := float64(i)*days, float64(i+1)*days
		sp := Sprint{
			Index:     i + 1,
			StartDay:  lo,
			EndDay:    hi,
			StartDate: calendar.AddBusinessDays(r.StartDate, int(lo)),
			EndDate:   calendar.AddBusinessDays(r.StartDate, int(hi)),
			Devs:      make([]DevSprint, pool.Len()),
		}
		for d, dev := range pool.Developers {
			sp.Devs[d] = sliceDev(r.Assignments, d, dev.Name, lo, hi)
		}
		sprints[i] = sp
	}
	return sprints
}

func sliceDev(assignments []scheduler.Assignment, devIndex int, name string, lo, hi float64) DevSprint {
	ds := DevSprint{DevName: name}
	for _, a := range assignments {
		if a.DevIndex != devIndex {
			continue
		}
		length := a.End - a.Start
		var pts float64
		if length > 0 {
			if a.Start >= hi || a.End <= lo {
				continue
			}
			overlap := math.Min(a.End, hi) - math.Max(a.Start, lo)
			pts = overlap / length * a.Points
		} else if a.Start < lo || a.Start >= hi {
			continue
		}
		ds.TotalPoints += pts
		ds.Stories = append(ds.Stories, SprintStory{
			Assignment:   a,
			SprintPoints: pts,
			Partial:      pts > 0.01 && pts < a.Points,
		})
	}
	return ds
}
