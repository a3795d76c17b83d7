package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"laborstatus.service/internal/core/model"
	"laborstatus.service/internal/ports"
)

const daysPerWeek = 7

// WeeklyAggregator folds seven single-day time clock queries into net worked
// seconds per user for a Monday-Sunday week.
type WeeklyAggregator struct {
	source      ports.ActivitySource
	loc         *time.Location
	now         func() time.Time
	concurrency int
}

// NewWeeklyAggregator creates an aggregator whose week boundaries are
// computed in loc.
func NewWeeklyAggregator(source ports.ActivitySource, loc *time.Location, opts ...Option) *WeeklyAggregator {
	o := buildOptions(opts)
	return &WeeklyAggregator{
		source:      source,
		loc:         loc,
		now:         o.now,
		concurrency: o.concurrency,
	}
}

// WeekStart returns Monday 00:00 of the week containing ref, in loc.
func WeekStart(ref time.Time, loc *time.Location) time.Time {
	day := startOfDay(ref, loc)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ComputeWeeklyTotals returns one entry per user seen during the week that
// contains ref. Any failing day fails the whole week.
func (a *WeeklyAggregator) ComputeWeeklyTotals(ctx context.Context, clockID string, ref time.Time) (map[string]*model.WeeklyEntry, error) {
	return a.totals(ctx, clockID, ref, a.now())
}

// totals runs the aggregation with an already captured now, so a caller that
// also computes a daily view sees the same instant.
func (a *WeeklyAggregator) totals(ctx context.Context, clockID string, ref, now time.Time) (map[string]*model.WeeklyEntry, error) {
	start := WeekStart(ref, a.loc)

	days := make([]string, daysPerWeek)
	results := make([][]model.UserDayActivity, daysPerWeek)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(model.DateLayout)
		g.Go(func() error {
			activities, err := a.source.TimeActivities(gctx, clockID, days[i], days[i])
			if err != nil {
				return err
			}
			results[i] = activities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("weekly totals for clock %s: %w", clockID, err)
	}

	nowTS := now.Unix()
	summary := make(map[string]*model.WeeklyEntry)
	for i, day := range days {
		for _, ua := range results[i] {
			net := summarizeDay(ua, nowTS).NetSeconds()

			entry, ok := summary[ua.UserID]
			if !ok {
				entry = &model.WeeklyEntry{DailySeconds: make(map[string]int64)}
				summary[ua.UserID] = entry
			}
			entry.DailySeconds[day] += net
			entry.WeeklySeconds += net
		}
	}

	for _, entry := range summary {
		entry.DailyOver8 = make(map[string]bool, len(entry.DailySeconds))
		for day, secs := range entry.DailySeconds {
			entry.DailyOver8[day] = secs >= dailyOvertimeAfter
		}
		entry.WeekOver40 = entry.WeeklySeconds > weeklyOvertimeAfter
	}

	log.Ctx(ctx).Debug().
		Str("clock_id", clockID).
		Str("week_start", days[0]).
		Int("users", len(summary)).
		Msg("Computed weekly totals")

	return summary, nil
}
