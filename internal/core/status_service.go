package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"laborstatus.service/internal/core/model"
	"laborstatus.service/internal/ports"
)

// StatusService builds the per-employee dashboard for one time clock and day.
type StatusService struct {
	source ports.ActivitySource
	weekly *WeeklyAggregator
	names  ports.NameResolver
	loc    *time.Location
	now    func() time.Time
	policy LunchPolicy
	hours  *BusinessHours
}

// NewStatusService wires the daily engine to its data source, weekly
// aggregator and name lookup. Days and wall-clock times are taken in loc.
func NewStatusService(source ports.ActivitySource, weekly *WeeklyAggregator, names ports.NameResolver, loc *time.Location, opts ...Option) *StatusService {
	o := buildOptions(opts)
	return &StatusService{
		source: source,
		weekly: weekly,
		names:  names,
		loc:    loc,
		now:    o.now,
		policy: o.policy,
		hours:  o.hours,
	}
}

// Location is the time zone used for day boundaries.
func (s *StatusService) Location() *time.Location { return s.loc }

// Weekly exposes the aggregator used for overtime context.
func (s *StatusService) Weekly() *WeeklyAggregator { return s.weekly }

// Policy is the configured lunch policy.
func (s *StatusService) Policy() LunchPolicy { return s.policy }

// Today is the current date in the configured time zone.
func (s *StatusService) Today() time.Time {
	return startOfDay(s.now(), s.loc)
}

type rankedStatus struct {
	status      model.EmployeeStatus
	segmentSecs int64
	open        bool
}

// ComputeDailyStatus returns one row per employee with at least one shift on
// date (today when nil), ordered by current segment length, longest first.
// Outside business hours it returns an empty list without calling the time
// clock.
func (s *StatusService) ComputeDailyStatus(ctx context.Context, clockID string, date *time.Time) ([]model.EmployeeStatus, error) {
	now := s.now()

	if s.hours != nil && !s.hours.Contains(now.In(s.loc)) {
		log.Ctx(ctx).Info().Str("clock_id", clockID).Msg("Outside business hours, skipping time clock call")
		return []model.EmployeeStatus{}, nil
	}

	day := startOfDay(now, s.loc)
	if date != nil {
		day = startOfDay(*date, s.loc)
	}
	ds := day.Format(model.DateLayout)

	var (
		activities []model.UserDayActivity
		weekly     map[string]*model.WeeklyEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activities, err = s.source.TimeActivities(gctx, clockID, ds, ds)
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = s.weekly.totals(gctx, clockID, day, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("daily status for clock %s on %s: %w", clockID, ds, err)
	}

	nowTS := now.Unix()
	ranked := make([]rankedStatus, 0, len(activities))
	for _, ua := range activities {
		if len(ua.Shifts) == 0 {
			continue
		}
		ranked = append(ranked, s.buildStatus(ua, weekly, nowTS))
	}

	// Longest open segment first; employees with no open segment last.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].open != ranked[j].open {
			return ranked[i].open
		}
		return ranked[i].segmentSecs > ranked[j].segmentSecs
	})

	employees := make([]model.EmployeeStatus, len(ranked))
	for i, r := range ranked {
		employees[i] = r.status
	}

	log.Ctx(ctx).Debug().
		Str("clock_id", clockID).
		Str("date", ds).
		Int("employees", len(employees)).
		Msg("Computed daily status")

	return employees, nil
}

func (s *StatusService) buildStatus(ua model.UserDayActivity, weekly map[string]*model.WeeklyEntry, now int64) rankedStatus {
	sum := summarizeDay(ua, now)
	net := sum.NetSeconds()

	var weeklySecs int64
	if entry, ok := weekly[ua.UserID]; ok {
		weeklySecs = entry.WeeklySeconds
	}

	state := model.StateOff
	switch {
	case sum.OnBreak:
		state = model.StateOnLunch
	case sum.OpenStart != nil:
		state = model.StateClockedIn
	}

	var (
		segmentSecs  int64
		segmentStart *string
	)
	if sum.OpenStart != nil {
		segmentSecs = now - *sum.OpenStart
		start := FormatClockTime(*sum.OpenStart, s.loc)
		segmentStart = &start
	}

	return rankedStatus{
		segmentSecs: segmentSecs,
		open:        sum.OpenStart != nil,
		status: model.EmployeeStatus{
			UserID:              ua.UserID,
			Name:                s.names.Name(ua.UserID),
			Status:              state,
			CurrentSegmentStart: segmentStart,
			CurrentTimeOnClock:  FormatDuration(segmentSecs),
			TotalTimeOnClock:    FormatDuration(net),
			OvertimeToday:       FormatDuration(overtimeSeconds(net, weeklySecs)),
			BreakTaken:          FormatDuration(sum.BreakSeconds),
			Lunch:               s.policy.Evaluate(seconds(sum.ShiftSeconds), seconds(sum.BreakSeconds)),
		},
	}
}
