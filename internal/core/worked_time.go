package core

import (
	"time"

	"laborstatus.service/internal/core/model"
)

const (
	dailyOvertimeAfter  = int64(8 * time.Hour / time.Second)
	weeklyOvertimeAfter = int64(40 * time.Hour / time.Second)
)

// daySummary is the reduction of one user's shifts and breaks for a day.
type daySummary struct {
	// ShiftSeconds credits open shifts up to now.
	ShiftSeconds int64
	// BreakSeconds only counts breaks with both endpoints.
	BreakSeconds int64
	// OpenStart is the start of the last shift without an end.
	OpenStart *int64
	// OnBreak is set when any break has a start and no end.
	OnBreak bool
}

func (d daySummary) NetSeconds() int64 {
	return max(0, d.ShiftSeconds-d.BreakSeconds)
}

func summarizeDay(ua model.UserDayActivity, now int64) daySummary {
	var sum daySummary

	for _, shift := range ua.Shifts {
		if shift.Start == nil {
			continue
		}
		if shift.End != nil {
			sum.ShiftSeconds += *shift.End - *shift.Start
			continue
		}
		start := *shift.Start
		sum.OpenStart = &start
		sum.ShiftSeconds += now - start
	}

	for _, br := range ua.Breaks {
		if br.Start == nil {
			continue
		}
		if br.End == nil {
			sum.OnBreak = true
			continue
		}
		sum.BreakSeconds += *br.End - *br.Start
	}

	return sum
}

// overtimeSeconds is the larger of daily overtime past 8h and weekly
// overtime past 40h.
func overtimeSeconds(netDaily, weekly int64) int64 {
	daily := max(0, netDaily-dailyOvertimeAfter)
	week := max(0, weekly-weeklyOvertimeAfter)
	return max(daily, week)
}

func seconds(s int64) time.Duration {
	return time.Duration(s) * time.Second
}
