package core_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborstatus.service/internal/core"
	"laborstatus.service/internal/core/model"
)

const today = "2024-05-17"

var crew = fakeNames{"1": "Ana L", "2": "Ben O", "3": "Cara N", "4": "Dev P"}

func newStatusService(src *fakeSource, opts ...core.Option) *core.StatusService {
	opts = append([]core.Option{core.WithClock(fixedClock)}, opts...)
	weekly := core.NewWeeklyAggregator(src, testLoc, opts...)
	return core.NewStatusService(src, weekly, crew, testLoc, opts...)
}

func computeToday(t *testing.T, svc *core.StatusService) []model.EmployeeStatus {
	t.Helper()
	rows, err := svc.ComputeDailyStatus(context.Background(), "clock-1", nil)
	require.NoError(t, err)
	return rows
}

func TestComputeDailyStatus_OpenShift(t *testing.T) {
	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(time.Hour)}}},
	}

	rows := computeToday(t, newStatusService(src))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "1", row.UserID)
	assert.Equal(t, "Ana L", row.Name)
	assert.Equal(t, model.StateClockedIn, row.Status)
	require.NotNil(t, row.CurrentSegmentStart)
	assert.Equal(t, "1:00 PM", *row.CurrentSegmentStart)
	assert.Equal(t, "1:00", row.CurrentTimeOnClock)
	assert.Equal(t, "1:00", row.TotalTimeOnClock)
	assert.Equal(t, "0:00", row.OvertimeToday)
	assert.Equal(t, "0:00", row.BreakTaken)
	assert.Equal(t, model.LunchNotYetDue, row.Lunch.State)
	assert.Equal(t, "Not Yet Due", row.Lunch.Label)
}

func TestComputeDailyStatus_States(t *testing.T) {
	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{
			UserID: "1",
			Shifts: []model.RawShift{{Start: ago(5 * time.Hour)}},
			Breaks: []model.RawBreak{{Start: ago(10 * time.Minute)}},
		},
		{UserID: "2", Shifts: []model.RawShift{closedShift(17, 6, 4*time.Hour)}},
	}

	rows := computeToday(t, newStatusService(src))
	require.Len(t, rows, 2)

	onLunch := rows[0]
	assert.Equal(t, model.StateOnLunch, onLunch.Status)
	assert.Equal(t, "5:00", onLunch.CurrentTimeOnClock)
	assert.Equal(t, model.LunchOverdue, onLunch.Lunch.State)

	off := rows[1]
	assert.Equal(t, model.StateOff, off.Status)
	assert.Nil(t, off.CurrentSegmentStart)
	assert.Equal(t, "0:00", off.CurrentTimeOnClock)
	assert.Equal(t, "4:00", off.TotalTimeOnClock)
}

func TestComputeDailyStatus_SortsByCurrentSegment(t *testing.T) {
	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(300 * time.Second)}}},
		{UserID: "2", Shifts: []model.RawShift{closedShift(17, 6, 2*time.Hour)}},
		{UserID: "3", Shifts: []model.RawShift{{Start: ago(900 * time.Second)}}},
		{UserID: "4", Shifts: []model.RawShift{closedShift(17, 7, time.Hour)}},
		{UserID: "5", Breaks: []model.RawBreak{closedBreak(17, 9, time.Hour)}},
	}

	rows := computeToday(t, newStatusService(src))

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids, "users without shifts are omitted, ties keep source order")
}

func TestComputeDailyStatus_JustClockedInRanksAboveClockedOut(t *testing.T) {
	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{UserID: "4", Shifts: []model.RawShift{closedShift(17, 6, 2*time.Hour)}},
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(300 * time.Second)}}},
		{UserID: "2", Shifts: []model.RawShift{{Start: ago(0)}}},
		{UserID: "3", Shifts: []model.RawShift{{Start: ago(900 * time.Second)}}},
	}

	rows := computeToday(t, newStatusService(src))

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids)
	assert.Equal(t, model.StateClockedIn, rows[2].Status)
	assert.Equal(t, "0:00", rows[2].CurrentTimeOnClock)
	assert.Equal(t, model.StateOff, rows[3].Status)
}

func TestComputeDailyStatus_Overtime(t *testing.T) {
	src := newFakeSource()
	for day := 13; day <= 16; day++ {
		date := time.Date(2024, 5, day, 0, 0, 0, 0, testLoc).Format(model.DateLayout)
		src.days[date] = []model.UserDayActivity{
			{UserID: "1", Shifts: []model.RawShift{closedShift(day, 6, 8*time.Hour+30*time.Minute)}},
		}
	}
	src.days[today] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(9 * time.Hour)}}},
	}

	rows := computeToday(t, newStatusService(src))
	require.Len(t, rows, 1)

	// 9h today is 1h daily overtime; 43h for the week is 3h weekly overtime.
	assert.Equal(t, "9:00", rows[0].TotalTimeOnClock)
	assert.Equal(t, "3:00", rows[0].OvertimeToday)
}

func TestComputeDailyStatus_LunchTaken(t *testing.T) {
	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{
			UserID: "1",
			Shifts: []model.RawShift{closedShift(17, 6, 6*time.Hour+40*time.Minute)},
			Breaks: []model.RawBreak{closedBreak(17, 10, 40*time.Minute)},
		},
	}

	row := computeToday(t, newStatusService(src))[0]
	assert.Equal(t, "6:00", row.TotalTimeOnClock)
	assert.Equal(t, "0:40", row.BreakTaken)
	assert.Equal(t, model.LunchTaken, row.Lunch.State)
	assert.False(t, row.Lunch.NeedsLunch)

	row = computeToday(t, newStatusService(src, core.WithLunchPolicy(core.DefaultThresholdPolicy())))[0]
	assert.False(t, row.Lunch.NeedsLunch)
	assert.Equal(t, "OK", row.Lunch.Label)
}

func TestComputeDailyStatus_ThresholdUsesGrossTime(t *testing.T) {
	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{
			UserID: "1",
			Shifts: []model.RawShift{closedShift(17, 6, 4*time.Hour+10*time.Minute)},
			Breaks: []model.RawBreak{closedBreak(17, 8, 15*time.Minute)},
		},
	}

	row := computeToday(t, newStatusService(src, core.WithLunchPolicy(core.DefaultThresholdPolicy())))[0]
	assert.Equal(t, "3:55", row.TotalTimeOnClock)
	assert.True(t, row.Lunch.NeedsLunch)
}

func TestComputeDailyStatus_BusinessHours(t *testing.T) {
	bh, err := core.ParseBusinessHours(core.DefaultBusinessHours)
	require.NoError(t, err)

	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(time.Hour)}}},
	}

	night := func() time.Time { return time.Date(2024, 5, 17, 3, 0, 0, 0, testLoc) }
	rows := computeToday(t, newStatusService(src, core.WithBusinessHours(bh), core.WithClock(night)))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Empty(t, src.sortedCalls())

	rows = computeToday(t, newStatusService(src, core.WithBusinessHours(bh)))
	assert.Len(t, rows, 1)
	assert.Len(t, src.sortedCalls(), 8, "one day query plus seven weekly queries")
}

func TestComputeDailyStatus_HistoricalDate(t *testing.T) {
	src := newFakeSource()
	src.days["2024-05-14"] = []model.UserDayActivity{
		{UserID: "2", Shifts: []model.RawShift{closedShift(14, 8, 5*time.Hour)}},
	}

	date := time.Date(2024, 5, 14, 0, 0, 0, 0, testLoc)
	rows, err := newStatusService(src).ComputeDailyStatus(context.Background(), "clock-1", &date)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "5:00", rows[0].TotalTimeOnClock)
	assert.Equal(t, model.StateOff, rows[0].Status)
}

func TestComputeDailyStatus_FetchFailure(t *testing.T) {
	src := newFakeSource()
	src.errOn["2024-05-15"] = &model.FetchError{Op: "time activities", StatusCode: 500}

	rows, err := newStatusService(src).ComputeDailyStatus(context.Background(), "clock-1", nil)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, model.ErrFetch))
	assert.Contains(t, err.Error(), today)
}

func TestComputeDailyStatus_ReadsTheClockOnce(t *testing.T) {
	var reads atomic.Int32
	clock := func() time.Time {
		reads.Add(1)
		return testNow
	}

	src := newFakeSource()
	src.days[today] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(time.Hour)}}},
	}

	_ = computeToday(t, newStatusService(src, core.WithClock(clock)))
	assert.Equal(t, int32(1), reads.Load())
}
