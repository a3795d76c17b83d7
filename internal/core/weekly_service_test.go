package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborstatus.service/internal/core"
	"laborstatus.service/internal/core/model"
)

var weekOf0513 = []string{
	"2024-05-13..2024-05-13",
	"2024-05-14..2024-05-14",
	"2024-05-15..2024-05-15",
	"2024-05-16..2024-05-16",
	"2024-05-17..2024-05-17",
	"2024-05-18..2024-05-18",
	"2024-05-19..2024-05-19",
}

func closedShift(day int, startHour int, length time.Duration) model.RawShift {
	start := time.Date(2024, 5, day, startHour, 0, 0, 0, testLoc)
	return model.RawShift{Start: ts(start.Unix()), End: ts(start.Add(length).Unix())}
}

func closedBreak(day int, startHour int, length time.Duration) model.RawBreak {
	start := time.Date(2024, 5, day, startHour, 0, 0, 0, testLoc)
	return model.RawBreak{Start: ts(start.Unix()), End: ts(start.Add(length).Unix())}
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2024, 5, 13, 0, 0, 0, 0, testLoc)

	assert.Equal(t, monday, core.WeekStart(monday, testLoc))
	assert.Equal(t, monday, core.WeekStart(testNow, testLoc))
	assert.Equal(t, monday, core.WeekStart(time.Date(2024, 5, 19, 23, 59, 0, 0, testLoc), testLoc))
	assert.Equal(t, monday.AddDate(0, 0, 7), core.WeekStart(time.Date(2024, 5, 20, 0, 0, 0, 0, testLoc), testLoc))

	// 03:00 UTC on the 20th is still Sunday evening locally.
	assert.Equal(t, monday, core.WeekStart(time.Date(2024, 5, 20, 3, 0, 0, 0, time.UTC), testLoc))
}

func TestComputeWeeklyTotals_QueriesEachDayOnce(t *testing.T) {
	for _, ref := range []time.Time{
		time.Date(2024, 5, 13, 0, 0, 0, 0, testLoc),
		testNow,
		time.Date(2024, 5, 19, 22, 0, 0, 0, testLoc),
	} {
		src := newFakeSource()
		agg := core.NewWeeklyAggregator(src, testLoc, core.WithClock(fixedClock))

		_, err := agg.ComputeWeeklyTotals(context.Background(), "clock-1", ref)
		require.NoError(t, err)
		assert.Equal(t, weekOf0513, src.sortedCalls(), "ref %s", ref)
	}
}

func TestComputeWeeklyTotals_Folds(t *testing.T) {
	src := newFakeSource()
	src.days["2024-05-13"] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{closedShift(13, 9, 8*time.Hour)}},
		{UserID: "2", Shifts: []model.RawShift{closedShift(13, 9, 4*time.Hour)}},
	}
	src.days["2024-05-14"] = []model.UserDayActivity{
		{
			UserID: "1",
			Shifts: []model.RawShift{closedShift(14, 8, 9*time.Hour)},
			Breaks: []model.RawBreak{closedBreak(14, 12, time.Hour)},
		},
	}
	src.days["2024-05-17"] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{{Start: ago(2 * time.Hour)}}},
	}

	agg := core.NewWeeklyAggregator(src, testLoc, core.WithClock(fixedClock))
	totals, err := agg.ComputeWeeklyTotals(context.Background(), "clock-1", testNow)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	u1 := totals["1"]
	require.NotNil(t, u1)
	assert.Equal(t, map[string]int64{
		"2024-05-13": 8 * 3600,
		"2024-05-14": 8 * 3600,
		"2024-05-17": 2 * 3600,
	}, u1.DailySeconds)
	assert.Equal(t, int64(18*3600), u1.WeeklySeconds)
	assert.True(t, u1.DailyOver8["2024-05-13"])
	assert.True(t, u1.DailyOver8["2024-05-14"])
	assert.False(t, u1.DailyOver8["2024-05-17"])
	assert.False(t, u1.WeekOver40)

	u2 := totals["2"]
	require.NotNil(t, u2)
	assert.Equal(t, int64(4*3600), u2.WeeklySeconds)
	assert.False(t, u2.DailyOver8["2024-05-13"])
}

func TestComputeWeeklyTotals_WeekOver40(t *testing.T) {
	src := newFakeSource()
	for day := 13; day <= 17; day++ {
		date := time.Date(2024, 5, day, 0, 0, 0, 0, testLoc).Format(model.DateLayout)
		src.days[date] = []model.UserDayActivity{
			{UserID: "7", Shifts: []model.RawShift{closedShift(day, 6, 8*time.Hour+30*time.Minute)}},
		}
	}

	agg := core.NewWeeklyAggregator(src, testLoc, core.WithClock(fixedClock))
	totals, err := agg.ComputeWeeklyTotals(context.Background(), "clock-1", testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(42*3600+30*60), totals["7"].WeeklySeconds)
	assert.True(t, totals["7"].WeekOver40)
}

func TestComputeWeeklyTotals_AnyFailingDayFailsTheWeek(t *testing.T) {
	src := newFakeSource()
	src.days["2024-05-13"] = []model.UserDayActivity{
		{UserID: "1", Shifts: []model.RawShift{closedShift(13, 9, 8*time.Hour)}},
	}
	src.errOn["2024-05-16"] = &model.FetchError{Op: "time activities", ClockID: "clock-1", Date: "2024-05-16", StatusCode: 503}

	agg := core.NewWeeklyAggregator(src, testLoc, core.WithClock(fixedClock), core.WithFetchConcurrency(2))
	totals, err := agg.ComputeWeeklyTotals(context.Background(), "clock-1", testNow)

	require.Error(t, err)
	assert.Nil(t, totals)
	assert.True(t, errors.Is(err, model.ErrFetch))
	assert.Contains(t, err.Error(), "clock-1")
}
