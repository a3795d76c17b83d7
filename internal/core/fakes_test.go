package core_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"laborstatus.service/internal/core/model"
)

// Friday 2024-05-17 14:00 at a fixed UTC-7 offset.
var (
	testLoc = time.FixedZone("PDT", -7*3600)
	testNow = time.Date(2024, 5, 17, 14, 0, 0, 0, testLoc)
)

func fixedClock() time.Time { return testNow }

func ts(v int64) *int64 { return &v }

// ago returns the epoch second d before testNow.
func ago(d time.Duration) *int64 { return ts(testNow.Add(-d).Unix()) }

type fakeSource struct {
	mu    sync.Mutex
	days  map[string][]model.UserDayActivity
	errOn map[string]error
	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		days:  make(map[string][]model.UserDayActivity),
		errOn: make(map[string]error),
	}
}

func (f *fakeSource) TimeActivities(_ context.Context, _ string, startDate, endDate string) ([]model.UserDayActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, startDate+".."+endDate)
	if err := f.errOn[startDate]; err != nil {
		return nil, err
	}
	return f.days[startDate], nil
}

func (f *fakeSource) sortedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

type fakeNames map[string]string

func (n fakeNames) Name(userID string) string {
	if name, ok := n[userID]; ok {
		return name
	}
	return userID
}
