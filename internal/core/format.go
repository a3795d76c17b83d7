package core

import (
	"fmt"
	"time"
)

// FormatDuration renders seconds as H:MM with no leading zero on the hours.
// Negative input renders as 0:00.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/3600, (seconds%3600)/60)
}

// FormatClockTime renders an epoch timestamp as a 12-hour wall-clock time
// (e.g. "1:48 PM") in loc.
func FormatClockTime(ts int64, loc *time.Location) string {
	return time.Unix(ts, 0).In(loc).Format("3:04 PM")
}
