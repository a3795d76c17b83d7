package model

import (
	"time"
)

// DateLayout is the ISO date format used for day keys and query parameters.
const DateLayout = "2006-01-02"

// RawShift is one clock-in segment as reported by the time clock. A nil End
// means the segment is still open.
type RawShift struct {
	Start *int64 `json:"start,omitempty"`
	End   *int64 `json:"end,omitempty"`
}

// RawBreak is one manual break. A nil End means the employee is on it right now.
type RawBreak struct {
	Start *int64 `json:"start,omitempty"`
	End   *int64 `json:"end,omitempty"`
}

// UserDayActivity holds one user's shifts and breaks for a single day.
type UserDayActivity struct {
	UserID string     `json:"userId"`
	Shifts []RawShift `json:"shifts"`
	Breaks []RawBreak `json:"breaks"`
}

// User is an active employee as listed by the time clock.
type User struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// WeeklyEntry is one user's net worked seconds across a Monday-Sunday week.
type WeeklyEntry struct {
	DailySeconds  map[string]int64 `json:"dailySecs"`
	WeeklySeconds int64            `json:"weeklySecs"`
	DailyOver8    map[string]bool  `json:"dailyOver8"`
	WeekOver40    bool             `json:"weekOver40"`
}

// EmployeeState is the clock status shown on the dashboard.
type EmployeeState string

const (
	StateOff       EmployeeState = "Off"
	StateClockedIn EmployeeState = "Clocked In"
	StateOnLunch   EmployeeState = "On Lunch"
)

// LunchState is the graduated lunch compliance state.
type LunchState string

const (
	LunchNotYetDue LunchState = "NOT_YET_DUE"
	LunchDueNow    LunchState = "DUE_NOW"
	LunchOverdue   LunchState = "OVERDUE"
	LunchTaken     LunchState = "TAKEN"
)

// LunchClass is the severity class rendered next to the lunch status.
type LunchClass string

const (
	LunchClassOK      LunchClass = "lunch-ok"
	LunchClassDue     LunchClass = "lunch-due"
	LunchClassOverdue LunchClass = "lunch-overdue"
)

// LunchStatus is the outcome of a lunch policy. State and Overdue are only
// set by the graduated policy; NeedsLunch is set by both.
type LunchStatus struct {
	State      LunchState    `json:"state,omitempty"`
	Overdue    time.Duration `json:"-"`
	Label      string        `json:"label"`
	Class      LunchClass    `json:"class"`
	NeedsLunch bool          `json:"needsLunch"`
}

// EmployeeStatus is one row of the daily dashboard.
type EmployeeStatus struct {
	UserID              string        `json:"userId"`
	Name                string        `json:"name"`
	Status              EmployeeState `json:"status"`
	CurrentSegmentStart *string       `json:"currentSegmentStart"`
	CurrentTimeOnClock  string        `json:"currentTimeOnClock"`
	TotalTimeOnClock    string        `json:"totalTimeOnClock"`
	OvertimeToday       string        `json:"otToday"`
	BreakTaken          string        `json:"breakTaken"`
	Lunch               LunchStatus   `json:"lunch"`
}

// Store maps a physical location to its time clock.
type Store struct {
	StoreID      string `json:"storeId"`
	ClockID      string `json:"clockId"`
	DisplayName  string `json:"displayName"`
	ManagerEmail string `json:"-"`
}
