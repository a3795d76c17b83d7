package messaging

import "time"

// LunchAlertEvent is the JSON payload sent via SQS when an employee's lunch
// is overdue (graduated policy) or needed (threshold policy).
type LunchAlertEvent struct {
	EventID      string    `json:"eventId"`
	StoreID      string    `json:"storeId"`
	StoreName    string    `json:"storeName"`
	ManagerEmail string    `json:"managerEmail"`
	ClockID      string    `json:"clockId"`
	Date         string    `json:"date"`
	UserID       string    `json:"userId"`
	EmployeeName string    `json:"employeeName"`
	TimeOnClock  string    `json:"timeOnClock"`
	LunchLabel   string    `json:"lunchLabel"`
	OccurredAt   time.Time `json:"occurredAt"`
}
