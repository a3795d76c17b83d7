package ports

import (
	"context"

	"laborstatus.service/internal/core/model"
)

// ActivitySource is the single query the core needs from the time clock:
// every user's shifts and manual breaks for clockID between two ISO dates,
// both inclusive.
type ActivitySource interface {
	TimeActivities(ctx context.Context, clockID, startDate, endDate string) ([]model.UserDayActivity, error)
}

// UserSource lists the active employees used to resolve display names.
type UserSource interface {
	ActiveUsers(ctx context.Context) ([]model.User, error)
}

// NameResolver turns a user id into a display name. Unknown ids resolve to
// the id itself.
type NameResolver interface {
	Name(userID string) string
}
