package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"laborstatus.service/internal/core/model"
	"laborstatus.service/internal/ports"
)

// Directory is a read-mostly map from user id to display name ("First L").
// Lookups are safe for concurrent use; Refresh swaps the whole map at once.
type Directory struct {
	source ports.UserSource

	mu          sync.RWMutex
	names       map[string]string
	refreshedAt time.Time
}

// New creates an empty directory. Call Refresh before serving traffic.
func New(source ports.UserSource) *Directory {
	return &Directory{
		source: source,
		names:  make(map[string]string),
	}
}

// DisplayName formats a user as first name plus last initial.
func DisplayName(u model.User) string {
	name := strings.TrimSpace(u.FirstName)
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(u.LastName)); r != utf8.RuneError {
		name += " " + string(r)
	}
	return strings.TrimSpace(name)
}

// Refresh reloads the active users. On failure the previous map is kept.
func (d *Directory) Refresh(ctx context.Context) error {
	users, err := d.source.ActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh user directory: %w", err)
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserID] = DisplayName(u)
	}

	d.mu.Lock()
	d.names = names
	d.refreshedAt = time.Now()
	d.mu.Unlock()

	log.Ctx(ctx).Info().Int("users", len(names)).Msg("User directory refreshed")
	return nil
}

// Run refreshes the directory every interval until ctx is canceled.
func (d *Directory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Refresh(ctx); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("Keeping previous user directory")
			}
		}
	}
}

// Lookup returns the display name for userID and whether it was found.
func (d *Directory) Lookup(userID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[userID]
	return name, ok
}

// Name returns the display name, or userID itself when unknown.
func (d *Directory) Name(userID string) string {
	if name, ok := d.Lookup(userID); ok {
		return name
	}
	return userID
}

// Len is the number of known users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}

// RefreshedAt is the time of the last successful refresh.
func (d *Directory) RefreshedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.refreshedAt
}
