package compliance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"laborstatus.service/internal/core/model"
	"laborstatus.service/internal/ports/messaging"
	"laborstatus.service/internal/ports/repository"
	"laborstatus.service/pkg/logger"
)

// StatusComputer is the part of core.StatusService the scanner needs.
type StatusComputer interface {
	ComputeDailyStatus(ctx context.Context, clockID string, date *time.Time) ([]model.EmployeeStatus, error)
	Today() time.Time
}

// Scanner periodically computes every store's daily status and publishes a
// lunch alert the first time an employee on the clock needs one.
type Scanner struct {
	repo      repository.Repository
	status    StatusComputer
	publisher messaging.AlertPublisher
	// Concurrency bounds how many stores are scanned at once.
	Concurrency int

	mu       sync.Mutex
	sentDate string
	sent     map[string]struct{}
}

func NewScanner(repo repository.Repository, status StatusComputer, publisher messaging.AlertPublisher) *Scanner {
	return &Scanner{
		repo:        repo,
		status:      status,
		publisher:   publisher,
		Concurrency: 4,
		sent:        make(map[string]struct{}),
	}
}

// Run scans immediately and then every interval until ctx is canceled.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	log.Info().Dur("interval", interval).Msg("Compliance scanner started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.ScanOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Compliance scan finished with errors")
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("Compliance scanner shutting down...")
			return
		case <-ticker.C:
		}
	}
}

// ScanOnce checks every registered store once. A failing store does not stop
// the others; all failures are returned joined.
func (s *Scanner) ScanOnce(ctx context.Context) error {
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return err
	}

	day := s.status.Today()
	date := day.Format(model.DateLayout)
	s.resetIfNewDay(date)

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(max(1, s.Concurrency))
	for _, store := range stores {
		g.Go(func() error {
			if err := s.scanStore(ctx, store, day); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("store %s: %w", store.StoreID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// scanStore evaluates store on day, the same day the dedup keys use.
func (s *Scanner) scanStore(ctx context.Context, store model.Store, day time.Time) error {
	ctx = logger.WithFields(ctx, map[string]string{"store_id": store.StoreID, "clock_id": store.ClockID})

	date := day.Format(model.DateLayout)
	employees, err := s.status.ComputeDailyStatus(ctx, store.ClockID, &day)
	if err != nil {
		return err
	}

	for _, e := range employees {
		if !needsAlert(e) {
			continue
		}
		key := store.StoreID + "/" + e.UserID
		if s.alreadySent(key) {
			continue
		}

		event := messaging.LunchAlertEvent{
			EventID:      uuid.NewString(),
			StoreID:      store.StoreID,
			StoreName:    store.DisplayName,
			ManagerEmail: store.ManagerEmail,
			ClockID:      store.ClockID,
			Date:         date,
			UserID:       e.UserID,
			EmployeeName: e.Name,
			TimeOnClock:  e.TotalTimeOnClock,
			LunchLabel:   e.Lunch.Label,
			OccurredAt:   time.Now().UTC(),
		}
		if err := s.publisher.PublishLunchAlert(ctx, event); err != nil {
			return fmt.Errorf("failed to publish lunch alert for user %s: %w", e.UserID, err)
		}
		s.markSent(key)

		log.Ctx(ctx).Info().Str("user_id", e.UserID).Str("lunch", e.Lunch.Label).Msg("Published lunch alert")
	}
	return nil
}

// needsAlert is true for employees currently on the clock whose lunch is
// overdue (graduated) or needed (threshold).
func needsAlert(e model.EmployeeStatus) bool {
	if e.Status != model.StateClockedIn {
		return false
	}
	if e.Lunch.State != "" {
		return e.Lunch.State == model.LunchOverdue
	}
	return e.Lunch.NeedsLunch
}

func (s *Scanner) resetIfNewDay(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sentDate != date {
		s.sentDate = date
		s.sent = make(map[string]struct{})
	}
}

func (s *Scanner) alreadySent(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[key]
	return ok
}

func (s *Scanner) markSent(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[key] = struct{}{}
}
