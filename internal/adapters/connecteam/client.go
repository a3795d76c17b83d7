package connecteam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"laborstatus.service/internal/core/model"
)

const (
	DefaultBaseURL = "https://api.connecteam.com"
	usersPageSize  = 200
	// maxUserPages bounds paging against an upstream that ignores offset.
	maxUserPages = 500
	usersBreaker = "users"
)

// HTTPClient talks to the Connecteam REST API. It implements both
// ports.ActivitySource and ports.UserSource.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	apiKey  string

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewHTTPClient creates a client with a bounded request timeout. Calls go
// through one circuit breaker per time clock (plus one for the user list), so
// a failing clock is not hammered by every dashboard refresh and does not
// block the others.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (c *HTTPClient) breaker(key string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok := c.breakers[key]; ok {
		return cb
	}
	cb := newBreaker("Connecteam-API " + key)
	c.breakers[key] = cb
	return cb
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is 50% or more after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
		IsSuccessful: upstreamHealthy,
	})
}

// upstreamHealthy reports whether err says nothing about the health of the
// API: canceled calls and client errors (bad clock id, bad key) do not count
// as failures. Transport errors, timeouts, 429 and 5xx do.
func upstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var fe *model.FetchError
	if errors.As(err, &fe) && fe.StatusCode >= 400 && fe.StatusCode < 500 {
		return fe.StatusCode != http.StatusTooManyRequests
	}
	return false
}

type timestamp struct {
	Timestamp *int64 `json:"timestamp"`
}

type segment struct {
	Start *timestamp `json:"start"`
	End   *timestamp `json:"end"`
}

type userActivities struct {
	UserID       json.Number `json:"userId"`
	Shifts       []segment   `json:"shifts"`
	ManualBreaks []segment   `json:"manualBreaks"`
}

type activitiesResponse struct {
	Data struct {
		TimeActivitiesByUsers []userActivities `json:"timeActivitiesByUsers"`
	} `json:"data"`
}

type user struct {
	UserID    json.Number `json:"userId"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
}

type usersResponse struct {
	Data struct {
		Users []user `json:"users"`
	} `json:"data"`
}

// TimeActivities fetches shifts and manual breaks for every user on the clock
// between startDate and endDate (inclusive, YYYY-MM-DD).
func (c *HTTPClient) TimeActivities(ctx context.Context, clockID, startDate, endDate string) ([]model.UserDayActivity, error) {
	endpoint := fmt.Sprintf("%s/time-clock/v1/time-clocks/%s/time-activities", c.baseURL, url.PathEscape(clockID))
	params := url.Values{}
	params.Set("startDate", startDate)
	params.Set("endDate", endDate)

	var body activitiesResponse
	if err := c.get(ctx, "clock "+clockID, endpoint, params, &body); err != nil {
		var fe *model.FetchError
		if errors.As(err, &fe) {
			fe.Op = "time activities"
			fe.ClockID = clockID
			fe.Date = startDate
		}
		return nil, err
	}

	activities := make([]model.UserDayActivity, 0, len(body.Data.TimeActivitiesByUsers))
	for _, ua := range body.Data.TimeActivitiesByUsers {
		activity := model.UserDayActivity{
			UserID: ua.UserID.String(),
			Shifts: make([]model.RawShift, 0, len(ua.Shifts)),
			Breaks: make([]model.RawBreak, 0, len(ua.ManualBreaks)),
		}
		for _, s := range ua.Shifts {
			start, end := s.bounds()
			activity.Shifts = append(activity.Shifts, model.RawShift{Start: start, End: end})
		}
		for _, b := range ua.ManualBreaks {
			start, end := b.bounds()
			activity.Breaks = append(activity.Breaks, model.RawBreak{Start: start, End: end})
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// ActiveUsers pages through every active user.
func (c *HTTPClient) ActiveUsers(ctx context.Context) ([]model.User, error) {
	endpoint := c.baseURL + "/users/v1/users"

	var users []model.User
	seen := make(map[string]struct{})
	for page := 0; ; page++ {
		if page == maxUserPages {
			log.Ctx(ctx).Warn().Int("users", len(users)).Msg("User paging cap reached; stopping")
			break
		}
		offset := page * usersPageSize
		params := url.Values{}
		params.Set("limit", strconv.Itoa(usersPageSize))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("order", "asc")
		params.Set("userStatus", "active")

		var body usersResponse
		if err := c.get(ctx, usersBreaker, endpoint, params, &body); err != nil {
			var fe *model.FetchError
			if errors.As(err, &fe) {
				fe.Op = "active users"
			}
			return nil, err
		}

		added := 0
		for _, u := range body.Data.Users {
			id := u.UserID.String()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			added++
			users = append(users, model.User{
				UserID:    id,
				FirstName: u.FirstName,
				LastName:  u.LastName,
			})
		}
		if len(body.Data.Users) < usersPageSize {
			break
		}
		if added == 0 {
			log.Ctx(ctx).Warn().Int("offset", offset).Msg("User page repeated known ids; stopping")
			break
		}
	}

	log.Ctx(ctx).Debug().Int("users", len(users)).Msg("Fetched active users")
	return users, nil
}

// get performs one GET through the named circuit breaker and decodes the JSON
// body into out. Every failure is returned as a *model.FetchError.
func (c *HTTPClient) get(ctx context.Context, breaker, endpoint string, params url.Values, out any) error {
	_, err := c.breaker(breaker).Execute(func() (interface{}, error) {
		return nil, c.do(ctx, endpoint, params, out)
	})
	if err == nil {
		return nil
	}

	var fe *model.FetchError
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		log.Ctx(ctx).Warn().Err(err).Msg("Circuit breaker is open; skipping Connecteam call")
	}
	return &model.FetchError{Err: err}
}

func (c *HTTPClient) do(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return &model.FetchError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return &model.FetchError{Err: fmt.Errorf("failed to call connecteam api: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &model.FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("connecteam api returned non-successful status code: %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &model.FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (s segment) bounds() (*int64, *int64) {
	var start, end *int64
	if s.Start != nil {
		start = s.Start.Timestamp
	}
	if s.End != nil {
		end = s.End.Timestamp
	}
	return start, end
}
