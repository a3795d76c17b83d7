package core

import "time"

const defaultFetchConcurrency = 7

type options struct {
	now         func() time.Time
	concurrency int
	policy      LunchPolicy
	hours       *BusinessHours
}

// Option tunes the weekly aggregator and the status service.
type Option func(*options)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFetchConcurrency bounds how many day queries run at once.
func WithFetchConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLunchPolicy selects the lunch compliance strategy.
func WithLunchPolicy(p LunchPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithBusinessHours skips remote fetches outside the given hours. A nil
// value disables the gate.
func WithBusinessHours(bh *BusinessHours) Option {
	return func(o *options) { o.hours = bh }
}

func buildOptions(opts []Option) options {
	o := options{
		now:         time.Now,
		concurrency: defaultFetchConcurrency,
		policy:      DefaultGraduatedPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
