package model

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks any failure talking to the time clock.
	ErrFetch = errors.New("time clock fetch failed")
	// ErrConfiguration marks setup problems that should stop the process.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrStoreNotFound is returned by the store registry for unknown ids.
	ErrStoreNotFound = errors.New("store not found")
)

// FetchError wraps a transport, status or decoding failure from the time clock.
type FetchError struct {
	Op         string
	ClockID    string
	Date       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrFetch, e.Op)
	if e.ClockID != "" {
		msg += " clock=" + e.ClockID
	}
	if e.Date != "" {
		msg += " date=" + e.Date
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ConfigurationError names the setting that is missing or malformed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
