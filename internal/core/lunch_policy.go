package core

import (
	"strings"
	"time"

	"laborstatus.service/internal/core/model"
)

const (
	PolicyGraduated = "graduated"
	PolicyThreshold = "threshold"
)

// LunchPolicy decides lunch compliance from gross time on the clock and
// completed break time.
type LunchPolicy interface {
	Name() string
	Evaluate(worked, breaks time.Duration) model.LunchStatus
}

// NewLunchPolicy returns the policy registered under name. An empty name
// selects the graduated policy.
func NewLunchPolicy(name string) (LunchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyGraduated:
		return DefaultGraduatedPolicy(), nil
	case PolicyThreshold:
		return DefaultThresholdPolicy(), nil
	default:
		return nil, &model.ConfigurationError{Field: "LUNCH_POLICY", Reason: "unknown policy " + name}
	}
}

// GraduatedPolicy reports NotYetDue, DueNow, Overdue or Taken. Any completed
// break counts as the lunch being taken.
type GraduatedPolicy struct {
	DueAfter     time.Duration
	OverdueAfter time.Duration
}

func DefaultGraduatedPolicy() GraduatedPolicy {
	return GraduatedPolicy{DueAfter: 4 * time.Hour, OverdueAfter: 5 * time.Hour}
}

func (p GraduatedPolicy) Name() string { return PolicyGraduated }

func (p GraduatedPolicy) Evaluate(worked, breaks time.Duration) model.LunchStatus {
	switch {
	case breaks > 0:
		return model.LunchStatus{State: model.LunchTaken, Label: "Taken", Class: model.LunchClassOK}
	case worked < p.DueAfter:
		return model.LunchStatus{State: model.LunchNotYetDue, Label: "Not Yet Due", Class: model.LunchClassOK}
	case worked < p.OverdueAfter:
		return model.LunchStatus{State: model.LunchDueNow, Label: "Due Now", Class: model.LunchClassDue, NeedsLunch: true}
	default:
		overdue := worked - p.OverdueAfter
		return model.LunchStatus{
			State:      model.LunchOverdue,
			Overdue:    overdue,
			Label:      "Overdue by " + FormatDuration(int64(overdue/time.Second)),
			Class:      model.LunchClassOverdue,
			NeedsLunch: true,
		}
	}
}

// ThresholdPolicy is a plain boolean: lunch is needed once MinWorked is
// reached and less than MinBreak has been taken.
type ThresholdPolicy struct {
	MinWorked time.Duration
	MinBreak  time.Duration
}

func DefaultThresholdPolicy() ThresholdPolicy {
	return ThresholdPolicy{MinWorked: 4 * time.Hour, MinBreak: 30 * time.Minute}
}

func (p ThresholdPolicy) Name() string { return PolicyThreshold }

func (p ThresholdPolicy) Evaluate(worked, breaks time.Duration) model.LunchStatus {
	if worked >= p.MinWorked && breaks < p.MinBreak {
		return model.LunchStatus{Label: "Needs Lunch", Class: model.LunchClassDue, NeedsLunch: true}
	}
	return model.LunchStatus{Label: "OK", Class: model.LunchClassOK}
}
