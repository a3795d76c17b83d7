package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"laborstatus.service/internal/core/model"
)

// DefaultBusinessHours opens Monday to Saturday 8-18 and Sunday 9-17.
const DefaultBusinessHours = "mon-sat=8-18,sun=9-17"

var dayIndex = map[string]int{"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6}

type window struct {
	open, close int
}

// BusinessHours holds an [open, close) hour window per weekday. Days with no
// window are closed.
type BusinessHours struct {
	days [7]*window
}

// ParseBusinessHours reads a spec such as "mon-sat=8-18,sun=9-17".
func ParseBusinessHours(spec string) (*BusinessHours, error) {
	bh := &BusinessHours{}
	for _, group := range strings.Split(spec, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		days, hours, ok := strings.Cut(group, "=")
		if !ok {
			return nil, invalidHours(group, "missing '='")
		}
		from, to, err := parseDayRange(strings.ToLower(strings.TrimSpace(days)))
		if err != nil {
			return nil, invalidHours(group, err.Error())
		}
		w, err := parseWindow(strings.TrimSpace(hours))
		if err != nil {
			return nil, invalidHours(group, err.Error())
		}
		for i := from; i <= to; i++ {
			bh.days[(i+1)%7] = w
		}
	}
	return bh, nil
}

// Contains reports whether t falls inside the window for its weekday. t is
// evaluated in its own location.
func (b *BusinessHours) Contains(t time.Time) bool {
	w := b.days[t.Weekday()]
	if w == nil {
		return false
	}
	return t.Hour() >= w.open && t.Hour() < w.close
}

func parseDayRange(s string) (int, int, error) {
	first, last, isRange := strings.Cut(s, "-")
	from, ok := dayIndex[first]
	if !ok {
		return 0, 0, fmt.Errorf("unknown day %q", first)
	}
	if !isRange {
		return from, from, nil
	}
	to, ok := dayIndex[last]
	if !ok {
		return 0, 0, fmt.Errorf("unknown day %q", last)
	}
	if to < from {
		return 0, 0, fmt.Errorf("day range %q runs backwards", s)
	}
	return from, to, nil
}

func parseWindow(s string) (*window, error) {
	openS, closeS, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("hours %q must be open-close", s)
	}
	open, err := strconv.Atoi(openS)
	if err != nil {
		return nil, fmt.Errorf("open hour: %w", err)
	}
	closeH, err := strconv.Atoi(closeS)
	if err != nil {
		return nil, fmt.Errorf("close hour: %w", err)
	}
	if open < 0 || closeH > 24 || open >= closeH {
		return nil, fmt.Errorf("hours %q out of range", s)
	}
	return &window{open: open, close: closeH}, nil
}

func invalidHours(group, reason string) error {
	return &model.ConfigurationError{Field: "BUSINESS_HOURS", Reason: group + ": " + reason}
}
