package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"laborstatus.service/internal/core"
)

func TestFormatDuration(t *testing.T) {
	cases := map[int64]string{
		0:     "0:00",
		59:    "0:00",
		60:    "0:01",
		3600:  "1:00",
		3661:  "1:01",
		39540: "10:59",
		-120:  "0:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, core.FormatDuration(in), "FormatDuration(%d)", in)
	}
}

func TestFormatClockTime(t *testing.T) {
	afternoon := time.Date(2024, 5, 17, 13, 48, 0, 0, testLoc).Unix()
	midnight := time.Date(2024, 5, 17, 0, 5, 0, 0, testLoc).Unix()

	assert.Equal(t, "1:48 PM", core.FormatClockTime(afternoon, testLoc))
	assert.Equal(t, "12:05 AM", core.FormatClockTime(midnight, testLoc))
	assert.Equal(t, "8:48 PM", core.FormatClockTime(afternoon, time.UTC))
}
