package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentShift(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, ShiftNight},
		{5, ShiftNight},
		{6, ShiftMorning},
		{13, ShiftMorning},
		{14, ShiftEvening},
		{21, ShiftEvening},
		{22, ShiftNight},
		{23, ShiftNight},
	}
	for _, tt := range tests {
		at := time.Date(2026, 3, 12, tt.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tt.want, CurrentShift(at), "hour %d", tt.hour)
	}
}
