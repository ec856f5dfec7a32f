package utils

import "time"

// Nursing shift bands. The hour boundaries are hospital policy: 06-14
// morning, 14-22 evening, everything else night.
const (
	ShiftMorning = "MORNING"
	ShiftEvening = "EVENING"
	ShiftNight   = "NIGHT"
)

// CurrentShift returns the shift band the given wall-clock time falls in.
func CurrentShift(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 6 && hour < 14:
		return ShiftMorning
	case hour >= 14 && hour < 22:
		return ShiftEvening
	default:
		return ShiftNight
	}
}
