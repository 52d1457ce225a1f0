package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as seconds since midnight.
// Seconds precision matters: the lateness tolerance boundary is decided
// to the second.
type TimeOfDay int

var timeOfDayLayouts = []string{"15:04:05", "15:04"}

// ParseTimeOfDay accepts HH:MM:SS or HH:MM.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range timeOfDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, expected HH:MM:SS or HH:MM", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, (int(t)%3600)/60, int(t)%60)
}

func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	return t + TimeOfDay(m*60)
}

// Sub returns t minus other, in seconds.
func (t TimeOfDay) Sub(other TimeOfDay) int {
	return int(t) - int(other)
}
