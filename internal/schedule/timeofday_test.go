package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:00:00")
	assert.NoError(t, err)
	assert.Equal(t, TimeOfDay(8*3600), tod)

	tod, err = ParseTimeOfDay("08:30")
	assert.NoError(t, err)
	assert.Equal(t, TimeOfDay(8*3600+30*60), tod)

	tod, err = ParseTimeOfDay("23:59:59")
	assert.NoError(t, err)
	assert.Equal(t, TimeOfDay(24*3600-1), tod)

	_, err = ParseTimeOfDay("8 o'clock")
	assert.Error(t, err)

	_, err = ParseTimeOfDay("25:00:00")
	assert.Error(t, err)
}

func TestTimeOfDay_String(t *testing.T) {
	tod, _ := ParseTimeOfDay("09:05")
	assert.Equal(t, "09:05:00", tod.String())
}

func TestTimeOfDay_AddMinutesAndSub(t *testing.T) {
	entry, _ := ParseTimeOfDay("08:00:00")
	deadline := entry.AddMinutes(10)
	assert.Equal(t, "08:10:00", deadline.String())

	arrived, _ := ParseTimeOfDay("08:11:00")
	assert.Equal(t, 660, arrived.Sub(entry))
}

func TestShift_ShortWeekdays(t *testing.T) {
	mk := func(days ...int) Shift {
		s := Shift{}
		for _, d := range days {
			s.Weekdays = append(s.Weekdays, ShiftWeekday{Weekday: d})
		}
		return s
	}

	assert.Equal(t, "L-V", mk(1, 2, 3, 4, 5).ShortWeekdays())
	assert.Equal(t, "L-S", mk(1, 2, 3, 4, 5, 6).ShortWeekdays())
	assert.Equal(t, "L-D", mk(1, 2, 3, 4, 5, 6, 7).ShortWeekdays())
	assert.Equal(t, "L, Mi, V", mk(1, 3, 5).ShortWeekdays())
	assert.Equal(t, "-", mk().ShortWeekdays())
	// Order of the stored rows must not matter.
	assert.Equal(t, "L-V", mk(5, 3, 1, 4, 2).ShortWeekdays())
}
