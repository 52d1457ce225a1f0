package schedule

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shift kinds follow the institutional catalog.
const (
	KindMorning      = "MAT"
	KindEvening      = "VES"
	KindNight        = "NOC"
	KindFull         = "COM"
	KindHalf         = "MED"
	KindIntermittent = "INT"
	KindSpecial      = "ESP"
)

var ShiftKindLabels = map[string]string{
	KindMorning:      "Jornada Matutina",
	KindEvening:      "Jornada Vespertina",
	KindNight:        "Jornada Nocturna",
	KindFull:         "Jornada Completa",
	KindHalf:         "Media Jornada",
	KindIntermittent: "Jornada Intermitente",
	KindSpecial:      "Jornada Especial",
}

type Shift struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind      string    `gorm:"size:3;not null"`
	EntryTime string    `gorm:"size:8;not null"`
	ExitTime  string    `gorm:"size:8;not null"`
	Weekdays  []ShiftWeekday `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (Shift) TableName() string {
	return "shifts"
}

func (s Shift) Label() string {
	if label, ok := ShiftKindLabels[s.Kind]; ok {
		return label
	}
	return s.Kind
}

// HasWeekday reports whether the shift is active on the given ISO
// weekday (1=Monday..7=Sunday).
func (s Shift) HasWeekday(weekday int) bool {
	for _, d := range s.Weekdays {
		if d.Weekday == weekday {
			return true
		}
	}
	return false
}

var shortWeekdayNames = map[int]string{
	1: "L", 2: "M", 3: "Mi", 4: "J", 5: "V", 6: "S", 7: "D",
}

// ShortWeekdays renders the active weekdays in the compressed listing
// format: "L-V", "L-S", "L-D", or comma-separated initials.
func (s Shift) ShortWeekdays() string {
	if len(s.Weekdays) == 0 {
		return "-"
	}

	days := make([]int, 0, len(s.Weekdays))
	seen := map[int]bool{}
	for d := 1; d <= 7; d++ {
		for _, w := range s.Weekdays {
			if w.Weekday == d && !seen[d] {
				days = append(days, d)
				seen[d] = true
			}
		}
	}

	switch {
	case equalDays(days, []int{1, 2, 3, 4, 5}):
		return "L-V"
	case equalDays(days, []int{1, 2, 3, 4, 5, 6}):
		return "L-S"
	case equalDays(days, []int{1, 2, 3, 4, 5, 6, 7}):
		return "L-D"
	}

	names := make([]string, len(days))
	for i, d := range days {
		names[i] = shortWeekdayNames[d]
	}
	return strings.Join(names, ", ")
}

func equalDays(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type ShiftWeekday struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shift_weekday"`
	Weekday int       `gorm:"not null;uniqueIndex:idx_shift_weekday"`
}

func (ShiftWeekday) TableName() string {
	return "shift_weekdays"
}

// CalendarDay is a calendar exception: a specific date flagged as
// business or non-business. Dates with no row are regular business
// days governed by shift weekday rules.
type CalendarDay struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:idx_calendar_days_date"`
	NonBusiness bool      `gorm:"not null;default:false"`
	Description string    `gorm:"size:200"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid"`
}

func (CalendarDay) TableName() string {
	return "calendar_days"
}

// Assignment binds a worker to a shift for a date interval. Intervals
// of one worker must not overlap; the creation workflow enforces this,
// the resolver tolerates violations defensively.
type Assignment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkerID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_assignments_worker_dates"`
	ShiftID   uuid.UUID  `gorm:"type:uuid;not null"`
	Shift     Shift      `gorm:"foreignKey:ShiftID"`
	StartDate time.Time  `gorm:"type:date;not null;index:idx_assignments_worker_dates"`
	EndDate   *time.Time `gorm:"type:date"`
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (Assignment) TableName() string {
	return "shift_assignments"
}

// Covers reports whether the assignment interval contains date.
func (a Assignment) Covers(date time.Time) bool {
	if date.Before(a.StartDate) {
		return false
	}
	return a.EndDate == nil || !date.After(*a.EndDate)
}

// Current reports whether the assignment is still in force today.
func (a Assignment) Current(today time.Time) bool {
	return a.EndDate == nil || !a.EndDate.Before(today)
}
