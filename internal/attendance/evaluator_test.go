package attendance

import (
	"context"
	"testing"
	"time"

	"go-asistencia/internal/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSchedules struct {
	shift       *schedule.Shift
	nonBusiness bool
	resolves    int
}

func (f *fakeSchedules) ResolveShift(ctx context.Context, workerID uuid.UUID, date time.Time) *schedule.Shift {
	f.resolves++
	return f.shift
}

func (f *fakeSchedules) IsNonBusinessDay(ctx context.Context, date time.Time) bool {
	return f.nonBusiness
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func tod(s string) *schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

// morningShift is active Monday through Friday, 08:00 to 16:00.
func morningShift() *schedule.Shift {
	s := &schedule.Shift{
		ID:        uuid.New(),
		Kind:      schedule.KindMorning,
		EntryTime: "08:00:00",
		ExitTime:  "16:00:00",
	}
	for d := 1; d <= 5; d++ {
		s.Weekdays = append(s.Weekdays, schedule.ShiftWeekday{ShiftID: s.ID, Weekday: d})
	}
	return s
}

func TestIsoWeekday(t *testing.T) {
	assert.Equal(t, 1, isoWeekday(date("2024-03-04"))) // Monday
	assert.Equal(t, 5, isoWeekday(date("2024-03-08"))) // Friday
	assert.Equal(t, 6, isoWeekday(date("2024-03-09"))) // Saturday
	assert.Equal(t, 7, isoWeekday(date("2024-03-10"))) // Sunday
}

func TestMustAttend_RuleOrder(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()

	t.Run("non-business day wins over everything", func(t *testing.T) {
		e := NewEvaluator(&fakeSchedules{shift: morningShift(), nonBusiness: true})
		must, reason := e.MustAttend(ctx, workerID, date("2024-03-04"))
		assert.False(t, must)
		assert.Equal(t, ReasonNonBusinessDay, reason)
	})

	t.Run("no shift assigned", func(t *testing.T) {
		e := NewEvaluator(&fakeSchedules{shift: nil})
		must, reason := e.MustAttend(ctx, workerID, date("2024-03-04"))
		assert.False(t, must)
		assert.Equal(t, ReasonNoShift, reason)
	})

	t.Run("weekday not active for shift", func(t *testing.T) {
		e := NewEvaluator(&fakeSchedules{shift: morningShift()})
		must, reason := e.MustAttend(ctx, workerID, date("2024-03-09")) // Saturday
		assert.False(t, must)
		assert.Equal(t, ReasonNotWorkingDay, reason)
	})

	t.Run("must attend", func(t *testing.T) {
		e := NewEvaluator(&fakeSchedules{shift: morningShift()})
		must, reason := e.MustAttend(ctx, workerID, date("2024-03-04")) // Monday
		assert.True(t, must)
		assert.Equal(t, ReasonMustAttend, reason)
	})
}

// Scenario A: entry within tolerance is on time, past it is late with
// the real minute count.
func TestClassify_MorningShiftMonday(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	monday := date("2024-03-04")

	e := NewEvaluator(&fakeSchedules{shift: morningShift()})

	status := e.Classify(ctx, workerID, monday, tod("08:09:00"))
	assert.Equal(t, StatusOnTime, status)
	assert.Equal(t, 0, e.LateMinutes(ctx, workerID, monday, tod("08:09:00"), status))

	status = e.Classify(ctx, workerID, monday, tod("08:11:00"))
	assert.Equal(t, StatusLate, status)
	assert.Equal(t, 11, e.LateMinutes(ctx, workerID, monday, tod("08:11:00"), status))
}

// Boundary: exactly ten minutes past the entry time is still on time;
// one second more is late.
func TestClassify_ToleranceBoundary(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	monday := date("2024-03-04")

	e := NewEvaluator(&fakeSchedules{shift: morningShift()})

	assert.Equal(t, StatusOnTime, e.Classify(ctx, workerID, monday, tod("08:10:00")))

	status := e.Classify(ctx, workerID, monday, tod("08:10:01"))
	assert.Equal(t, StatusLate, status)
	// Minutes count from the expected entry, floored: 601s -> 10.
	assert.Equal(t, 10, e.LateMinutes(ctx, workerID, monday, tod("08:10:01"), status))
}

// Scenario B: Saturday is not a working weekday; no entry means
// excused, an entry anyway counts as normal attendance.
func TestClassify_DayOff(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	saturday := date("2024-03-09")

	e := NewEvaluator(&fakeSchedules{shift: morningShift()})

	assert.Equal(t, StatusExcused, e.Classify(ctx, workerID, saturday, nil))
	assert.Equal(t, StatusOnTime, e.Classify(ctx, workerID, saturday, tod("09:00:00")))
}

// Scenario C: a calendar exception overrides the shift's normal
// Monday obligation.
func TestClassify_NonBusinessDayOverride(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	monday := date("2024-03-04")

	e := NewEvaluator(&fakeSchedules{shift: morningShift(), nonBusiness: true})

	must, reason := e.MustAttend(ctx, workerID, monday)
	assert.False(t, must)
	assert.Equal(t, ReasonNonBusinessDay, reason)
	assert.Equal(t, StatusExcused, e.Classify(ctx, workerID, monday, nil))
}

// Scenario D: no covering assignment means no obligation, so a record
// with no entry is EXCUSED, not ABSENT.
func TestClassify_NoAssignment(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	d := date("2024-04-01")

	e := NewEvaluator(&fakeSchedules{shift: nil})

	must, reason := e.MustAttend(ctx, workerID, d)
	assert.False(t, must)
	assert.Equal(t, ReasonNoShift, reason)
	assert.Equal(t, StatusExcused, e.Classify(ctx, workerID, d, nil))
}

func TestClassify_AbsentWhenOwedAndNoEntry(t *testing.T) {
	e := NewEvaluator(&fakeSchedules{shift: morningShift()})
	assert.Equal(t, StatusAbsent, e.Classify(context.Background(), uuid.New(), date("2024-03-04"), nil))
}

func TestClassify_Idempotent(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	monday := date("2024-03-04")

	e := NewEvaluator(&fakeSchedules{shift: morningShift()})

	first := e.Classify(ctx, workerID, monday, tod("08:20:00"))
	second := e.Classify(ctx, workerID, monday, tod("08:20:00"))
	assert.Equal(t, first, second)
}

func TestLateMinutes_ZeroUnlessLate(t *testing.T) {
	ctx := context.Background()
	workerID := uuid.New()
	monday := date("2024-03-04")

	e := NewEvaluator(&fakeSchedules{shift: morningShift()})

	assert.Equal(t, 0, e.LateMinutes(ctx, workerID, monday, tod("08:05:00"), StatusOnTime))
	assert.Equal(t, 0, e.LateMinutes(ctx, workerID, monday, nil, StatusAbsent))
	assert.Equal(t, 0, e.LateMinutes(ctx, workerID, monday, nil, StatusExcused))
	// Early arrival can never go negative even if status were forced.
	assert.Equal(t, 0, e.LateMinutes(ctx, workerID, monday, tod("07:30:00"), StatusLate))
}

func TestLateMinutes_NoShiftResolves(t *testing.T) {
	e := NewEvaluator(&fakeSchedules{shift: nil})
	assert.Equal(t, 0, e.LateMinutes(context.Background(), uuid.New(), date("2024-03-04"), tod("09:00:00"), StatusLate))
}

func TestValidateRecord_AllViolationsReported(t *testing.T) {
	now := date("2024-03-10")

	violations := ValidateRecord(date("2024-03-11"), nil, tod("17:00:00"), false, now)
	assert.Len(t, violations, 3)
	assert.Contains(t, violations, "attendance cannot be recorded for future dates")
	assert.Contains(t, violations, "exit time cannot be recorded without an entry time")
	assert.Contains(t, violations, "the worker is not active")
}

func TestValidateRecord_ExitOrdering(t *testing.T) {
	now := date("2024-03-10")

	violations := ValidateRecord(date("2024-03-04"), tod("09:00:00"), tod("08:00:00"), true, now)
	assert.Equal(t, []string{"exit time must be after the entry time"}, violations)

	violations = ValidateRecord(date("2024-03-04"), tod("09:00:00"), tod("09:00:00"), true, now)
	assert.Equal(t, []string{"exit time must be after the entry time"}, violations)

	assert.Empty(t, ValidateRecord(date("2024-03-04"), tod("09:00:00"), tod("17:00:00"), true, now))
	assert.Empty(t, ValidateRecord(date("2024-03-10"), nil, nil, true, now))
}

func TestValidateRecord_FutureDateUsesWallClockDay(t *testing.T) {
	// Record dates are UTC midnights, so "today" must come from the
	// server's wall-clock calendar day regardless of its zone.
	west := time.FixedZone("UTC-6", -6*60*60)
	eveningWest := time.Date(2024, 3, 10, 19, 0, 0, 0, west)
	violations := ValidateRecord(date("2024-03-11"), nil, nil, true, eveningWest)
	assert.Contains(t, violations, "attendance cannot be recorded for future dates")

	east := time.FixedZone("UTC+10", 10*60*60)
	morningEast := time.Date(2024, 3, 10, 8, 0, 0, 0, east)
	assert.Empty(t, ValidateRecord(date("2024-03-10"), nil, nil, true, morningEast))
}
