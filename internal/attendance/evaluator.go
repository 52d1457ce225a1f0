package attendance

import (
	"context"
	"fmt"
	"time"

	"go-asistencia/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reasons returned by MustAttend, first matching rule wins.
const (
	ReasonNonBusinessDay = "non-business day"
	ReasonNoShift        = "no shift assigned"
	ReasonNotWorkingDay  = "not a working day for this shift"
	ReasonMustAttend     = "must attend"
)

// ToleranceMinutes is the grace period after the shift's entry time
// before an entry counts as late.
const ToleranceMinutes = 10

// ScheduleSource is the read surface the evaluator depends on. Both
// methods always answer: the schedule resolver degrades to nil/false
// on storage failure rather than erroring.
type ScheduleSource interface {
	ResolveShift(ctx context.Context, workerID uuid.UUID, date time.Time) *schedule.Shift
	IsNonBusinessDay(ctx context.Context, date time.Time) bool
}

// Evaluator classifies attendance from point-in-time schedule reads.
// It is role-agnostic and free of persistence concerns; it logs only
// on its defensive fallback paths.
type Evaluator struct {
	schedules ScheduleSource
	logger    *zap.Logger
}

func NewEvaluator(schedules ScheduleSource, logger ...*zap.Logger) *Evaluator {
	l := zap.L().Named("attendance.evaluator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.evaluator")
	}
	return &Evaluator{schedules: schedules, logger: l}
}

// isoWeekday maps a date to ISO weekday numbering, 1=Monday..7=Sunday.
func isoWeekday(date time.Time) int {
	return (int(date.Weekday())+6)%7 + 1
}

// MustAttend decides whether the worker is obliged to attend on date.
func (e *Evaluator) MustAttend(ctx context.Context, workerID uuid.UUID, date time.Time) (bool, string) {
	if e.schedules.IsNonBusinessDay(ctx, date) {
		return false, ReasonNonBusinessDay
	}

	shift := e.schedules.ResolveShift(ctx, workerID, date)
	if shift == nil {
		return false, ReasonNoShift
	}

	if !shift.HasWeekday(isoWeekday(date)) {
		return false, ReasonNotWorkingDay
	}

	return true, ReasonMustAttend
}

// Classify computes the attendance status for a worker on a date given
// the recorded entry time. An entry on a day off counts as ON_TIME,
// matching the institutional rules even though a distinct status would
// arguably describe it better.
func (e *Evaluator) Classify(ctx context.Context, workerID uuid.UUID, date time.Time, entry *schedule.TimeOfDay) Status {
	must, _ := e.MustAttend(ctx, workerID, date)

	if !must {
		if entry != nil {
			return StatusOnTime
		}
		return StatusExcused
	}

	if entry == nil {
		return StatusAbsent
	}

	shift := e.schedules.ResolveShift(ctx, workerID, date)
	if shift == nil {
		// MustAttend just resolved a shift, so this only happens if the
		// schedule changed between the two reads. Do not penalize.
		e.logger.Warn("shift vanished between obligation check and classification",
			zap.String("worker_id", workerID.String()),
			zap.String("date", date.Format("2006-01-02")),
		)
		return StatusOnTime
	}

	expected, err := schedule.ParseTimeOfDay(shift.EntryTime)
	if err != nil {
		e.logger.Error("shift has unparseable entry time",
			zap.String("shift_id", shift.ID.String()),
			zap.String("entry_time", shift.EntryTime),
			zap.Error(err),
		)
		return StatusOnTime
	}

	deadline := expected.AddMinutes(ToleranceMinutes)
	if *entry <= deadline {
		return StatusOnTime
	}
	return StatusLate
}

// LateMinutes returns how late the entry was, in whole minutes. It is
// 0 for every status except LATE.
func (e *Evaluator) LateMinutes(ctx context.Context, workerID uuid.UUID, date time.Time, entry *schedule.TimeOfDay, status Status) int {
	if status != StatusLate || entry == nil {
		return 0
	}

	shift := e.schedules.ResolveShift(ctx, workerID, date)
	if shift == nil {
		return 0
	}

	expected, err := schedule.ParseTimeOfDay(shift.EntryTime)
	if err != nil {
		return 0
	}

	diff := entry.Sub(expected)
	minutes := diff / 60
	if minutes < 0 {
		return 0
	}
	return minutes
}

// ValidateRecord checks a record's coherence before persisting. Every
// violated rule yields its own message so a form can show all problems
// at once.
func ValidateRecord(date time.Time, entry, exit *schedule.TimeOfDay, workerActive bool, now time.Time) []string {
	var violations []string

	// Compare against the wall-clock calendar day, not an absolute
	// 24h truncation: record dates are stored as UTC midnights.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		violations = append(violations, "attendance cannot be recorded for future dates")
	}

	if exit != nil && entry == nil {
		violations = append(violations, "exit time cannot be recorded without an entry time")
	}

	if entry != nil && exit != nil && *exit <= *entry {
		violations = append(violations, "exit time must be after the entry time")
	}

	if !workerActive {
		violations = append(violations, "the worker is not active")
	}

	return violations
}

// ValidationError carries the full list of record violations.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid attendance record: %d violation(s)", len(e.Messages))
}
