package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver answers the point-in-time schedule questions attendance
// classification depends on. Both methods are read paths that must
// always produce an answer: storage failures degrade to the safe
// default and are only logged.
type Resolver struct {
	repo   Repository
	logger *zap.Logger
}

func NewResolver(repo Repository, logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("schedule.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.resolver")
	}
	return &Resolver{repo: repo, logger: l}
}

// ResolveShift returns the shift assigned to the worker on date, or
// nil when no assignment covers it. At most one assignment should
// cover any date; if historical data violates that, the assignment
// with the latest start date wins rather than failing the read.
func (r *Resolver) ResolveShift(ctx context.Context, workerID uuid.UUID, date time.Time) *Shift {
	assignments, err := r.repo.FindCoveringAssignments(ctx, workerID.String(), date)
	if err != nil {
		r.logger.Error("covering assignment lookup failed, treating as unassigned",
			zap.String("worker_id", workerID.String()),
			zap.String("date", date.Format("2006-01-02")),
			zap.Error(err),
		)
		return nil
	}

	if len(assignments) == 0 {
		return nil
	}

	if len(assignments) > 1 {
		r.logger.Warn("overlapping shift assignments, picking latest start date",
			zap.String("worker_id", workerID.String()),
			zap.String("date", date.Format("2006-01-02")),
			zap.Int("count", len(assignments)),
		)
	}

	// Ordered by start_date DESC, so the first row is the winner.
	shift := assignments[0].Shift
	return &shift
}

// IsNonBusinessDay reports whether date has a calendar exception
// flagged non-business. Missing rows and lookup failures both mean
// "business day": obligation checks downstream must always get an
// answer.
func (r *Resolver) IsNonBusinessDay(ctx context.Context, date time.Time) bool {
	day, err := r.repo.FindCalendarDayByDate(ctx, date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("calendar lookup failed, treating as business day",
				zap.String("date", date.Format("2006-01-02")),
				zap.Error(err),
			)
		}
		return false
	}
	return day.NonBusiness
}
