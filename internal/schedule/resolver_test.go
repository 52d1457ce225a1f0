package schedule

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	Repository
	findCoveringFn      func(ctx context.Context, workerID string, date time.Time) ([]Assignment, error)
	findCalendarDayFn   func(ctx context.Context, date time.Time) (*CalendarDay, error)
	findOverlappingFn   func(ctx context.Context, workerID string, start time.Time, end *time.Time, excludeID string) ([]Assignment, error)
	findShiftByIDFn     func(ctx context.Context, id string) (*Shift, error)
	createShiftFn       func(ctx context.Context, s *Shift) error
	createAssignmentFn  func(ctx context.Context, a *Assignment) error
	createCalendarDayFn func(ctx context.Context, d *CalendarDay) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }
func (f *fakeRepo) CreateShift(ctx context.Context, s *Shift) error {
	return f.createShiftFn(ctx, s)
}
func (f *fakeRepo) FindCoveringAssignments(ctx context.Context, workerID string, date time.Time) ([]Assignment, error) {
	return f.findCoveringFn(ctx, workerID, date)
}
func (f *fakeRepo) FindCalendarDayByDate(ctx context.Context, date time.Time) (*CalendarDay, error) {
	return f.findCalendarDayFn(ctx, date)
}
func (f *fakeRepo) FindOverlappingAssignments(ctx context.Context, workerID string, start time.Time, end *time.Time, excludeID string) ([]Assignment, error) {
	return f.findOverlappingFn(ctx, workerID, start, end, excludeID)
}
func (f *fakeRepo) FindShiftByID(ctx context.Context, id string) (*Shift, error) {
	return f.findShiftByIDFn(ctx, id)
}
func (f *fakeRepo) CreateAssignment(ctx context.Context, a *Assignment) error {
	return f.createAssignmentFn(ctx, a)
}
func (f *fakeRepo) CreateCalendarDay(ctx context.Context, d *CalendarDay) error {
	return f.createCalendarDayFn(ctx, d)
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestResolver_ResolveShift_NoAssignment(t *testing.T) {
	repo := &fakeRepo{findCoveringFn: func(ctx context.Context, workerID string, d time.Time) ([]Assignment, error) {
		return nil, nil
	}}
	r := NewResolver(repo)

	assert.Nil(t, r.ResolveShift(context.Background(), uuid.New(), date("2024-03-04")))
}

func TestResolver_ResolveShift_PicksLatestStartDateOnOverlap(t *testing.T) {
	older := Assignment{
		StartDate: date("2024-01-01"),
		Shift:     Shift{ID: uuid.New(), Kind: KindMorning},
	}
	newer := Assignment{
		StartDate: date("2024-02-01"),
		Shift:     Shift{ID: uuid.New(), Kind: KindEvening},
	}

	// Repo returns newest start date first.
	repo := &fakeRepo{findCoveringFn: func(ctx context.Context, workerID string, d time.Time) ([]Assignment, error) {
		return []Assignment{newer, older}, nil
	}}
	r := NewResolver(repo)

	got := r.ResolveShift(context.Background(), uuid.New(), date("2024-03-04"))
	assert.NotNil(t, got)
	assert.Equal(t, KindEvening, got.Kind)
}

func TestResolver_ResolveShift_StorageFailureReturnsNil(t *testing.T) {
	repo := &fakeRepo{findCoveringFn: func(ctx context.Context, workerID string, d time.Time) ([]Assignment, error) {
		return nil, errors.New("connection refused")
	}}
	r := NewResolver(repo)

	assert.Nil(t, r.ResolveShift(context.Background(), uuid.New(), date("2024-03-04")))
}

func TestResolver_IsNonBusinessDay(t *testing.T) {
	t.Run("flagged non-business", func(t *testing.T) {
		repo := &fakeRepo{findCalendarDayFn: func(ctx context.Context, d time.Time) (*CalendarDay, error) {
			return &CalendarDay{NonBusiness: true}, nil
		}}
		assert.True(t, NewResolver(repo).IsNonBusinessDay(context.Background(), date("2024-03-04")))
	})

	t.Run("entry flagged business stays business", func(t *testing.T) {
		repo := &fakeRepo{findCalendarDayFn: func(ctx context.Context, d time.Time) (*CalendarDay, error) {
			return &CalendarDay{NonBusiness: false}, nil
		}}
		assert.False(t, NewResolver(repo).IsNonBusinessDay(context.Background(), date("2024-03-04")))
	})

	t.Run("no entry means business day", func(t *testing.T) {
		repo := &fakeRepo{findCalendarDayFn: func(ctx context.Context, d time.Time) (*CalendarDay, error) {
			return nil, gorm.ErrRecordNotFound
		}}
		assert.False(t, NewResolver(repo).IsNonBusinessDay(context.Background(), date("2024-03-04")))
	})

	t.Run("storage failure fails open to business day", func(t *testing.T) {
		repo := &fakeRepo{findCalendarDayFn: func(ctx context.Context, d time.Time) (*CalendarDay, error) {
			return nil, errors.New("timeout")
		}}
		assert.False(t, NewResolver(repo).IsNonBusinessDay(context.Background(), date("2024-03-04")))
	})
}
