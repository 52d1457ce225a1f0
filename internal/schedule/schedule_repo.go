package schedule

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateShift(ctx context.Context, s *Shift) error
	FindAllShifts(ctx context.Context) ([]Shift, error)
	FindShiftByID(ctx context.Context, id string) (*Shift, error)
	UpdateShift(ctx context.Context, s *Shift) error
	ReplaceShiftWeekdays(ctx context.Context, shiftID string, weekdays []ShiftWeekday) error
	DeleteShift(ctx context.Context, id string) error

	CreateCalendarDay(ctx context.Context, d *CalendarDay) error
	FindCalendarDays(ctx context.Context, from, to time.Time) ([]CalendarDay, error)
	FindCalendarDayByDate(ctx context.Context, date time.Time) (*CalendarDay, error)
	DeleteCalendarDay(ctx context.Context, id string) error

	CreateAssignment(ctx context.Context, a *Assignment) error
	FindAssignmentByID(ctx context.Context, id string) (*Assignment, error)
	FindAssignmentsByWorker(ctx context.Context, workerID string) ([]Assignment, error)
	FindOverlappingAssignments(ctx context.Context, workerID string, start time.Time, end *time.Time, excludeID string) ([]Assignment, error)
	FindCoveringAssignments(ctx context.Context, workerID string, date time.Time) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, a *Assignment) error
	DeleteAssignment(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CreateShift(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindAllShifts(ctx context.Context) ([]Shift, error) {
	var shifts []Shift
	err := r.db.WithContext(ctx).
		Preload("Weekdays").
		Order("kind").
		Find(&shifts).Error
	return shifts, err
}

func (r *repository) FindShiftByID(ctx context.Context, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Preload("Weekdays").
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) UpdateShift(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).
		Omit("Weekdays").
		Save(s).Error
}

func (r *repository) ReplaceShiftWeekdays(ctx context.Context, shiftID string, weekdays []ShiftWeekday) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&ShiftWeekday{}, "shift_id = ?", shiftID).Error; err != nil {
		return err
	}
	if len(weekdays) == 0 {
		return nil
	}
	return db.Create(&weekdays).Error
}

func (r *repository) DeleteShift(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Shift{}, "id = ?", id).Error
}

func (r *repository) CreateCalendarDay(ctx context.Context, d *CalendarDay) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) FindCalendarDays(ctx context.Context, from, to time.Time) ([]CalendarDay, error) {
	var days []CalendarDay
	q := r.db.WithContext(ctx).Order("date")
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	err := q.Find(&days).Error
	return days, err
}

func (r *repository) FindCalendarDayByDate(ctx context.Context, date time.Time) (*CalendarDay, error) {
	var d CalendarDay
	err := r.db.WithContext(ctx).
		First(&d, "date = ?", date.Format("2006-01-02")).Error
	return &d, err
}

func (r *repository) DeleteCalendarDay(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&CalendarDay{}, "id = ?", id).Error
}

func (r *repository) CreateAssignment(ctx context.Context, a *Assignment) error {
	return r.db.WithContext(ctx).Omit("Shift").Create(a).Error
}

func (r *repository) FindAssignmentByID(ctx context.Context, id string) (*Assignment, error) {
	var a Assignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Weekdays").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindAssignmentsByWorker(ctx context.Context, workerID string) ([]Assignment, error) {
	var assignments []Assignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Weekdays").
		Where("worker_id = ?", workerID).
		Order("start_date DESC").
		Find(&assignments).Error
	return assignments, err
}

// FindOverlappingAssignments returns the worker's assignments whose
// interval intersects [start, end] (end nil = open-ended), excluding
// excludeID so updates do not conflict with themselves.
func (r *repository) FindOverlappingAssignments(ctx context.Context, workerID string, start time.Time, end *time.Time, excludeID string) ([]Assignment, error) {
	var assignments []Assignment
	q := r.db.WithContext(ctx).
		Preload("Shift").
		Where("worker_id = ?", workerID).
		Where("end_date IS NULL OR end_date >= ?", start)
	if end != nil {
		q = q.Where("start_date <= ?", *end)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Order("start_date").Find(&assignments).Error
	return assignments, err
}

// FindCoveringAssignments returns every assignment containing date,
// newest start date first so the resolver can pick deterministically
// when the non-overlap invariant has been violated.
func (r *repository) FindCoveringAssignments(ctx context.Context, workerID string, date time.Time) ([]Assignment, error) {
	var assignments []Assignment
	day := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Weekdays").
		Where("worker_id = ?", workerID).
		Where("start_date <= ?", day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Order("start_date DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *repository) UpdateAssignment(ctx context.Context, a *Assignment) error {
	return r.db.WithContext(ctx).Omit("Shift").Save(a).Error
}

func (r *repository) DeleteAssignment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Assignment{}, "id = ?", id).Error
}
