package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	scheduleerrors "go-asistencia/internal/schedule/errors"
	"go-asistencia/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=schedule_service.go -destination=mock/schedule_service_mock.go -package=mock
type Service interface {
	CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error)
	GetShifts(ctx context.Context) ([]ShiftResponse, error)
	GetShiftByID(ctx context.Context, id string) (ShiftResponse, error)
	UpdateShift(ctx context.Context, id string, req UpdateShiftRequest) (ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error

	CreateCalendarDay(ctx context.Context, req CreateCalendarDayRequest) (CalendarDayResponse, error)
	GetCalendarDays(ctx context.Context, from, to string) ([]CalendarDayResponse, error)
	DeleteCalendarDay(ctx context.Context, id string) error

	CreateAssignment(ctx context.Context, req CreateAssignmentRequest) (AssignmentResponse, error)
	GetAssignmentsByWorker(ctx context.Context, workerID string) ([]AssignmentResponse, error)
	UpdateAssignment(ctx context.Context, id string, req UpdateAssignmentRequest) (AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("schedule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) CreateShift(ctx context.Context, req CreateShiftRequest) (ShiftResponse, error) {
	if err := validateShiftTimes(req.EntryTime, req.ExitTime); err != nil {
		s.logger.Warn("create shift rejected", zap.String("kind", req.Kind), zap.Error(err))
		return ShiftResponse{}, err
	}
	weekdays, err := uniqueWeekdays(req.Weekdays)
	if err != nil {
		return ShiftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	shift := &Shift{
		ID:        uuid.New(),
		Kind:      req.Kind,
		EntryTime: normalizeTime(req.EntryTime),
		ExitTime:  normalizeTime(req.ExitTime),
	}
	for _, d := range weekdays {
		shift.Weekdays = append(shift.Weekdays, ShiftWeekday{
			ID:      uuid.New(),
			ShiftID: shift.ID,
			Weekday: d,
		})
	}

	if err := qtx.CreateShift(ctx, shift); err != nil {
		s.logger.Error("create shift persist failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return ShiftResponse{}, err
	}

	s.logger.Info("create shift success",
		zap.String("shift_id", shift.ID.String()),
		zap.String("kind", shift.Kind),
	)
	return mapShiftToResponse(*shift), nil
}

func (s *service) GetShifts(ctx context.Context) ([]ShiftResponse, error) {
	shifts, err := s.repo.FindAllShifts(ctx)
	if err != nil {
		s.logger.Error("get shifts failed", zap.Error(err))
		return nil, err
	}
	res := make([]ShiftResponse, len(shifts))
	for i, sh := range shifts {
		res[i] = mapShiftToResponse(sh)
	}
	return res, nil
}

func (s *service) GetShiftByID(ctx context.Context, id string) (ShiftResponse, error) {
	sh, err := s.repo.FindShiftByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, scheduleerrors.ErrShiftNotFound
		}
		return ShiftResponse{}, err
	}
	return mapShiftToResponse(*sh), nil
}

func (s *service) UpdateShift(ctx context.Context, id string, req UpdateShiftRequest) (ShiftResponse, error) {
	if err := validateShiftTimes(req.EntryTime, req.ExitTime); err != nil {
		return ShiftResponse{}, err
	}
	weekdays, err := uniqueWeekdays(req.Weekdays)
	if err != nil {
		return ShiftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	sh, err := qtx.FindShiftByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShiftResponse{}, scheduleerrors.ErrShiftNotFound
		}
		return ShiftResponse{}, err
	}

	sh.Kind = req.Kind
	sh.EntryTime = normalizeTime(req.EntryTime)
	sh.ExitTime = normalizeTime(req.ExitTime)

	if err := qtx.UpdateShift(ctx, sh); err != nil {
		s.logger.Error("update shift persist failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	rows := make([]ShiftWeekday, len(weekdays))
	for i, d := range weekdays {
		rows[i] = ShiftWeekday{ID: uuid.New(), ShiftID: sh.ID, Weekday: d}
	}
	if err := qtx.ReplaceShiftWeekdays(ctx, id, rows); err != nil {
		s.logger.Error("replace shift weekdays failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	sh.Weekdays = rows

	if err := tx.Commit(); err != nil {
		return ShiftResponse{}, err
	}

	s.logger.Info("update shift success", zap.String("shift_id", id))
	return mapShiftToResponse(*sh), nil
}

func (s *service) DeleteShift(ctx context.Context, id string) error {
	if _, err := s.repo.FindShiftByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheduleerrors.ErrShiftNotFound
		}
		return err
	}
	return s.repo.DeleteShift(ctx, id)
}

func (s *service) CreateCalendarDay(ctx context.Context, req CreateCalendarDayRequest) (CalendarDayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return CalendarDayResponse{}, scheduleerrors.ErrInvalidDate
	}
	if date.Year() < 2020 {
		s.logger.Warn("create calendar day rejected, date too old", zap.String("date", req.Date))
		return CalendarDayResponse{}, scheduleerrors.ErrCalendarDateTooOld
	}

	if _, err := s.repo.FindCalendarDayByDate(ctx, date); err == nil {
		return CalendarDayResponse{}, scheduleerrors.ErrCalendarDayExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return CalendarDayResponse{}, err
	}

	day := &CalendarDay{
		ID:          uuid.New(),
		Date:        date,
		NonBusiness: req.NonBusiness,
		Description: req.Description,
	}
	if err := s.repo.CreateCalendarDay(ctx, day); err != nil {
		// The unique index still guards against a concurrent insert.
		s.logger.Error("create calendar day persist failed", zap.Error(err))
		return CalendarDayResponse{}, mapCalendarError(err)
	}

	s.logger.Info("create calendar day success",
		zap.String("date", req.Date),
		zap.Bool("non_business", req.NonBusiness),
	)
	return mapCalendarDayToResponse(*day), nil
}

func (s *service) GetCalendarDays(ctx context.Context, from, to string) ([]CalendarDayResponse, error) {
	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = time.Parse("2006-01-02", from); err != nil {
			return nil, scheduleerrors.ErrInvalidDate
		}
	}
	if to != "" {
		if toDate, err = time.Parse("2006-01-02", to); err != nil {
			return nil, scheduleerrors.ErrInvalidDate
		}
	}

	days, err := s.repo.FindCalendarDays(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	res := make([]CalendarDayResponse, len(days))
	for i, d := range days {
		res[i] = mapCalendarDayToResponse(d)
	}
	return res, nil
}

func (s *service) DeleteCalendarDay(ctx context.Context, id string) error {
	return s.repo.DeleteCalendarDay(ctx, id)
}

func (s *service) CreateAssignment(ctx context.Context, req CreateAssignmentRequest) (AssignmentResponse, error) {
	start, end, err := parseAssignmentDates(req.StartDate, req.EndDate)
	if err != nil {
		return AssignmentResponse{}, err
	}

	if _, err := s.repo.FindShiftByID(ctx, req.ShiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, scheduleerrors.ErrShiftNotFound
		}
		return AssignmentResponse{}, err
	}

	if err := s.rejectOverlap(ctx, req.WorkerID, start, end, ""); err != nil {
		return AssignmentResponse{}, err
	}

	a := &Assignment{
		ID:        uuid.New(),
		WorkerID:  uuid.MustParse(req.WorkerID),
		ShiftID:   uuid.MustParse(req.ShiftID),
		StartDate: start,
		EndDate:   end,
	}
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		s.logger.Error("create assignment persist failed", zap.Error(err))
		return AssignmentResponse{}, err
	}

	s.logger.Info("create assignment success",
		zap.String("assignment_id", a.ID.String()),
		zap.String("worker_id", req.WorkerID),
		zap.String("shift_id", req.ShiftID),
	)
	return mapAssignmentToResponse(*a), nil
}

func (s *service) GetAssignmentsByWorker(ctx context.Context, workerID string) ([]AssignmentResponse, error) {
	assignments, err := s.repo.FindAssignmentsByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	res := make([]AssignmentResponse, len(assignments))
	for i, a := range assignments {
		res[i] = mapAssignmentToResponse(a)
	}
	return res, nil
}

func (s *service) UpdateAssignment(ctx context.Context, id string, req UpdateAssignmentRequest) (AssignmentResponse, error) {
	start, end, err := parseAssignmentDates(req.StartDate, req.EndDate)
	if err != nil {
		return AssignmentResponse{}, err
	}

	a, err := s.repo.FindAssignmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, scheduleerrors.ErrAssignmentNotFound
		}
		return AssignmentResponse{}, err
	}

	if err := s.rejectOverlap(ctx, a.WorkerID.String(), start, end, id); err != nil {
		return AssignmentResponse{}, err
	}

	a.ShiftID = uuid.MustParse(req.ShiftID)
	a.StartDate = start
	a.EndDate = end

	if err := s.repo.UpdateAssignment(ctx, a); err != nil {
		s.logger.Error("update assignment persist failed", zap.Error(err))
		return AssignmentResponse{}, err
	}

	s.logger.Info("update assignment success", zap.String("assignment_id", id))
	return mapAssignmentToResponse(*a), nil
}

func (s *service) DeleteAssignment(ctx context.Context, id string) error {
	if _, err := s.repo.FindAssignmentByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheduleerrors.ErrAssignmentNotFound
		}
		return err
	}
	return s.repo.DeleteAssignment(ctx, id)
}

// rejectOverlap enforces the one-assignment-per-date invariant at
// write time, naming the conflicting assignment in the message.
func (s *service) rejectOverlap(ctx context.Context, workerID string, start time.Time, end *time.Time, excludeID string) error {
	overlaps, err := s.repo.FindOverlappingAssignments(ctx, workerID, start, end, excludeID)
	if err != nil {
		return err
	}
	if len(overlaps) == 0 {
		return nil
	}

	conflict := overlaps[0]
	until := "open-ended"
	if conflict.EndDate != nil {
		until = "until " + conflict.EndDate.Format("02/01/2006")
	}
	s.logger.Warn("assignment overlap rejected",
		zap.String("worker_id", workerID),
		zap.String("conflicting_assignment_id", conflict.ID.String()),
	)
	return apperror.New(
		apperror.CodeConflict,
		fmt.Sprintf("Worker already has shift %s assigned from %s (%s). End that assignment before creating a new one",
			conflict.Shift.Kind, conflict.StartDate.Format("02/01/2006"), until),
		http.StatusConflict,
	)
}

func validateShiftTimes(entry, exit string) error {
	entryTod, err := ParseTimeOfDay(entry)
	if err != nil {
		return apperror.InvalidField("Entry Time")
	}
	exitTod, err := ParseTimeOfDay(exit)
	if err != nil {
		return apperror.InvalidField("Exit Time")
	}
	if exitTod <= entryTod {
		return scheduleerrors.ErrExitBeforeEntry
	}
	return nil
}

func uniqueWeekdays(days []int) ([]int, error) {
	seen := map[int]bool{}
	out := make([]int, 0, len(days))
	for _, d := range days {
		if seen[d] {
			return nil, scheduleerrors.ErrDuplicateWeekday
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

func normalizeTime(s string) string {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		return s
	}
	return tod.String()
}

func parseAssignmentDates(startStr, endStr string) (time.Time, *time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, nil, scheduleerrors.ErrInvalidDate
	}
	if endStr == "" {
		return start, nil, nil
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, nil, scheduleerrors.ErrInvalidDate
	}
	if end.Before(start) {
		return time.Time{}, nil, scheduleerrors.ErrEndBeforeStart
	}
	return start, &end, nil
}

func mapCalendarError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return scheduleerrors.ErrCalendarDayExists
	}
	return err
}

func mapShiftToResponse(sh Shift) ShiftResponse {
	days := make([]int, 0, len(sh.Weekdays))
	for d := 1; d <= 7; d++ {
		if sh.HasWeekday(d) {
			days = append(days, d)
		}
	}
	return ShiftResponse{
		ID:            sh.ID.String(),
		Kind:          sh.Kind,
		Label:         sh.Label(),
		EntryTime:     sh.EntryTime,
		ExitTime:      sh.ExitTime,
		Weekdays:      days,
		WeekdaysShort: sh.ShortWeekdays(),
	}
}

func mapCalendarDayToResponse(d CalendarDay) CalendarDayResponse {
	return CalendarDayResponse{
		ID:          d.ID.String(),
		Date:        d.Date.Format("2006-01-02"),
		NonBusiness: d.NonBusiness,
		Description: d.Description,
	}
}

func mapAssignmentToResponse(a Assignment) AssignmentResponse {
	var end *string
	if a.EndDate != nil {
		s := a.EndDate.Format("2006-01-02")
		end = &s
	}
	return AssignmentResponse{
		ID:        a.ID.String(),
		WorkerID:  a.WorkerID.String(),
		ShiftID:   a.ShiftID.String(),
		ShiftKind: a.Shift.Kind,
		StartDate: a.StartDate.Format("2006-01-02"),
		EndDate:   end,
		Current:   a.Current(time.Now()),
	}
}
