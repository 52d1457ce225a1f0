package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	attendanceerrors "go-asistencia/internal/attendance/errors"
	"go-asistencia/internal/events"
	"go-asistencia/internal/messaging/kafka"
	"go-asistencia/internal/schedule"
	"go-asistencia/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateRecordRequest) (RecordResponse, error)
	Update(ctx context.Context, id string, req UpdateRecordRequest) (RecordResponse, error)
	Clock(ctx context.Context, workerID string) (ClockResponse, error)
	GetAll(ctx context.Context, unitID string, page, limit int) ([]RecordResponse, int64, error)
	GetByWorker(ctx context.Context, workerID, from, to string) ([]RecordResponse, error)
	MarkExcused(ctx context.Context, workerID string, from, to time.Time) (int, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	evaluator *Evaluator
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(db *sql.DB, repo Repository, evaluator *Evaluator, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, evaluator, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	evaluator *Evaluator,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		evaluator: evaluator,
		outbox:    outboxRepo,
		logger:    l,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRecordRequest) (RecordResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create attendance record requested",
		zap.String("request_id", rid),
		zap.String("worker_id", req.WorkerID),
		zap.String("date", req.Date),
	)

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidDate
	}
	entry, err := parseOptionalTime(req.EntryTime)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidTime
	}
	exit, err := parseOptionalTime(req.ExitTime)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidTime
	}

	active, err := s.repo.WorkerActive(ctx, req.WorkerID)
	if err != nil {
		s.logger.Error("worker active lookup failed", zap.Error(err))
		return RecordResponse{}, err
	}

	if violations := ValidateRecord(date, entry, exit, active, s.now()); len(violations) > 0 {
		s.logger.Warn("create attendance record rejected",
			zap.String("worker_id", req.WorkerID),
			zap.Strings("violations", violations),
		)
		return RecordResponse{}, &ValidationError{Messages: violations}
	}

	workerID := uuid.MustParse(req.WorkerID)
	status := s.evaluator.Classify(ctx, workerID, date, entry)

	rec := &Record{
		ID:          uuid.New(),
		WorkerID:    workerID,
		Date:        date,
		EntryTime:   timeOfDayString(entry),
		ExitTime:    timeOfDayString(exit),
		Status:      status,
		LateMinutes: s.evaluator.LateMinutes(ctx, workerID, date, entry, status),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, rec); err != nil {
		s.logger.Error("create attendance record persist failed", zap.Error(err))
		return RecordResponse{}, mapRepositoryError(err)
	}

	if err := s.queueRecordedEvent(ctx, tx, rid, rec); err != nil {
		return RecordResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RecordResponse{}, err
	}

	s.logger.Info("create attendance record success",
		zap.String("request_id", rid),
		zap.String("record_id", rec.ID.String()),
		zap.String("status", string(rec.Status)),
		zap.Int("late_minutes", rec.LateMinutes),
	)
	return mapToResponse(*rec), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRecordRequest) (RecordResponse, error) {
	entry, err := parseOptionalTime(req.EntryTime)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidTime
	}
	exit, err := parseOptionalTime(req.ExitTime)
	if err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidTime
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByID(ctx, id)
	if err != nil {
		return RecordResponse{}, mapRepositoryError(err)
	}

	active, err := qtx.WorkerActive(ctx, rec.WorkerID.String())
	if err != nil {
		return RecordResponse{}, err
	}

	if violations := ValidateRecord(rec.Date, entry, exit, active, s.now()); len(violations) > 0 {
		return RecordResponse{}, &ValidationError{Messages: violations}
	}

	status := s.evaluator.Classify(ctx, rec.WorkerID, rec.Date, entry)

	rec.EntryTime = timeOfDayString(entry)
	rec.ExitTime = timeOfDayString(exit)
	rec.Status = status
	rec.LateMinutes = s.evaluator.LateMinutes(ctx, rec.WorkerID, rec.Date, entry, status)

	if err := qtx.Update(ctx, rec); err != nil {
		s.logger.Error("update attendance record persist failed", zap.Error(err))
		return RecordResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return RecordResponse{}, err
	}

	s.logger.Info("update attendance record success",
		zap.String("record_id", id),
		zap.String("status", string(rec.Status)),
	)
	return mapToResponse(*rec), nil
}

// Clock is the worker self-service flow: the first action of the day
// records entry, the second records exit, anything further is
// rejected. Exit does not change the status; classification uses the
// entry time only.
func (s *service) Clock(ctx context.Context, workerID string) (ClockResponse, error) {
	if workerID == "" {
		return ClockResponse{}, attendanceerrors.ErrWorkerNotLinked
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tod := schedule.TimeOfDay(now.Hour()*3600 + now.Minute()*60 + now.Second())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ClockResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByWorkerAndDate(ctx, workerID, today)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		wid := uuid.MustParse(workerID)
		status := s.evaluator.Classify(ctx, wid, today, &tod)
		rec = &Record{
			ID:          uuid.New(),
			WorkerID:    wid,
			Date:        today,
			EntryTime:   timeOfDayString(&tod),
			Status:      status,
			LateMinutes: s.evaluator.LateMinutes(ctx, wid, today, &tod, status),
		}
		if err := qtx.Create(ctx, rec); err != nil {
			s.logger.Error("clock entry persist failed", zap.Error(err))
			return ClockResponse{}, mapRepositoryError(err)
		}
		if err := s.queueRecordedEvent(ctx, tx, contextutil.GetRequestID(ctx), rec); err != nil {
			return ClockResponse{}, err
		}
		if err := tx.Commit(); err != nil {
			return ClockResponse{}, err
		}
		s.logger.Info("clock entry recorded",
			zap.String("worker_id", workerID),
			zap.String("status", string(rec.Status)),
		)
		return ClockResponse{Action: "entry", Record: mapToResponse(*rec)}, nil

	case err != nil:
		return ClockResponse{}, err

	case rec.ExitTime == nil:
		rec.ExitTime = timeOfDayString(&tod)
		if err := qtx.Update(ctx, rec); err != nil {
			s.logger.Error("clock exit persist failed", zap.Error(err))
			return ClockResponse{}, mapRepositoryError(err)
		}
		if err := tx.Commit(); err != nil {
			return ClockResponse{}, err
		}
		s.logger.Info("clock exit recorded", zap.String("worker_id", workerID))
		return ClockResponse{Action: "exit", Record: mapToResponse(*rec)}, nil

	default:
		s.logger.Warn("clock rejected, day already complete", zap.String("worker_id", workerID))
		return ClockResponse{}, attendanceerrors.ErrDayComplete
	}
}

func (s *service) GetAll(ctx context.Context, unitID string, page, limit int) ([]RecordResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	recs, total, err := s.repo.FindAll(ctx, unitID, page, limit)
	if err != nil {
		s.logger.Error("get attendance records failed", zap.Error(err))
		return nil, 0, err
	}

	res := make([]RecordResponse, len(recs))
	for i, r := range recs {
		res[i] = mapToResponse(r)
	}
	return res, total, nil
}

func (s *service) GetByWorker(ctx context.Context, workerID, from, to string) ([]RecordResponse, error) {
	fromDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDate
	}
	toDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDate
	}

	recs, err := s.repo.FindByWorkerRange(ctx, workerID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	res := make([]RecordResponse, len(recs))
	for i, r := range recs {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

// MarkExcused justifies the worker's absences for an authorized
// incidence: ABSENT records in the range become EXCUSED, and owed
// working dates with no record get an EXCUSED one. Days off are
// skipped and ON_TIME and LATE rows are left alone. Returns how many
// dates were touched.
func (s *service) MarkExcused(ctx context.Context, workerID string, from, to time.Time) (int, error) {
	touched := 0
	wid, err := uuid.Parse(workerID)
	if err != nil {
		return 0, err
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		rec, err := s.repo.FindByWorkerAndDate(ctx, workerID, d)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if must, _ := s.evaluator.MustAttend(ctx, wid, d); !must {
				continue
			}
			if err := s.repo.Create(ctx, &Record{
				ID:       uuid.New(),
				WorkerID: wid,
				Date:     d,
				Status:   StatusExcused,
			}); err != nil {
				return touched, mapRepositoryError(err)
			}
			touched++

		case err != nil:
			return touched, err

		case rec.Status == StatusAbsent:
			rec.Status = StatusExcused
			rec.LateMinutes = 0
			if err := s.repo.Update(ctx, rec); err != nil {
				return touched, mapRepositoryError(err)
			}
			touched++
		}
	}

	s.logger.Info("marked dates excused",
		zap.String("worker_id", workerID),
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")),
		zap.Int("touched", touched),
	)
	return touched, nil
}

func (s *service) queueRecordedEvent(ctx context.Context, tx *sql.Tx, rid string, rec *Record) error {
	if s.outbox == nil {
		return nil
	}

	event := events.AttendanceRecordedEvent{
		EventType:   "attendance_recorded",
		RequestID:   rid,
		RecordID:    rec.ID.String(),
		WorkerID:    rec.WorkerID.String(),
		Date:        rec.Date.Format("2006-01-02"),
		Status:      string(rec.Status),
		LateMinutes: rec.LateMinutes,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "attendance_record",
		AggregateID:   rec.ID.String(),
		EventType:     event.EventType,
		Topic:         events.AttendanceRecordedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("attendance outbox persist failed",
			zap.String("record_id", rec.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func parseOptionalTime(s string) (*schedule.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	tod, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &tod, nil
}

func timeOfDayString(t *schedule.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func mapToResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:          r.ID.String(),
		WorkerID:    r.WorkerID.String(),
		Date:        r.Date.Format("2006-01-02"),
		EntryTime:   r.EntryTime,
		ExitTime:    r.ExitTime,
		Status:      string(r.Status),
		LateMinutes: r.LateMinutes,
	}
}
