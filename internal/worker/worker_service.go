package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go-asistencia/internal/events"
	"go-asistencia/internal/messaging/kafka"
	"go-asistencia/internal/shared/contextutil"
	"go-asistencia/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=worker_service.go -destination=mock/worker_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateWorkerRequest) (WorkerResponse, error)
	GetAll(ctx context.Context, unitID string) ([]WorkerResponse, error)
	GetByID(ctx context.Context, id string) (WorkerResponse, error)
	Update(ctx context.Context, id string, req UpdateWorkerRequest) (WorkerResponse, error)
	Delete(ctx context.Context, id string) error
	CreateAppointmentType(ctx context.Context, req CreateAppointmentTypeRequest) (AppointmentTypeResponse, error)
	GetAppointmentTypes(ctx context.Context) ([]AppointmentTypeResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, counter, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("worker.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("worker.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outboxRepo,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateWorkerRequest) (WorkerResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create worker requested",
		zap.String("request_id", rid),
		zap.String("unit_id", req.UnitID),
		zap.String("position_id", req.PositionID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create worker begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return WorkerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if req.EmployeeNumber == "" {
		nextVal, err := s.counter.GetNextValue(ctx, "employee_number")
		if err != nil {
			s.logger.Error("create worker generate number failed", zap.Error(err))
			return WorkerResponse{}, err
		}
		req.EmployeeNumber = fmt.Sprintf("TRB-%06d", nextVal)
	}

	w := &Worker{
		ID:                uuid.New(),
		EmployeeNumber:    req.EmployeeNumber,
		FirstName:         req.FirstName,
		LastNamePaternal:  req.LastNamePaternal,
		LastNameMaternal:  req.LastNameMaternal,
		RFC:               req.RFC,
		CURP:              req.CURP,
		UnitID:            uuid.MustParse(req.UnitID),
		PositionID:        uuid.MustParse(req.PositionID),
		AppointmentTypeID: uuidPtr(req.AppointmentTypeID),
		Active:            true,
	}

	if err := qtx.Create(ctx, w); err != nil {
		s.logger.Error("create worker persist failed", zap.Error(err))
		return WorkerResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.WorkerCreatedEvent{
			EventType:      "worker_created",
			RequestID:      rid,
			WorkerID:       w.ID.String(),
			UnitID:         req.UnitID,
			EmployeeNumber: w.EmployeeNumber,
			OccurredAt:     time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return WorkerResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "worker",
			AggregateID:   w.ID.String(),
			EventType:     event.EventType,
			Topic:         events.WorkerCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("create worker outbox persist failed",
				zap.String("worker_id", w.ID.String()),
				zap.Error(err),
			)
			return WorkerResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return WorkerResponse{}, err
	}

	s.logger.Info("create worker success",
		zap.String("request_id", rid),
		zap.String("worker_id", w.ID.String()),
		zap.String("employee_number", w.EmployeeNumber),
	)

	return mapToResponse(*w), nil
}

// GetAll lists workers, restricted to one unit when unitID is set
// (supervisors see only their own unit).
func (s *service) GetAll(ctx context.Context, unitID string) ([]WorkerResponse, error) {
	var (
		workers []Worker
		err     error
	)
	if unitID != "" {
		workers, err = s.repo.FindAllByUnit(ctx, unitID)
	} else {
		workers, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("get all workers failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(workers), nil
}

func (s *service) GetByID(ctx context.Context, id string) (WorkerResponse, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return WorkerResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*w), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateWorkerRequest) (WorkerResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WorkerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	w, err := qtx.FindByID(ctx, id)
	if err != nil {
		return WorkerResponse{}, mapRepositoryError(err)
	}

	w.FirstName = req.FirstName
	w.LastNamePaternal = req.LastNamePaternal
	w.LastNameMaternal = req.LastNameMaternal
	w.RFC = req.RFC
	w.CURP = req.CURP
	w.UnitID = uuid.MustParse(req.UnitID)
	w.PositionID = uuid.MustParse(req.PositionID)
	w.AppointmentTypeID = uuidPtr(req.AppointmentTypeID)
	if req.Active != nil {
		w.Active = *req.Active
	}

	if err := qtx.Update(ctx, w); err != nil {
		s.logger.Error("update worker persist failed", zap.Error(err))
		return WorkerResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return WorkerResponse{}, err
	}

	s.logger.Info("update worker success", zap.String("worker_id", id))
	return mapToResponse(*w), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("delete worker success", zap.String("worker_id", id))
	return nil
}

func (s *service) CreateAppointmentType(ctx context.Context, req CreateAppointmentTypeRequest) (AppointmentTypeResponse, error) {
	t := &AppointmentType{
		ID:          uuid.New(),
		Description: req.Description,
	}
	if err := s.repo.CreateAppointmentType(ctx, t); err != nil {
		return AppointmentTypeResponse{}, mapRepositoryError(err)
	}
	return AppointmentTypeResponse{ID: t.ID.String(), Description: t.Description}, nil
}

func (s *service) GetAppointmentTypes(ctx context.Context) ([]AppointmentTypeResponse, error) {
	types, err := s.repo.FindAllAppointmentTypes(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	res := make([]AppointmentTypeResponse, len(types))
	for i, t := range types {
		res[i] = AppointmentTypeResponse{ID: t.ID.String(), Description: t.Description}
	}
	return res, nil
}

func uuidPtr(id string) *uuid.UUID {
	if id == "" {
		return nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return &parsed
}

func mapToResponse(w Worker) WorkerResponse {
	var appointmentTypeID *string
	if w.AppointmentTypeID != nil {
		s := w.AppointmentTypeID.String()
		appointmentTypeID = &s
	}
	return WorkerResponse{
		ID:                w.ID.String(),
		EmployeeNumber:    w.EmployeeNumber,
		FirstName:         w.FirstName,
		LastNamePaternal:  w.LastNamePaternal,
		LastNameMaternal:  w.LastNameMaternal,
		FullName:          w.FullName(),
		RFC:               w.RFC,
		CURP:              w.CURP,
		UnitID:            w.UnitID.String(),
		PositionID:        w.PositionID.String(),
		AppointmentTypeID: appointmentTypeID,
		Active:            w.Active,
	}
}

func mapToListResponse(workers []Worker) []WorkerResponse {
	res := make([]WorkerResponse, len(workers))
	for i, w := range workers {
		res[i] = mapToResponse(w)
	}
	return res
}
