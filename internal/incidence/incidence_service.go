package incidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-asistencia/internal/domain"
	"go-asistencia/internal/events"
	incidenceerrors "go-asistencia/internal/incidence/errors"
	"go-asistencia/internal/messaging/kafka"
	"go-asistencia/internal/shared/apperror"
	"go-asistencia/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The institutional catalog seeded on startup.
var defaultTypeDescriptions = []string{
	"Incapacidad",
	"Permiso con goce",
	"Comisión sindical",
	"Permiso sin goce",
	"Comisión administrativa",
}

// Actor identifies who is calling, for policy decisions and audit.
type Actor struct {
	UserID   string
	Role     string
	UnitID   string
	WorkerID string
}

//go:generate mockgen -source=incidence_service.go -destination=mock/incidence_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateIncidenceRequest) (IncidenceResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateIncidenceRequest) (IncidenceResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (IncidenceResponse, error)
	GetAll(ctx context.Context, actor Actor) ([]IncidenceResponse, error)
	Authorize(ctx context.Context, actor Actor, id string, req DecisionRequest) (IncidenceResponse, error)
	Reject(ctx context.Context, actor Actor, id string, req DecisionRequest) (IncidenceResponse, error)

	CreateType(ctx context.Context, req CreateIncidenceTypeRequest) (IncidenceTypeResponse, error)
	GetTypes(ctx context.Context) ([]IncidenceTypeResponse, error)
	SeedDefaultTypes(ctx context.Context) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("incidence.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("incidence.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, logger: l, now: time.Now}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateIncidenceRequest) (IncidenceResponse, error) {
	s.logger.Debug("create incidence requested",
		zap.String("worker_id", req.WorkerID),
		zap.String("type_id", req.TypeID),
	)

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return IncidenceResponse{}, err
	}

	if actor.Role == domain.RoleWorker && actor.WorkerID != req.WorkerID {
		return IncidenceResponse{}, apperror.ErrForbidden
	}
	if err := s.checkUnitScope(ctx, actor, req.WorkerID); err != nil {
		return IncidenceResponse{}, err
	}

	incType, err := s.repo.FindTypeByID(ctx, req.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return IncidenceResponse{}, incidenceerrors.ErrTypeNotFound
		}
		return IncidenceResponse{}, err
	}
	if !incType.Active {
		return IncidenceResponse{}, incidenceerrors.ErrTypeInactive
	}

	if err := s.rejectOverlap(ctx, req.WorkerID, start, end, ""); err != nil {
		return IncidenceResponse{}, err
	}

	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return IncidenceResponse{}, incidenceerrors.ErrInvalidWorkerID
	}

	inc := &Incidence{
		ID:           uuid.New(),
		WorkerID:     workerID,
		TypeID:       incType.ID,
		Type:         *incType,
		StartDate:    start,
		EndDate:      end,
		Observations: req.Observations,
		State:        StatePending,
	}

	if err := s.repo.Create(ctx, inc); err != nil {
		s.logger.Error("create incidence persist failed", zap.Error(err))
		return IncidenceResponse{}, err
	}

	s.logger.Info("create incidence success",
		zap.String("incidence_id", inc.ID.String()),
		zap.String("worker_id", req.WorkerID),
	)
	return mapToResponse(*inc, nil), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateIncidenceRequest) (IncidenceResponse, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return IncidenceResponse{}, err
	}

	inc, unitID, err := s.load(ctx, id)
	if err != nil {
		return IncidenceResponse{}, err
	}

	actions := PermittedActions(actor.Role, actor.UnitID, actor.WorkerID, *inc, unitID)
	if !actions.CanEdit {
		if !inc.CanTransition() {
			return IncidenceResponse{}, incidenceerrors.ErrNotPending
		}
		return IncidenceResponse{}, apperror.ErrForbidden
	}

	if err := s.rejectOverlap(ctx, inc.WorkerID.String(), start, end, id); err != nil {
		return IncidenceResponse{}, err
	}

	incType, err := s.repo.FindTypeByID(ctx, req.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return IncidenceResponse{}, incidenceerrors.ErrTypeNotFound
		}
		return IncidenceResponse{}, err
	}

	inc.TypeID = incType.ID
	inc.Type = *incType
	inc.StartDate = start
	inc.EndDate = end
	inc.Observations = req.Observations

	if err := s.repo.Update(ctx, inc); err != nil {
		s.logger.Error("update incidence persist failed", zap.Error(err))
		return IncidenceResponse{}, err
	}

	s.logger.Info("update incidence success", zap.String("incidence_id", id))
	return mapToResponse(*inc, &actions), nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (IncidenceResponse, error) {
	inc, unitID, err := s.load(ctx, id)
	if err != nil {
		return IncidenceResponse{}, err
	}

	actions := PermittedActions(actor.Role, actor.UnitID, actor.WorkerID, *inc, unitID)
	if !actions.CanView {
		return IncidenceResponse{}, apperror.ErrForbidden
	}

	return mapToResponse(*inc, &actions), nil
}

// GetAll lists what the actor may see: admins everything, supervisors
// their unit, workers their own.
func (s *service) GetAll(ctx context.Context, actor Actor) ([]IncidenceResponse, error) {
	var (
		incidences []Incidence
		err        error
	)
	switch actor.Role {
	case domain.RoleSupervisor:
		incidences, err = s.repo.FindAll(ctx, actor.UnitID)
	case domain.RoleWorker:
		if actor.WorkerID == "" {
			return []IncidenceResponse{}, nil
		}
		incidences, err = s.repo.FindByWorker(ctx, actor.WorkerID)
	default:
		incidences, err = s.repo.FindAll(ctx, "")
	}
	if err != nil {
		s.logger.Error("get incidences failed", zap.Error(err))
		return nil, err
	}

	res := make([]IncidenceResponse, len(incidences))
	for i, inc := range incidences {
		res[i] = mapToResponse(inc, nil)
	}
	return res, nil
}

func (s *service) Authorize(ctx context.Context, actor Actor, id string, req DecisionRequest) (IncidenceResponse, error) {
	return s.decide(ctx, actor, id, req.Comment, StateAuthorized)
}

func (s *service) Reject(ctx context.Context, actor Actor, id string, req DecisionRequest) (IncidenceResponse, error) {
	return s.decide(ctx, actor, id, req.Comment, StateRejected)
}

func (s *service) decide(ctx context.Context, actor Actor, id, comment string, target State) (IncidenceResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	inc, unitID, err := s.load(ctx, id)
	if err != nil {
		return IncidenceResponse{}, err
	}

	actions := PermittedActions(actor.Role, actor.UnitID, actor.WorkerID, *inc, unitID)
	if !actions.CanAuthorize {
		if !inc.CanTransition() {
			return IncidenceResponse{}, incidenceerrors.ErrNotPending
		}
		return IncidenceResponse{}, apperror.ErrForbidden
	}

	decidedBy, err := uuid.Parse(actor.UserID)
	if err != nil {
		return IncidenceResponse{}, apperror.ErrUnauthorized
	}
	decidedAt := s.now().UTC()

	inc.State = target
	inc.AuthorizedBy = &decidedBy
	inc.AuthorizedAt = &decidedAt
	inc.AuthorizationComment = comment
	inc.UpdatedBy = &decidedBy

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IncidenceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Update(ctx, inc); err != nil {
		s.logger.Error("decide incidence persist failed", zap.Error(err))
		return IncidenceResponse{}, err
	}

	if target == StateAuthorized && s.outbox != nil {
		event := events.IncidenceAuthorizedEvent{
			EventType:    "incidence_authorized",
			RequestID:    rid,
			IncidenceID:  inc.ID.String(),
			WorkerID:     inc.WorkerID.String(),
			StartDate:    inc.StartDate.Format("2006-01-02"),
			EndDate:      inc.EndDate.Format("2006-01-02"),
			AuthorizedBy: actor.UserID,
			OccurredAt:   decidedAt,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return IncidenceResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "incidence",
			AggregateID:   inc.ID.String(),
			EventType:     event.EventType,
			Topic:         events.IncidenceAuthorizedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("incidence outbox persist failed", zap.Error(err))
			return IncidenceResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return IncidenceResponse{}, err
	}

	s.logger.Info("incidence decided",
		zap.String("request_id", rid),
		zap.String("incidence_id", id),
		zap.String("state", string(target)),
		zap.String("decided_by", actor.UserID),
	)
	return mapToResponse(*inc, &actions), nil
}

func (s *service) CreateType(ctx context.Context, req CreateIncidenceTypeRequest) (IncidenceTypeResponse, error) {
	requiresAuth := true
	if req.RequiresAuthorization != nil {
		requiresAuth = *req.RequiresAuthorization
	}

	t := &IncidenceType{
		ID:                    uuid.New(),
		Description:           req.Description,
		RequiresAuthorization: requiresAuth,
		Active:                true,
	}
	if err := s.repo.CreateType(ctx, t); err != nil {
		return IncidenceTypeResponse{}, err
	}
	return mapTypeToResponse(*t), nil
}

func (s *service) GetTypes(ctx context.Context) ([]IncidenceTypeResponse, error) {
	types, err := s.repo.FindAllTypes(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]IncidenceTypeResponse, len(types))
	for i, t := range types {
		res[i] = mapTypeToResponse(t)
	}
	return res, nil
}

// SeedDefaultTypes is idempotent; it runs on every startup.
func (s *service) SeedDefaultTypes(ctx context.Context) error {
	types := make([]IncidenceType, len(defaultTypeDescriptions))
	for i, desc := range defaultTypeDescriptions {
		types[i] = IncidenceType{
			ID:                    uuid.New(),
			Description:           desc,
			RequiresAuthorization: true,
			Active:                true,
		}
	}
	if err := s.repo.SeedTypes(ctx, types); err != nil {
		s.logger.Error("seed incidence types failed", zap.Error(err))
		return err
	}
	s.logger.Info("incidence type catalog seeded", zap.Int("count", len(types)))
	return nil
}

func (s *service) load(ctx context.Context, id string) (*Incidence, string, error) {
	inc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", incidenceerrors.ErrIncidenceNotFound
		}
		return nil, "", err
	}

	unitID, err := s.repo.WorkerUnit(ctx, inc.WorkerID.String())
	if err != nil {
		return nil, "", err
	}
	return inc, unitID, nil
}

// checkUnitScope stops supervisors from raising incidences for other
// units' workers.
func (s *service) checkUnitScope(ctx context.Context, actor Actor, workerID string) error {
	if actor.Role != domain.RoleSupervisor {
		return nil
	}
	unitID, err := s.repo.WorkerUnit(ctx, workerID)
	if err != nil {
		return err
	}
	if unitID != actor.UnitID {
		return apperror.ErrForbidden
	}
	return nil
}

// rejectOverlap enforces at most one pending/authorized incidence per
// worker per date, naming the conflicting one.
func (s *service) rejectOverlap(ctx context.Context, workerID string, start, end time.Time, excludeID string) error {
	active, err := s.repo.FindActiveByWorker(ctx, workerID, excludeID)
	if err != nil {
		return err
	}

	for _, other := range active {
		if other.Overlaps(start, end) {
			s.logger.Warn("incidence overlap rejected",
				zap.String("worker_id", workerID),
				zap.String("conflicting_incidence_id", other.ID.String()),
			)
			return apperror.New(
				apperror.CodeConflict,
				fmt.Sprintf("Worker already has an incidence in the selected period: %s (%s - %s)",
					other.Type.Description,
					other.StartDate.Format("2006-01-02"),
					other.EndDate.Format("2006-01-02")),
				http.StatusConflict,
			)
		}
	}
	return nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, incidenceerrors.ErrInvalidDate
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, incidenceerrors.ErrInvalidDate
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, incidenceerrors.ErrEndBeforeStart
	}
	return start, end, nil
}

func mapToResponse(i Incidence, actions *Actions) IncidenceResponse {
	resp := IncidenceResponse{
		ID:              i.ID.String(),
		WorkerID:        i.WorkerID.String(),
		TypeID:          i.TypeID.String(),
		TypeDescription: i.Type.Description,
		StartDate:       i.StartDate.Format("2006-01-02"),
		EndDate:         i.EndDate.Format("2006-01-02"),
		DurationDays:    i.DurationDays(),
		Observations:    i.Observations,
		State:           string(i.State),
		Comment:         i.AuthorizationComment,
		Actions:         actions,
	}
	if i.AuthorizedBy != nil {
		s := i.AuthorizedBy.String()
		resp.AuthorizedBy = &s
	}
	if i.AuthorizedAt != nil {
		s := i.AuthorizedAt.Format(time.RFC3339)
		resp.AuthorizedAt = &s
	}
	return resp
}

func mapTypeToResponse(t IncidenceType) IncidenceTypeResponse {
	return IncidenceTypeResponse{
		ID:                    t.ID.String(),
		Description:           t.Description,
		RequiresAuthorization: t.RequiresAuthorization,
		Active:                t.Active,
	}
}
