package incidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-asistencia/internal/domain"
	"go-asistencia/internal/events"
	incidenceerrors "go-asistencia/internal/incidence/errors"
	"go-asistencia/internal/messaging/kafka"
	"go-asistencia/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn             func(ctx context.Context, i *Incidence) error
	updateFn             func(ctx context.Context, i *Incidence) error
	findByIDFn           func(ctx context.Context, id string) (*Incidence, error)
	findAllFn            func(ctx context.Context, unitID string) ([]Incidence, error)
	findByWorkerFn       func(ctx context.Context, workerID string) ([]Incidence, error)
	findActiveByWorkerFn func(ctx context.Context, workerID, excludeID string) ([]Incidence, error)
	workerUnitFn         func(ctx context.Context, workerID string) (string, error)
	createTypeFn         func(ctx context.Context, t *IncidenceType) error
	findAllTypesFn       func(ctx context.Context) ([]IncidenceType, error)
	findTypeByIDFn       func(ctx context.Context, id string) (*IncidenceType, error)
	seedTypesFn          func(ctx context.Context, types []IncidenceType) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository                   { return f }
func (f *fakeRepo) Create(ctx context.Context, i *Incidence) error { return f.createFn(ctx, i) }
func (f *fakeRepo) Update(ctx context.Context, i *Incidence) error { return f.updateFn(ctx, i) }
func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Incidence, error) {
	return f.findByIDFn(ctx, id)
}
func (f *fakeRepo) FindAll(ctx context.Context, unitID string) ([]Incidence, error) {
	return f.findAllFn(ctx, unitID)
}
func (f *fakeRepo) FindByWorker(ctx context.Context, workerID string) ([]Incidence, error) {
	return f.findByWorkerFn(ctx, workerID)
}
func (f *fakeRepo) FindActiveByWorker(ctx context.Context, workerID, excludeID string) ([]Incidence, error) {
	return f.findActiveByWorkerFn(ctx, workerID, excludeID)
}
func (f *fakeRepo) WorkerUnit(ctx context.Context, workerID string) (string, error) {
	return f.workerUnitFn(ctx, workerID)
}
func (f *fakeRepo) CreateType(ctx context.Context, t *IncidenceType) error {
	return f.createTypeFn(ctx, t)
}
func (f *fakeRepo) FindAllTypes(ctx context.Context) ([]IncidenceType, error) {
	return f.findAllTypesFn(ctx)
}
func (f *fakeRepo) FindTypeByID(ctx context.Context, id string) (*IncidenceType, error) {
	return f.findTypeByIDFn(ctx, id)
}
func (f *fakeRepo) SeedTypes(ctx context.Context, types []IncidenceType) error {
	return f.seedTypesFn(ctx, types)
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error               { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, r string) error   { return nil }

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func leaveType(desc string) *IncidenceType {
	return &IncidenceType{ID: uuid.New(), Description: desc, RequiresAuthorization: true, Active: true}
}

func admin() Actor {
	return Actor{UserID: uuid.NewString(), Role: domain.RoleAdmin}
}

func TestService_Create_RejectsOverlapNamingConflict(t *testing.T) {
	workerID := uuid.New()
	existing := Incidence{
		ID:        uuid.New(),
		WorkerID:  workerID,
		Type:      *leaveType("Incapacidad"),
		StartDate: date("2024-05-10"),
		EndDate:   date("2024-05-14"),
		State:     StateAuthorized,
	}

	repo := &fakeRepo{
		findTypeByIDFn: func(ctx context.Context, id string) (*IncidenceType, error) {
			return leaveType("Permiso con goce"), nil
		},
		findActiveByWorkerFn: func(ctx context.Context, wid, exclude string) ([]Incidence, error) {
			return []Incidence{existing}, nil
		},
	}
	svc := NewService(nil, repo)

	_, err := svc.Create(context.Background(), admin(), CreateIncidenceRequest{
		WorkerID:  workerID.String(),
		TypeID:    uuid.NewString(),
		StartDate: "2024-05-14",
		EndDate:   "2024-05-20",
	})

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Contains(t, appErr.Message, "Incapacidad")
	assert.Contains(t, appErr.Message, "2024-05-10")
	assert.Contains(t, appErr.Message, "2024-05-14")
}

func TestService_Create_AllowsAdjacentNonOverlappingRange(t *testing.T) {
	workerID := uuid.New()
	existing := Incidence{
		ID:        uuid.New(),
		WorkerID:  workerID,
		Type:      *leaveType("Incapacidad"),
		StartDate: date("2024-05-10"),
		EndDate:   date("2024-05-14"),
		State:     StatePending,
	}

	var saved Incidence
	repo := &fakeRepo{
		findTypeByIDFn: func(ctx context.Context, id string) (*IncidenceType, error) {
			return leaveType("Permiso con goce"), nil
		},
		findActiveByWorkerFn: func(ctx context.Context, wid, exclude string) ([]Incidence, error) {
			return []Incidence{existing}, nil
		},
		createFn: func(ctx context.Context, i *Incidence) error { saved = *i; return nil },
	}
	svc := NewService(nil, repo)

	resp, err := svc.Create(context.Background(), admin(), CreateIncidenceRequest{
		WorkerID:  workerID.String(),
		TypeID:    uuid.NewString(),
		StartDate: "2024-05-15",
		EndDate:   "2024-05-17",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(StatePending), resp.State)
	assert.Equal(t, 3, resp.DurationDays)
	assert.Equal(t, StatePending, saved.State)
}

func TestService_Create_RejectsInactiveType(t *testing.T) {
	inactive := leaveType("Permiso sin goce")
	inactive.Active = false

	repo := &fakeRepo{
		findTypeByIDFn: func(ctx context.Context, id string) (*IncidenceType, error) {
			return inactive, nil
		},
	}
	svc := NewService(nil, repo)

	_, err := svc.Create(context.Background(), admin(), CreateIncidenceRequest{
		WorkerID:  uuid.NewString(),
		TypeID:    inactive.ID.String(),
		StartDate: "2024-05-10",
		EndDate:   "2024-05-12",
	})

	assert.ErrorIs(t, err, incidenceerrors.ErrTypeInactive)
}

func TestService_Create_RejectsEndBeforeStart(t *testing.T) {
	svc := NewService(nil, &fakeRepo{})

	_, err := svc.Create(context.Background(), admin(), CreateIncidenceRequest{
		WorkerID:  uuid.NewString(),
		TypeID:    uuid.NewString(),
		StartDate: "2024-05-12",
		EndDate:   "2024-05-10",
	})

	assert.ErrorIs(t, err, incidenceerrors.ErrEndBeforeStart)
}

func TestService_Create_WorkerCannotRaiseForSomeoneElse(t *testing.T) {
	svc := NewService(nil, &fakeRepo{})

	actor := Actor{Role: domain.RoleWorker, WorkerID: uuid.NewString()}
	_, err := svc.Create(context.Background(), actor, CreateIncidenceRequest{
		WorkerID:  uuid.NewString(),
		TypeID:    uuid.NewString(),
		StartDate: "2024-05-10",
		EndDate:   "2024-05-12",
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestService_Authorize_FromPendingEmitsEvent(t *testing.T) {
	workerID := uuid.New()
	pending := &Incidence{
		ID:        uuid.New(),
		WorkerID:  workerID,
		Type:      *leaveType("Incapacidad"),
		StartDate: date("2024-05-10"),
		EndDate:   date("2024-05-14"),
		State:     StatePending,
	}

	var saved Incidence
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Incidence, error) { return pending, nil },
		workerUnitFn: func(ctx context.Context, wid string) (string, error) { return "unit-1", nil },
		updateFn:   func(ctx context.Context, i *Incidence) error { saved = *i; return nil },
	}
	outbox := &fakeOutbox{}

	db, mock, _ := sqlmock.New()
	defer db.Close()
	svc := NewServiceWithOutbox(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()

	actor := admin()
	resp, err := svc.Authorize(context.Background(), actor, pending.ID.String(), DecisionRequest{Comment: "ok"})

	assert.NoError(t, err)
	assert.Equal(t, string(StateAuthorized), resp.State)
	assert.Equal(t, StateAuthorized, saved.State)
	assert.NotNil(t, saved.AuthorizedBy)
	assert.Equal(t, actor.UserID, saved.AuthorizedBy.String())
	assert.NotNil(t, saved.AuthorizedAt)
	assert.Equal(t, "ok", saved.AuthorizationComment)

	if assert.Len(t, outbox.events, 1) {
		evt := outbox.events[0]
		assert.Equal(t, events.IncidenceAuthorizedTopic, evt.Topic)
		assert.Equal(t, "incidence_authorized", evt.EventType)

		var payload events.IncidenceAuthorizedEvent
		assert.NoError(t, json.Unmarshal(evt.Payload, &payload))
		assert.Equal(t, workerID.String(), payload.WorkerID)
		assert.Equal(t, "2024-05-10", payload.StartDate)
		assert.Equal(t, "2024-05-14", payload.EndDate)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Authorize_OnlyFromPending(t *testing.T) {
	for _, state := range []State{StateAuthorized, StateRejected} {
		t.Run(string(state), func(t *testing.T) {
			decided := &Incidence{
				ID:       uuid.New(),
				WorkerID: uuid.New(),
				State:    state,
			}
			repo := &fakeRepo{
				findByIDFn:   func(ctx context.Context, id string) (*Incidence, error) { return decided, nil },
				workerUnitFn: func(ctx context.Context, wid string) (string, error) { return "unit-1", nil },
			}
			svc := NewService(nil, repo)

			_, err := svc.Authorize(context.Background(), admin(), decided.ID.String(), DecisionRequest{})
			assert.ErrorIs(t, err, incidenceerrors.ErrNotPending)
		})
	}
}

func TestService_Reject_DoesNotEmitEvent(t *testing.T) {
	pending := &Incidence{
		ID:       uuid.New(),
		WorkerID: uuid.New(),
		State:    StatePending,
	}
	repo := &fakeRepo{
		findByIDFn:   func(ctx context.Context, id string) (*Incidence, error) { return pending, nil },
		workerUnitFn: func(ctx context.Context, wid string) (string, error) { return "unit-1", nil },
		updateFn:     func(ctx context.Context, i *Incidence) error { return nil },
	}
	outbox := &fakeOutbox{}

	db, mock, _ := sqlmock.New()
	defer db.Close()
	svc := NewServiceWithOutbox(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Reject(context.Background(), admin(), pending.ID.String(), DecisionRequest{Comment: "no"})

	assert.NoError(t, err)
	assert.Equal(t, string(StateRejected), resp.State)
	assert.Empty(t, outbox.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Authorize_SupervisorOtherUnitForbidden(t *testing.T) {
	pending := &Incidence{
		ID:       uuid.New(),
		WorkerID: uuid.New(),
		State:    StatePending,
	}
	repo := &fakeRepo{
		findByIDFn:   func(ctx context.Context, id string) (*Incidence, error) { return pending, nil },
		workerUnitFn: func(ctx context.Context, wid string) (string, error) { return "unit-2", nil },
	}
	svc := NewService(nil, repo)

	actor := Actor{UserID: uuid.NewString(), Role: domain.RoleSupervisor, UnitID: "unit-1"}
	_, err := svc.Authorize(context.Background(), actor, pending.ID.String(), DecisionRequest{})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestService_Update_RejectedIncidenceIsFrozen(t *testing.T) {
	rejected := &Incidence{
		ID:       uuid.New(),
		WorkerID: uuid.New(),
		State:    StateRejected,
	}
	repo := &fakeRepo{
		findByIDFn:   func(ctx context.Context, id string) (*Incidence, error) { return rejected, nil },
		workerUnitFn: func(ctx context.Context, wid string) (string, error) { return "unit-1", nil },
	}
	svc := NewService(nil, repo)

	_, err := svc.Update(context.Background(), admin(), rejected.ID.String(), UpdateIncidenceRequest{
		TypeID:    uuid.NewString(),
		StartDate: "2024-05-10",
		EndDate:   "2024-05-12",
	})

	assert.ErrorIs(t, err, incidenceerrors.ErrNotPending)
}

func TestService_GetByID_NotFound(t *testing.T) {
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Incidence, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(nil, repo)

	_, err := svc.GetByID(context.Background(), admin(), uuid.NewString())
	assert.ErrorIs(t, err, incidenceerrors.ErrIncidenceNotFound)
}

func TestService_SeedDefaultTypes(t *testing.T) {
	var seeded []IncidenceType
	repo := &fakeRepo{
		seedTypesFn: func(ctx context.Context, types []IncidenceType) error {
			seeded = types
			return nil
		},
	}
	svc := NewService(nil, repo)

	assert.NoError(t, svc.SeedDefaultTypes(context.Background()))

	descriptions := make([]string, len(seeded))
	for i, tp := range seeded {
		descriptions[i] = tp.Description
		assert.True(t, tp.RequiresAuthorization)
		assert.True(t, tp.Active)
	}
	assert.Equal(t, []string{
		"Incapacidad",
		"Permiso con goce",
		"Comisión sindical",
		"Permiso sin goce",
		"Comisión administrativa",
	}, descriptions)
}

func TestPermittedActions_Matrix(t *testing.T) {
	workerID := uuid.New()
	pending := Incidence{WorkerID: workerID, State: StatePending}
	authorized := Incidence{WorkerID: workerID, State: StateAuthorized}

	tests := []struct {
		name         string
		role         string
		unitID       string
		actorWorker  string
		inc          Incidence
		workerUnitID string
		want         Actions
	}{
		{
			name: "admin pending", role: domain.RoleAdmin, inc: pending, workerUnitID: "u1",
			want: Actions{CanView: true, CanEdit: true, CanAuthorize: true},
		},
		{
			name: "admin decided is read only", role: domain.RoleAdmin, inc: authorized, workerUnitID: "u1",
			want: Actions{CanView: true},
		},
		{
			name: "supervisor same unit", role: domain.RoleSupervisor, unitID: "u1", inc: pending, workerUnitID: "u1",
			want: Actions{CanView: true, CanEdit: true, CanAuthorize: true},
		},
		{
			name: "supervisor other unit", role: domain.RoleSupervisor, unitID: "u2", inc: pending, workerUnitID: "u1",
			want: Actions{},
		},
		{
			name: "worker own pending", role: domain.RoleWorker, actorWorker: workerID.String(), inc: pending, workerUnitID: "u1",
			want: Actions{CanView: true, CanEdit: true},
		},
		{
			name: "worker own decided", role: domain.RoleWorker, actorWorker: workerID.String(), inc: authorized, workerUnitID: "u1",
			want: Actions{CanView: true},
		},
		{
			name: "worker someone else", role: domain.RoleWorker, actorWorker: uuid.NewString(), inc: pending, workerUnitID: "u1",
			want: Actions{},
		},
		{
			name: "pending account sees nothing", role: domain.RolePending, inc: pending, workerUnitID: "u1",
			want: Actions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PermittedActions(tt.role, tt.unitID, tt.actorWorker, tt.inc, tt.workerUnitID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncidence_Overlaps(t *testing.T) {
	inc := Incidence{StartDate: date("2024-05-10"), EndDate: date("2024-05-14")}

	assert.True(t, inc.Overlaps(date("2024-05-14"), date("2024-05-20")))
	assert.True(t, inc.Overlaps(date("2024-05-01"), date("2024-05-10")))
	assert.True(t, inc.Overlaps(date("2024-05-11"), date("2024-05-12")))
	assert.False(t, inc.Overlaps(date("2024-05-15"), date("2024-05-20")))
	assert.False(t, inc.Overlaps(date("2024-05-01"), date("2024-05-09")))
}

func TestIncidence_DurationDays(t *testing.T) {
	one := Incidence{StartDate: date("2024-05-10"), EndDate: date("2024-05-10")}
	week := Incidence{StartDate: date("2024-05-10"), EndDate: date("2024-05-16")}

	assert.Equal(t, 1, one.DurationDays())
	assert.Equal(t, 7, week.DurationDays())
}
