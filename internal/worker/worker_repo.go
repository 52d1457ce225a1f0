package worker

import (
	"context"
	"database/sql"

	"go-asistencia/internal/unit"

	"gorm.io/gorm"
)

//go:generate mockgen -source=worker_repo.go -destination=mock/worker_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, w *Worker) error
	FindAll(ctx context.Context) ([]Worker, error)
	FindAllByUnit(ctx context.Context, unitID string) ([]Worker, error)
	FindByID(ctx context.Context, id string) (*Worker, error)
	Update(ctx context.Context, w *Worker) error
	Delete(ctx context.Context, id string) error
	CreateAppointmentType(ctx context.Context, t *AppointmentType) error
	FindAllAppointmentTypes(ctx context.Context) ([]AppointmentType, error)
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

func (r *repository) Create(ctx context.Context, w *Worker) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Worker, error) {
	var workers []Worker
	err := r.db.WithContext(ctx).
		Order("last_name_paternal, last_name_maternal, first_name").
		Find(&workers).Error
	return workers, err
}

func (r *repository) FindAllByUnit(ctx context.Context, unitID string) ([]Worker, error) {
	var workers []Worker
	err := r.db.WithContext(ctx).
		Scopes(unit.Scope(unitID)).
		Order("last_name_paternal, last_name_maternal, first_name").
		Find(&workers).Error
	return workers, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Worker, error) {
	var w Worker
	err := r.db.WithContext(ctx).
		First(&w, "id = ?", id).Error
	return &w, err
}

func (r *repository) Update(ctx context.Context, w *Worker) error {
	return r.db.WithContext(ctx).Save(w).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Worker{}, "id = ?", id).Error
}

func (r *repository) CreateAppointmentType(ctx context.Context, t *AppointmentType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindAllAppointmentTypes(ctx context.Context) ([]AppointmentType, error) {
	var types []AppointmentType
	err := r.db.WithContext(ctx).
		Order("description").
		Find(&types).Error
	return types, err
}
