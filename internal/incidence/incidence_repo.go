package incidence

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=incidence_repo.go -destination=mock/incidence_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, i *Incidence) error
	Update(ctx context.Context, i *Incidence) error
	FindByID(ctx context.Context, id string) (*Incidence, error)
	FindAll(ctx context.Context, unitID string) ([]Incidence, error)
	FindByWorker(ctx context.Context, workerID string) ([]Incidence, error)
	FindActiveByWorker(ctx context.Context, workerID, excludeID string) ([]Incidence, error)
	WorkerUnit(ctx context.Context, workerID string) (string, error)

	CreateType(ctx context.Context, t *IncidenceType) error
	FindAllTypes(ctx context.Context) ([]IncidenceType, error)
	FindTypeByID(ctx context.Context, id string) (*IncidenceType, error)
	SeedTypes(ctx context.Context, types []IncidenceType) error
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

func (r *repository) Create(ctx context.Context, i *Incidence) error {
	return r.db.WithContext(ctx).Omit("Type").Create(i).Error
}

func (r *repository) Update(ctx context.Context, i *Incidence) error {
	return r.db.WithContext(ctx).Omit("Type").Save(i).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Incidence, error) {
	var i Incidence
	err := r.db.WithContext(ctx).
		Preload("Type").
		First(&i, "id = ?", id).Error
	return &i, err
}

func (r *repository) FindAll(ctx context.Context, unitID string) ([]Incidence, error) {
	var incidences []Incidence
	q := r.db.WithContext(ctx).Preload("Type")
	if unitID != "" {
		q = q.Joins("JOIN workers ON workers.id = incidences.worker_id").
			Where("workers.unit_id = ?", unitID)
	}
	err := q.Order("start_date DESC, created_at DESC").Find(&incidences).Error
	return incidences, err
}

func (r *repository) FindByWorker(ctx context.Context, workerID string) ([]Incidence, error) {
	var incidences []Incidence
	err := r.db.WithContext(ctx).
		Preload("Type").
		Where("worker_id = ?", workerID).
		Order("start_date DESC, created_at DESC").
		Find(&incidences).Error
	return incidences, err
}

// FindActiveByWorker returns the worker's PENDING and AUTHORIZED
// incidences, the set overlap validation runs against.
func (r *repository) FindActiveByWorker(ctx context.Context, workerID, excludeID string) ([]Incidence, error) {
	var incidences []Incidence
	q := r.db.WithContext(ctx).
		Preload("Type").
		Where("worker_id = ?", workerID).
		Where("state IN ?", []State{StatePending, StateAuthorized})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Find(&incidences).Error
	return incidences, err
}

func (r *repository) WorkerUnit(ctx context.Context, workerID string) (string, error) {
	var unitID string
	err := r.db.WithContext(ctx).
		Table("workers").
		Select("unit_id").
		Where("id = ?", workerID).
		Scan(&unitID).Error
	return unitID, err
}

func (r *repository) CreateType(ctx context.Context, t *IncidenceType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindAllTypes(ctx context.Context) ([]IncidenceType, error) {
	var types []IncidenceType
	err := r.db.WithContext(ctx).
		Order("description").
		Find(&types).Error
	return types, err
}

func (r *repository) FindTypeByID(ctx context.Context, id string) (*IncidenceType, error) {
	var t IncidenceType
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

// SeedTypes inserts the catalog rows that are missing, leaving any
// existing rows untouched.
func (r *repository) SeedTypes(ctx context.Context, types []IncidenceType) error {
	if len(types) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "description"}},
			DoNothing: true,
		}).
		Create(&types).Error
}
