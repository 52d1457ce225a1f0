package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*Record, error)
	FindByWorkerRange(ctx context.Context, workerID string, from, to time.Time) ([]Record, error)
	FindAll(ctx context.Context, unitID string, page, limit int) ([]Record, int64, error)
	WorkerActive(ctx context.Context, workerID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) Update(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) FindByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*Record, error) {
	var rec Record
	err := r.db.WithContext(ctx).
		First(&rec, "worker_id = ? AND date = ?", workerID, date.Format("2006-01-02")).Error
	return &rec, err
}

func (r *repository) FindByWorkerRange(ctx context.Context, workerID string, from, to time.Time) ([]Record, error) {
	var recs []Record
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Where("date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date DESC").
		Find(&recs).Error
	return recs, err
}

// FindAll pages through records newest first, optionally restricted to
// workers of one unit.
func (r *repository) FindAll(ctx context.Context, unitID string, page, limit int) ([]Record, int64, error) {
	q := r.db.WithContext(ctx).Model(&Record{})
	if unitID != "" {
		q = q.Joins("JOIN workers ON workers.id = attendance_records.worker_id").
			Where("workers.unit_id = ?", unitID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []Record
	err := q.Order("date DESC, worker_id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recs).Error
	return recs, total, err
}

func (r *repository) WorkerActive(ctx context.Context, workerID string) (bool, error) {
	var active bool
	err := r.db.WithContext(ctx).
		Table("workers").
		Select("active").
		Where("id = ? AND deleted_at IS NULL", workerID).
		Scan(&active).Error
	return active, err
}
