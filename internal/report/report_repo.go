package report

import (
	"context"
	"time"

	"go-asistencia/internal/attendance"

	"gorm.io/gorm"
)

// StatusCount is one aggregation row per attendance status.
type StatusCount struct {
	Status      string
	Count       int
	LateMinutes int
}

//go:generate mockgen -source=report_repo.go -destination=mock/report_repo_mock.go -package=mock
type Repository interface {
	CountByStatus(ctx context.Context, workerID string, from, to time.Time) ([]StatusCount, error)
	FindRecords(ctx context.Context, workerID string, from, to time.Time) ([]attendance.Record, error)
	FindRecordsByUnit(ctx context.Context, unitID string, from, to time.Time) ([]attendance.Record, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountByStatus(ctx context.Context, workerID string, from, to time.Time) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&attendance.Record{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(late_minutes), 0) AS late_minutes").
		Where("worker_id = ? AND date BETWEEN ? AND ?", workerID, from, to).
		Group("status").
		Scan(&counts).Error
	return counts, err
}

func (r *repository) FindRecords(ctx context.Context, workerID string, from, to time.Time) ([]attendance.Record, error) {
	var records []attendance.Record
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND date BETWEEN ? AND ?", workerID, from, to).
		Order("date").
		Find(&records).Error
	return records, err
}

func (r *repository) FindRecordsByUnit(ctx context.Context, unitID string, from, to time.Time) ([]attendance.Record, error) {
	var records []attendance.Record
	err := r.db.WithContext(ctx).
		Joins("JOIN workers ON workers.id = attendance_records.worker_id").
		Where("workers.unit_id = ? AND attendance_records.date BETWEEN ? AND ?", unitID, from, to).
		Order("attendance_records.worker_id, attendance_records.date").
		Find(&records).Error
	return records, err
}
